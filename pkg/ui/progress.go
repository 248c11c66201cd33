package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// ScanTracker keeps track of multi-region scan progress
type ScanTracker struct {
	TotalRegions int
	DoneRegions  int
	Pooled       int
	StartTime    time.Time

	lastRegion string
	quiet      bool
}

// NewScanTracker creates a tracker for a scan over totalRegions regions
func NewScanTracker(totalRegions int, quiet bool) *ScanTracker {
	return &ScanTracker{
		TotalRegions: totalRegions,
		StartTime:    time.Now(),
		quiet:        quiet,
	}
}

// Update records a progress tick: the region currently scanned, its
// position in the scan and the current pool size
func (st *ScanTracker) Update(region string, regionIndex, regionTotal, pooled int) {
	st.Pooled = pooled
	st.DoneRegions = regionIndex
	st.TotalRegions = regionTotal
	st.lastRegion = region
	if st.quiet {
		return
	}
	fmt.Printf("\r%s %s %s pooled: %d   ",
		Magenta("[SCANNING]"),
		Yellow(region),
		st.bar(),
		pooled)
}

// Finish terminates the progress line
func (st *ScanTracker) Finish() {
	if st.quiet || st.lastRegion == "" {
		return
	}
	st.DoneRegions = st.TotalRegions
	fmt.Println()
}

// Elapsed returns the time since tracking started
func (st *ScanTracker) Elapsed() time.Duration {
	return time.Since(st.StartTime)
}

func (st *ScanTracker) bar() string {
	const width = 20
	if st.TotalRegions == 0 {
		return ""
	}
	progress := float64(st.DoneRegions) / float64(st.TotalRegions)
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.DoneRegions, st.TotalRegions)
}
