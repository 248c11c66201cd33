package market

import (
	"fmt"
	"strings"
	"time"

	errs "ytmarket/pkg/errors"
)

// TimeWindow bounds how far back the scan looks
type TimeWindow string

const (
	WindowHour  TimeWindow = "hour"
	WindowToday TimeWindow = "today"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAny   TimeWindow = "any"
)

// Days returns the window length used for density scoring. "any" maps to ten
// years, effectively unbounded.
func (w TimeWindow) Days() float64 {
	switch w {
	case WindowHour:
		return 1.0 / 24.0
	case WindowToday:
		return 1
	case WindowWeek:
		return 7
	case WindowMonth:
		return 30
	case WindowYear:
		return 365
	case WindowAny:
		return 3650
	default:
		return 7
	}
}

// PublishedAfter returns the RFC3339 lower bound for the search, or an empty
// string when the window is unbounded.
func (w TimeWindow) PublishedAfter(now time.Time) string {
	if w == WindowAny {
		return ""
	}
	cutoff := now.UTC().Add(-time.Duration(w.Days() * 24 * float64(time.Hour)))
	return cutoff.Format(time.RFC3339)
}

func (w TimeWindow) valid() bool {
	switch w {
	case WindowHour, WindowToday, WindowWeek, WindowMonth, WindowYear, WindowAny:
		return true
	}
	return false
}

// ResultKind selects what the search enumerates
type ResultKind string

const (
	KindVideo    ResultKind = "video"
	KindChannel  ResultKind = "channel"
	KindPlaylist ResultKind = "playlist"
)

func (k ResultKind) valid() bool {
	switch k {
	case KindVideo, KindChannel, KindPlaylist:
		return true
	}
	return false
}

// DurationFilter narrows video results by length; only meaningful for the
// video kind.
type DurationFilter string

const (
	DurationShort  DurationFilter = "short"
	DurationMedium DurationFilter = "medium"
	DurationLong   DurationFilter = "long"
	DurationAny    DurationFilter = "any"
)

func (d DurationFilter) valid() bool {
	switch d {
	case DurationShort, DurationMedium, DurationLong, DurationAny:
		return true
	}
	return false
}

// SortOrder is the API-side result ordering
type SortOrder string

const (
	OrderViewCount SortOrder = "viewCount"
	OrderRelevance SortOrder = "relevance"
	OrderDate      SortOrder = "date"
	OrderRating    SortOrder = "rating"
)

func (o SortOrder) valid() bool {
	switch o {
	case OrderViewCount, OrderRelevance, OrderDate, OrderRating:
		return true
	}
	return false
}

// Per-region scan cap bounds
const (
	MinPerRegionLimit = 50
	MaxPerRegionLimit = 1000
)

// ScanParams are the user-supplied parameters of one analysis run
type ScanParams struct {
	Keyword        string
	Window         TimeWindow
	Kind           ResultKind
	Duration       DurationFilter
	Order          SortOrder
	PerRegionLimit int
	Regions        []string
}

// ErrNoRegions is returned when a scan is requested without any region
var ErrNoRegions = &errs.Error{
	Type:    errs.ErrorTypeValidation,
	Message: "no region selected",
}

// Validate checks the parameters before any remote call is attempted
func (p ScanParams) Validate() error {
	if strings.TrimSpace(p.Keyword) == "" {
		return &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: "keyword is empty",
		}
	}
	if len(p.Regions) == 0 {
		return ErrNoRegions
	}
	for _, region := range p.Regions {
		if !IsKnownRegion(region) {
			return &errs.Error{
				Type:    errs.ErrorTypeValidation,
				Message: fmt.Sprintf("unknown region code: %s", region),
			}
		}
	}
	if !p.Window.valid() {
		return &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: fmt.Sprintf("invalid time window: %s", p.Window),
		}
	}
	if !p.Kind.valid() {
		return &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: fmt.Sprintf("invalid result kind: %s", p.Kind),
		}
	}
	if !p.Duration.valid() {
		return &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: fmt.Sprintf("invalid duration filter: %s", p.Duration),
		}
	}
	if !p.Order.valid() {
		return &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: fmt.Sprintf("invalid sort order: %s", p.Order),
		}
	}
	if p.PerRegionLimit < MinPerRegionLimit || p.PerRegionLimit > MaxPerRegionLimit {
		return &errs.Error{
			Type: errs.ErrorTypeValidation,
			Message: fmt.Sprintf("per-region limit %d outside [%d, %d]",
				p.PerRegionLimit, MinPerRegionLimit, MaxPerRegionLimit),
		}
	}
	return nil
}
