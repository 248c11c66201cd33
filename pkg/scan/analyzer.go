package scan

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	errs "ytmarket/pkg/errors"
	"ytmarket/pkg/logger"
	"ytmarket/pkg/market"
	"ytmarket/pkg/ratelimit"
	"ytmarket/pkg/rotator"
)

// ErrNoKeys is returned when a run is attempted with an empty key pool
var ErrNoKeys = &errs.Error{
	Type:    errs.ErrorTypeValidation,
	Message: "no API keys configured",
}

// Analyzer orchestrates one full market analysis run: validate, scan all
// regions, enrich the first batch, score, and bundle the report.
type Analyzer struct {
	rot      *rotator.Rotator
	scanner  *Scanner
	enricher *Enricher
	clock    clockwork.Clock
	logger   logger.Logger
}

// NewAnalyzer wires an analyzer from its parts. A nil limiter disables
// pacing and a nil clock uses wall time.
func NewAnalyzer(rot *rotator.Rotator, limiter ratelimit.Limiter, clock clockwork.Clock, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.GetLogger()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Analyzer{
		rot:      rot,
		scanner:  NewScanner(rot, limiter, log),
		enricher: NewEnricher(rot, clock, log),
		clock:    clock,
		logger:   log,
	}
}

// Scanner exposes the underlying scanner, mainly to attach a progress
// callback.
func (a *Analyzer) Scanner() *Scanner {
	return a.scanner
}

// Run executes one analysis. Finding nothing is a normal outcome: the
// returned report is empty but the error is nil.
func (a *Analyzer) Run(ctx context.Context, params market.ScanParams) (*market.Report, error) {
	if a.rot.Len() == 0 {
		return nil, ErrNoKeys
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	start := a.clock.Now()
	runID := uuid.NewString()

	a.logger.InfoWithFields("starting market scan", map[string]interface{}{
		"run_id":  runID,
		"keyword": params.Keyword,
		"kind":    string(params.Kind),
		"regions": len(params.Regions),
	})

	publishedAfter := params.Window.PublishedAfter(start)
	scanned, err := a.scanner.Scan(ctx, params, publishedAfter)
	if err != nil {
		return nil, err
	}

	report := &market.Report{
		RunID:       runID,
		Keyword:     params.Keyword,
		Kind:        params.Kind,
		Window:      params.Window,
		Regions:     params.Regions,
		TotalFound:  scanned.Pool.Len(),
		RegionStats: scanned.RegionStats,
		CapHit:      scanned.CapHit,
		ActiveKey:   a.rot.ActiveIndex() + 1,
	}

	if report.Empty() {
		report.Elapsed = a.clock.Now().Sub(start)
		a.logger.Info("scan found nothing")
		return report, nil
	}

	if params.Kind != market.KindVideo {
		// channel and playlist results carry no statistics worth joining;
		// the report lists identifiers only
		report.IDs = scanned.Pool.IDs()
		report.Elapsed = a.clock.Now().Sub(start)
		return report, nil
	}

	rows, err := a.enricher.Enrich(scanned.Pool)
	if err != nil {
		return nil, err
	}

	market.SortRows(rows, params.Order)
	score := market.Score(
		rows,
		scanned.Pool.Len(),
		params.Window.Days(),
		len(params.Regions),
		scanned.CapHit,
	)

	report.Rows = rows
	report.Score = &score
	report.ActiveKey = a.rot.ActiveIndex() + 1
	report.Elapsed = a.clock.Now().Sub(start)

	a.logger.InfoWithFields("scan complete", map[string]interface{}{
		"run_id":    runID,
		"found":     report.TotalFound,
		"analyzed":  len(rows),
		"composite": score.CompositeScore,
		"elapsed":   report.Elapsed.String(),
	})
	return report, nil
}
