package scan

import (
	"context"

	"ytmarket/pkg/logger"
	"ytmarket/pkg/market"
	"ytmarket/pkg/ratelimit"
	"ytmarket/pkg/rotator"
	"ytmarket/pkg/youtube"
)

// Scanner walks the configured regions one by one and pages through search
// results, feeding every new identifier into a shared dedup pool. Regions
// are scanned sequentially: a result seen in an earlier region is credited
// to that region, never to a later one.
type Scanner struct {
	rot     *rotator.Rotator
	limiter ratelimit.Limiter
	logger  logger.Logger

	// Progress, when set, is called after every fetched page with the
	// position of the current region and the running pool size
	Progress func(region string, regionIndex, regionTotal, pooled int)
}

// ScanResult is the raw outcome of a multi-region scan, before enrichment
type ScanResult struct {
	Pool        *market.Pool
	RegionStats market.RegionStats
	CapHit      bool
}

// NewScanner builds a scanner on top of a key rotator. A nil limiter
// disables request pacing.
func NewScanner(rot *rotator.Rotator, limiter ratelimit.Limiter, log logger.Logger) *Scanner {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &Scanner{
		rot:     rot,
		limiter: limiter,
		logger:  log,
	}
}

// Scan runs the region loop. publishedAfter is the RFC3339 window cutoff,
// empty for an unbounded search. The per-region limit counts identifiers
// newly added to the pool, so duplicate results from earlier regions never
// consume a later region's budget.
func (s *Scanner) Scan(ctx context.Context, params market.ScanParams, publishedAfter string) (*ScanResult, error) {
	result := &ScanResult{
		Pool:        market.NewPool(),
		RegionStats: make(market.RegionStats),
	}

	for i, region := range params.Regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		added, capHit, err := s.scanRegion(ctx, params, publishedAfter, region, i, result.Pool)
		if err != nil {
			return nil, err
		}

		result.RegionStats[region] = added
		if capHit {
			result.CapHit = true
		}

		s.logger.DebugWithFields("region scan complete", map[string]interface{}{
			"region": region,
			"added":  added,
			"pooled": result.Pool.Len(),
		})
	}

	return result, nil
}

// scanRegion pages through one region until the API runs out of pages or
// the region's budget is spent. Returns the number of identifiers this
// region contributed and whether the cap cut the scan short.
func (s *Scanner) scanRegion(ctx context.Context, params market.ScanParams, publishedAfter, region string, regionIndex int, pool *market.Pool) (int, bool, error) {
	var (
		added     int
		pageToken string
	)

	for {
		if err := ctx.Err(); err != nil {
			return added, false, err
		}

		s.limiter.Wait()

		search := youtube.SearchParams{
			Query:          params.Keyword,
			Kind:           string(params.Kind),
			Order:          string(params.Order),
			RegionCode:     region,
			PageToken:      pageToken,
			PublishedAfter: publishedAfter,
		}
		if params.Kind == market.KindVideo && params.Duration != market.DurationAny {
			search.VideoDuration = string(params.Duration)
		}

		var resp *youtube.SearchResponse
		err := s.rot.Do(func(client *youtube.Client) error {
			var callErr error
			resp, callErr = client.Search(search)
			return callErr
		})
		if err != nil {
			return added, false, err
		}

		if len(resp.Items) == 0 {
			// the region is exhausted even if a next-page token came back
			return added, false, nil
		}

		for _, item := range resp.Items {
			id := resourceKey(item, params.Kind)
			if id == "" {
				continue
			}
			if !pool.Add(id, region) {
				continue
			}
			added++
			if added >= params.PerRegionLimit {
				// budget spent mid-page; remaining items count as cut off
				s.progress(region, regionIndex, len(params.Regions), pool.Len())
				return added, true, nil
			}
		}

		s.progress(region, regionIndex, len(params.Regions), pool.Len())

		if resp.NextPageToken == "" {
			return added, false, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (s *Scanner) progress(region string, regionIndex, regionTotal, pooled int) {
	if s.Progress != nil {
		s.Progress(region, regionIndex, regionTotal, pooled)
	}
}

// resourceKey extracts the identifier matching the requested result kind.
// Results of a different kind, which the API occasionally mixes in, are
// dropped.
func resourceKey(item youtube.SearchItem, kind market.ResultKind) string {
	switch kind {
	case market.KindVideo:
		return item.ID.VideoID
	case market.KindChannel:
		return item.ID.ChannelID
	case market.KindPlaylist:
		return item.ID.PlaylistID
	}
	return ""
}
