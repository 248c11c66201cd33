package market

import (
	"sort"
)

// Subscriber boundaries for competitor classification. Boundaries are
// inclusive on the lower tier: exactly 500k subscribers is a whale, not a
// shark.
const (
	sharkThreshold = 500_000
	whaleThreshold = 100_000
	fishThreshold  = 10_000
)

// ClassifySubscribers assigns a competitor tier from a channel's subscriber
// count. A zero count means the channel hides its subscribers; it belongs to
// no tier and is excluded from the median sample.
func ClassifySubscribers(subs int64) CompetitorClass {
	switch {
	case subs > sharkThreshold:
		return ClassShark
	case subs > whaleThreshold:
		return ClassWhale
	case subs > fishThreshold:
		return ClassFish
	case subs > 0:
		return ClassGuppy
	default:
		return ClassUnknown
	}
}

// Median returns the median of values; the median of an empty sample is 0.
// Even-length samples take the mean of the two middle values.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// SupplyVerdict converts discovery density into a saturation score and
// label. Density thresholds scale with the number of scanned regions: the
// busier the region set, the higher the bar before declaring saturation.
// A single-region scan that hit its cap without the API running out of pages
// is treated as saturated outright.
func SupplyVerdict(pooled int, windowDays float64, regionCount int, capHit bool) (int, SupplyLabel, float64) {
	if windowDays < 1 {
		windowDays = 1
	}
	if regionCount < 1 {
		regionCount = 1
	}

	density := float64(pooled) / windowDays

	if capHit && regionCount == 1 {
		return 60, SupplySaturated, density
	}

	r := float64(regionCount)
	switch {
	case density > 40*r:
		return 60, SupplySaturated, density
	case density > 10*r:
		return 30, SupplyCompetitive, density
	case density < 1:
		return -10, SupplyScarce, density
	default:
		return 10, SupplyModerate, density
	}
}

// CompetitorVerdict scores competitor strength from the median subscriber
// count of visible channels, adjusted by the shark and guppy tallies.
func CompetitorVerdict(medianSubs float64, sharks, guppies int) int {
	score := 0
	switch {
	case medianSubs > 500_000:
		score = 40
	case medianSubs > 100_000:
		score = 30
	case medianSubs > 10_000:
		score = 10
	}
	return score + 2*sharks - 2*guppies
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Score computes the full scoring verdict for one run. It is a pure
// function of the enriched rows plus scan metadata; pooled is the total
// dedup pool size, not just the analyzed subset.
func Score(rows []Row, pooled int, windowDays float64, regionCount int, capHit bool) ScoreResult {
	var (
		views       []float64
		likeRates   []float64
		visibleSubs []float64
		totalViews  int64
		sharks      int
		guppies     int
	)

	for _, row := range rows {
		views = append(views, float64(row.Views))
		likeRates = append(likeRates, row.LikeRate)
		totalViews += row.Views

		if row.Subscribers > 0 {
			visibleSubs = append(visibleSubs, float64(row.Subscribers))
		}
		switch row.Class {
		case ClassShark:
			sharks++
		case ClassGuppy:
			guppies++
		}
	}

	supplyScore, supplyLabel, density := SupplyVerdict(pooled, windowDays, regionCount, capHit)
	medianSubs := Median(visibleSubs)
	competitorScore := CompetitorVerdict(medianSubs, sharks, guppies)

	return ScoreResult{
		CompositeScore:    Clamp(competitorScore+supplyScore, 0, 100),
		SupplyScore:       supplyScore,
		SupplyLabel:       supplyLabel,
		Density:           density,
		CompetitorScore:   competitorScore,
		MedianSubscribers: medianSubs,
		SharkCount:        sharks,
		GuppyCount:        guppies,
		TotalViews:        totalViews,
		MedianViews:       Median(views),
		MedianLikeRate:    Median(likeRates),
	}
}

// SortRows orders rows for display: view-count ordering sorts by views
// descending, anything else preserves discovery rank.
func SortRows(rows []Row, order SortOrder) {
	if order == OrderViewCount {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Views > rows[j].Views
		})
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Rank < rows[j].Rank
	})
}
