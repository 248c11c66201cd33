package market

import (
	"time"
)

// UnknownRegion is the origin recorded for identifiers whose region was lost;
// it should not occur in a normal run.
const UnknownRegion = "UNK"

// Pool is the global deduplicated set of discovered identifiers. Each
// identifier is recorded at most once, with the region that first produced
// it; discovery order is preserved for ranking.
type Pool struct {
	order  []string
	origin map[string]string
}

// NewPool creates an empty pool
func NewPool() *Pool {
	return &Pool{origin: make(map[string]string)}
}

// Add records an identifier discovered in region. It returns true only when
// the identifier is new; an already-pooled identifier keeps its original
// region and does not count again.
func (p *Pool) Add(id, region string) bool {
	if id == "" {
		return false
	}
	if _, seen := p.origin[id]; seen {
		return false
	}
	p.origin[id] = region
	p.order = append(p.order, id)
	return true
}

// Len returns the number of pooled identifiers
func (p *Pool) Len() int {
	return len(p.order)
}

// Contains reports whether id is already pooled
func (p *Pool) Contains(id string) bool {
	_, ok := p.origin[id]
	return ok
}

// Origin returns the first-seen region for id, or UnknownRegion
func (p *Pool) Origin(id string) string {
	if region, ok := p.origin[id]; ok {
		return region
	}
	return UnknownRegion
}

// IDs returns the pooled identifiers in discovery order
func (p *Pool) IDs() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// RegionStats maps a region code to the count of identifiers newly
// attributed to it during its scan pass.
type RegionStats map[string]int

// CompetitorClass is an informal strength tier based on channel subscribers
type CompetitorClass string

const (
	ClassShark   CompetitorClass = "shark"
	ClassWhale   CompetitorClass = "whale"
	ClassFish    CompetitorClass = "fish"
	ClassGuppy   CompetitorClass = "guppy"
	ClassUnknown CompetitorClass = "unknown"
)

// SupplyLabel is the qualitative saturation verdict
type SupplyLabel string

const (
	SupplySaturated   SupplyLabel = "saturated"
	SupplyCompetitive SupplyLabel = "competitive"
	SupplyScarce      SupplyLabel = "scarce"
	SupplyModerate    SupplyLabel = "moderate"
)

// Row is one enriched, analyzed item
type Row struct {
	ID           string          `json:"id"`
	OriginRegion string          `json:"origin_region"`
	Rank         int             `json:"rank"`
	Title        string          `json:"title"`
	Views        int64           `json:"views"`
	Likes        int64           `json:"likes"`
	Comments     int64           `json:"comments"`
	Subscribers  int64           `json:"subscribers"`
	PublishedAt  time.Time       `json:"published_at"`
	DateDisplay  string          `json:"date_display"`
	AgeDisplay   string          `json:"age_display"`
	LikeRate     float64         `json:"like_rate"`
	CommentRate  float64         `json:"comment_rate"`
	Class        CompetitorClass `json:"class"`
	Viral        bool            `json:"viral"`
	VideoURL     string          `json:"video_url"`
	ChannelURL   string          `json:"channel_url"`
}

// ScoreResult is the deterministic scoring verdict over one enriched row set
type ScoreResult struct {
	CompositeScore    int         `json:"composite_score"`
	SupplyScore       int         `json:"supply_score"`
	SupplyLabel       SupplyLabel `json:"supply_label"`
	Density           float64     `json:"density"`
	CompetitorScore   int         `json:"competitor_score"`
	MedianSubscribers float64     `json:"median_subscribers"`
	SharkCount        int         `json:"shark_count"`
	GuppyCount        int         `json:"guppy_count"`
	TotalViews        int64       `json:"total_views"`
	MedianViews       float64     `json:"median_views"`
	MedianLikeRate    float64     `json:"median_like_rate"`
}

// Report is the bundle handed to the presenter after one analysis run
type Report struct {
	RunID       string        `json:"run_id"`
	Keyword     string        `json:"keyword"`
	Kind        ResultKind    `json:"kind"`
	Window      TimeWindow    `json:"window"`
	Regions     []string      `json:"regions"`
	TotalFound  int           `json:"total_found"`
	RegionStats RegionStats   `json:"region_stats"`
	CapHit      bool          `json:"cap_hit"`
	IDs         []string      `json:"ids,omitempty"`
	Rows        []Row         `json:"rows,omitempty"`
	Score       *ScoreResult  `json:"score,omitempty"`
	ActiveKey   int           `json:"active_key"` // 1-based, for display
	Elapsed     time.Duration `json:"elapsed"`
}

// Empty reports the no-results outcome, which is a normal terminal state
// rather than a failure.
func (r *Report) Empty() bool {
	return r.TotalFound == 0
}
