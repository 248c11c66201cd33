package scan

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"ytmarket/pkg/logger"
	"ytmarket/pkg/market"
	"ytmarket/pkg/rotator"
	"ytmarket/pkg/youtube"
)

// rankUnknown marks a video the API returned outside the analyzed slice
const rankUnknown = 999

// Enricher joins the pooled video identifiers with their statistics and
// their channels' subscriber counts. Only the first API batch of the pool
// is enriched; the remainder of the pool still counts toward supply.
type Enricher struct {
	rot    *rotator.Rotator
	clock  clockwork.Clock
	logger logger.Logger
}

// NewEnricher builds an enricher. A nil clock falls back to the wall clock.
func NewEnricher(rot *rotator.Rotator, clock clockwork.Clock, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.GetLogger()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Enricher{rot: rot, clock: clock, logger: log}
}

// Enrich fetches statistics for the pool's first batch of videos, joins in
// channel subscriber counts, and builds display-ready rows in discovery
// order.
func (e *Enricher) Enrich(pool *market.Pool) ([]market.Row, error) {
	ids := pool.IDs()
	if len(ids) > youtube.MaxBatchSize {
		ids = ids[:youtube.MaxBatchSize]
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i + 1
	}

	var videos *youtube.VideoListResponse
	err := e.rot.Do(func(client *youtube.Client) error {
		var callErr error
		videos, callErr = client.ListVideos(ids)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	subsByChannel, err := e.fetchSubscribers(videos.Items)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	rows := make([]market.Row, 0, len(videos.Items))
	for _, video := range videos.Items {
		rows = append(rows, e.buildRow(video, rank, pool, subsByChannel, now))
	}

	e.logger.DebugWithFields("enrichment complete", map[string]interface{}{
		"requested": len(ids),
		"returned":  len(rows),
	})
	return rows, nil
}

// fetchSubscribers resolves the distinct channels behind the videos. Hidden
// subscriber counts map to zero.
func (e *Enricher) fetchSubscribers(videos []youtube.Video) (map[string]int64, error) {
	var channelIDs []string
	seen := make(map[string]bool)
	for _, video := range videos {
		id := video.Snippet.ChannelID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		channelIDs = append(channelIDs, id)
	}

	subs := make(map[string]int64, len(channelIDs))
	if len(channelIDs) == 0 {
		return subs, nil
	}

	var channels *youtube.ChannelListResponse
	err := e.rot.Do(func(client *youtube.Client) error {
		var callErr error
		channels, callErr = client.ListChannels(channelIDs)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	for _, channel := range channels.Items {
		if channel.Statistics.HiddenSubscriberCount {
			subs[channel.ID] = 0
			continue
		}
		subs[channel.ID] = parseCount(channel.Statistics.SubscriberCount)
	}
	return subs, nil
}

func (e *Enricher) buildRow(video youtube.Video, rank map[string]int, pool *market.Pool, subsByChannel map[string]int64, now time.Time) market.Row {
	views := parseCount(video.Statistics.ViewCount)
	likes := parseCount(video.Statistics.LikeCount)
	comments := parseCount(video.Statistics.CommentCount)
	subscribers := subsByChannel[video.Snippet.ChannelID]

	row := market.Row{
		ID:           video.ID,
		OriginRegion: pool.Origin(video.ID),
		Title:        video.Snippet.Title,
		Views:        views,
		Likes:        likes,
		Comments:     comments,
		Subscribers:  subscribers,
		Class:        market.ClassifySubscribers(subscribers),
		Viral:        subscribers > 0 && views > 2*subscribers,
		VideoURL:     youtube.WatchURL(video.ID),
		ChannelURL:   youtube.ChannelURL(video.Snippet.ChannelID),
	}

	if r, ok := rank[video.ID]; ok {
		row.Rank = r
	} else {
		row.Rank = rankUnknown
	}

	if views > 0 {
		row.LikeRate = float64(likes) / float64(views) * 100
		row.CommentRate = float64(comments) / float64(views) * 100
	}

	if published, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
		row.PublishedAt = published
		row.DateDisplay = published.Format("02/01 15:04")
		row.AgeDisplay = formatAge(now.Sub(published))
	} else {
		row.DateDisplay = "?"
		row.AgeDisplay = "?"
	}

	return row
}

// parseCount converts the API's string counters; missing or malformed
// counters read as zero.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// formatAge renders an upload age compactly: days once the video is at
// least a day old, hours below that.
func formatAge(age time.Duration) string {
	if age < 0 {
		age = 0
	}
	if days := int(age.Hours() / 24); days >= 1 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(age.Hours()))
}
