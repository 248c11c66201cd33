package youtube

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for the YouTube Data API v3
	BaseURL = "https://www.googleapis.com/youtube/v3"

	// SearchEndpoint is the endpoint for keyword search
	SearchEndpoint = "/search"

	// VideosEndpoint is the endpoint for batched video lookups
	VideosEndpoint = "/videos"

	// ChannelsEndpoint is the endpoint for batched channel lookups
	ChannelsEndpoint = "/channels"

	// PageSize is the number of results requested per search page
	PageSize = 50

	// MaxBatchSize is the maximum number of IDs accepted by a batched lookup
	MaxBatchSize = 50
)

// SearchParams describes one search.list page request
type SearchParams struct {
	Query          string
	Kind           string // video, channel or playlist
	Order          string // viewCount, relevance, date or rating
	RegionCode     string
	PageToken      string
	PublishedAfter string // RFC3339, empty means unbounded
	VideoDuration  string // short, medium or long; empty means unfiltered
}

// searchURL constructs the URL for one search page
func searchURL(base, key string, p SearchParams) string {
	params := url.Values{}
	params.Set("part", "id,snippet")
	params.Set("q", p.Query)
	params.Set("type", p.Kind)
	params.Set("order", p.Order)
	params.Set("maxResults", fmt.Sprintf("%d", PageSize))
	params.Set("regionCode", p.RegionCode)
	params.Set("safeSearch", "none")
	params.Set("key", key)

	if p.PageToken != "" {
		params.Set("pageToken", p.PageToken)
	}
	if p.PublishedAfter != "" {
		params.Set("publishedAfter", p.PublishedAfter)
	}
	if p.VideoDuration != "" {
		params.Set("videoDuration", p.VideoDuration)
	}

	return base + SearchEndpoint + "?" + params.Encode()
}

// videosURL constructs the URL for a batched video statistics lookup
func videosURL(base, key string, ids []string) string {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", key)

	return base + VideosEndpoint + "?" + params.Encode()
}

// channelsURL constructs the URL for a batched channel statistics lookup
func channelsURL(base, key string, ids []string) string {
	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", key)

	return base + ChannelsEndpoint + "?" + params.Encode()
}

// WatchURL returns the public watch page for a video
func WatchURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return fmt.Sprintf("https://youtu.be/%s", videoID)
}

// ChannelURL returns the public page for a channel
func ChannelURL(channelID string) string {
	if channelID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.youtube.com/channel/%s", channelID)
}
