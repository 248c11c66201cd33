package youtube

// ResourceID identifies a search result; exactly one of the ID fields is set
// depending on the requested result kind.
type ResourceID struct {
	Kind       string `json:"kind"`
	VideoID    string `json:"videoId,omitempty"`
	ChannelID  string `json:"channelId,omitempty"`
	PlaylistID string `json:"playlistId,omitempty"`
}

// SearchSnippet carries the display metadata attached to a search result
type SearchSnippet struct {
	PublishedAt  string `json:"publishedAt"`
	ChannelID    string `json:"channelId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
}

// SearchItem is a single search result
type SearchItem struct {
	ID      ResourceID    `json:"id"`
	Snippet SearchSnippet `json:"snippet"`
}

// SearchResponse is the payload of a search.list call
type SearchResponse struct {
	NextPageToken string       `json:"nextPageToken,omitempty"`
	RegionCode    string       `json:"regionCode,omitempty"`
	Items         []SearchItem `json:"items"`
}

// VideoSnippet carries per-video display metadata
type VideoSnippet struct {
	PublishedAt  string `json:"publishedAt"`
	ChannelID    string `json:"channelId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

// VideoStatistics holds engagement counters. The API serializes all counters
// as strings.
type VideoStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

// Video is a single item of a videos.list call
type Video struct {
	ID         string          `json:"id"`
	Snippet    VideoSnippet    `json:"snippet"`
	Statistics VideoStatistics `json:"statistics"`
}

// VideoListResponse is the payload of a videos.list call
type VideoListResponse struct {
	Items []Video `json:"items"`
}

// ChannelStatistics holds per-channel counters
type ChannelStatistics struct {
	SubscriberCount       string `json:"subscriberCount"`
	HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
	VideoCount            string `json:"videoCount"`
}

// Channel is a single item of a channels.list call
type Channel struct {
	ID         string            `json:"id"`
	Statistics ChannelStatistics `json:"statistics"`
}

// ChannelListResponse is the payload of a channels.list call
type ChannelListResponse struct {
	Items []Channel `json:"items"`
}

// apiError is the Google API error envelope
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
			Domain  string `json:"domain"`
		} `json:"errors"`
	} `json:"error"`
}
