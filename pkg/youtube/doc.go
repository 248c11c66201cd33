// Package youtube provides a client for the YouTube Data API v3.
//
// This package includes:
//   - A per-key HTTP client with transport-level retry for transient failures
//   - Type-safe models for search, video and channel list responses
//   - Helper functions for constructing API endpoints
//   - Typed error mapping that distinguishes quota exhaustion from other
//     rejections, which is what drives key rotation upstream
//
// Example usage:
//
//	client, err := youtube.NewClient(apiKey, 30*time.Second, log)
//	if err != nil {
//	    // handle invalid key
//	}
//
//	res, err := client.Search(youtube.SearchParams{
//	    Query:      "keyword",
//	    Kind:       "video",
//	    Order:      "relevance",
//	    RegionCode: "US",
//	})
//	if errors.IsQuotaExceeded(err) {
//	    // rotate to the next key
//	}
package youtube
