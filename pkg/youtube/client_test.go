package youtube

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "ytmarket/pkg/errors"
	"ytmarket/pkg/retry"
	"ytmarket/pkg/logger"
)

const quotaBody = `{"error":{"code":403,"message":"quota exceeded","errors":[{"reason":"quotaExceeded","domain":"youtube.quota"}]}}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", 5*time.Second, logger.GetLogger())
	require.NoError(t, err)
	client.SetBaseURL(server.URL)
	client.SetRetrier(retry.NewRetrier(2, time.Millisecond, 1.0, nil))
	return client, server
}

func TestNewClientRejectsEmptyKey(t *testing.T) {
	_, err := NewClient("", time.Second, nil)
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)
}

func TestSearchBuildsExpectedQuery(t *testing.T) {
	var gotQuery map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		fmt.Fprint(w, `{"items":[{"id":{"videoId":"abc"},"snippet":{"title":"t"}}],"nextPageToken":"tok"}`)
	}))

	res, err := client.Search(SearchParams{
		Query:          "cooking",
		Kind:           "video",
		Order:          "viewCount",
		RegionCode:     "VN",
		PageToken:      "page2",
		PublishedAfter: "2026-08-25T00:00:00Z",
		VideoDuration:  "short",
	})
	require.NoError(t, err)

	assert.Equal(t, "cooking", gotQuery["q"])
	assert.Equal(t, "video", gotQuery["type"])
	assert.Equal(t, "viewCount", gotQuery["order"])
	assert.Equal(t, "VN", gotQuery["regionCode"])
	assert.Equal(t, "page2", gotQuery["pageToken"])
	assert.Equal(t, "2026-08-25T00:00:00Z", gotQuery["publishedAfter"])
	assert.Equal(t, "short", gotQuery["videoDuration"])
	assert.Equal(t, "50", gotQuery["maxResults"])
	assert.Equal(t, "id,snippet", gotQuery["part"])
	assert.Equal(t, "none", gotQuery["safeSearch"])
	assert.Equal(t, "test-key", gotQuery["key"])

	require.Len(t, res.Items, 1)
	assert.Equal(t, "abc", res.Items[0].ID.VideoID)
	assert.Equal(t, "tok", res.NextPageToken)
}

func TestSearchOmitsOptionalFilters(t *testing.T) {
	var rawQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"items":[]}`)
	}))

	_, err := client.Search(SearchParams{
		Query:      "anything",
		Kind:       "channel",
		Order:      "relevance",
		RegionCode: "US",
	})
	require.NoError(t, err)

	assert.NotContains(t, rawQuery, "pageToken")
	assert.NotContains(t, rawQuery, "publishedAfter")
	assert.NotContains(t, rawQuery, "videoDuration")
}

func TestQuotaErrorMapping(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, quotaBody)
	}))

	_, err := client.Search(SearchParams{Query: "q", Kind: "video", Order: "relevance", RegionCode: "US"})
	require.Error(t, err)
	assert.True(t, errs.IsQuotaExceeded(err))

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Code)
	assert.Equal(t, "quotaExceeded", apiErr.Reason)
}

func TestForbiddenWithoutQuotaReasonIsAuthError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"forbidden","errors":[{"reason":"forbidden"}]}}`)
	}))

	_, err := client.Search(SearchParams{Query: "q", Kind: "video", Order: "relevance", RegionCode: "US"})
	require.Error(t, err)
	assert.False(t, errs.IsQuotaExceeded(err))

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeAuth, apiErr.Type)
}

func TestInvalidKeyIsAuthError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid","errors":[{"reason":"keyInvalid"}]}}`)
	}))

	_, err := client.Search(SearchParams{Query: "q", Kind: "video", Order: "relevance", RegionCode: "US"})
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeAuth, apiErr.Type)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "keyInvalid", apiErr.Reason)
}

func TestServerErrorIsRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))

	_, err := client.Search(SearchParams{Query: "q", Kind: "video", Order: "relevance", RegionCode: "US"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQuotaErrorIsNotRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, quotaBody)
	}))

	_, err := client.Search(SearchParams{Query: "q", Kind: "video", Order: "relevance", RegionCode: "US"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestListVideos(t *testing.T) {
	var gotIDs string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("id")
		fmt.Fprint(w, `{"items":[{"id":"v1","snippet":{"title":"First","channelId":"c1","publishedAt":"2026-08-30T12:00:00Z"},"statistics":{"viewCount":"1000","likeCount":"50","commentCount":"7"}}]}`)
	}))

	res, err := client.ListVideos([]string{"v1", "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v1,v2", gotIDs)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "v1", res.Items[0].ID)
	assert.Equal(t, "1000", res.Items[0].Statistics.ViewCount)
	assert.Equal(t, "c1", res.Items[0].Snippet.ChannelID)
}

func TestListVideosEmptyInput(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	}))

	res, err := client.ListVideos(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestListVideosTruncatesToBatchLimit(t *testing.T) {
	ids := make([]string, MaxBatchSize+20)
	for i := range ids {
		ids[i] = fmt.Sprintf("v%d", i)
	}

	var gotIDs string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("id")
		fmt.Fprint(w, `{"items":[]}`)
	}))

	_, err := client.ListVideos(ids)
	require.NoError(t, err)

	assert.Contains(t, gotIDs, "v0")
	assert.Contains(t, gotIDs, fmt.Sprintf("v%d", MaxBatchSize-1))
	assert.NotContains(t, gotIDs, fmt.Sprintf("v%d,", MaxBatchSize))
}

func TestListChannels(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":"c1","statistics":{"subscriberCount":"12345","hiddenSubscriberCount":false}},{"id":"c2","statistics":{"subscriberCount":"0","hiddenSubscriberCount":true}}]}`)
	}))

	res, err := client.ListChannels([]string{"c1", "c2"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "12345", res.Items[0].Statistics.SubscriberCount)
	assert.True(t, res.Items[1].Statistics.HiddenSubscriberCount)
}

func TestMalformedJSONIsParsingError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [`)
	}))

	_, err := client.ListChannels([]string{"c1"})
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeParsing, apiErr.Type)
}
