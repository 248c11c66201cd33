package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytmarket/pkg/market"
	"ytmarket/pkg/retry"
	"ytmarket/pkg/rotator"
	"ytmarket/pkg/youtube"
)

// fakeAPI serves scripted search pages per region plus video and channel
// statistics lookups.
type fakeAPI struct {
	mu           sync.Mutex
	searchPages  map[string][]youtube.SearchResponse
	videos       map[string]youtube.Video
	channels     map[string]youtube.Channel
	deadKeys     map[string]bool
	searchCalls  int
	videoCalls   int
	channelCalls int

	videoIDsRequested []string
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.deadKeys[r.URL.Query().Get("key")] {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":{"code":403,"errors":[{"reason":"quotaExceeded"}]}}`)
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/search"):
			f.searchCalls++
			f.serveSearch(t, w, r)
		case strings.HasSuffix(r.URL.Path, "/videos"):
			f.videoCalls++
			f.serveVideos(t, w, r)
		case strings.HasSuffix(r.URL.Path, "/channels"):
			f.channelCalls++
			f.serveChannels(t, w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (f *fakeAPI) serveSearch(t *testing.T, w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("regionCode")
	pages := f.searchPages[region]
	require.NotEmpty(t, pages, "no pages scripted for region %s", region)

	index := 0
	if token := r.URL.Query().Get("pageToken"); token != "" {
		i, err := strconv.Atoi(strings.TrimPrefix(token, region+"-p"))
		require.NoError(t, err, "malformed page token %s", token)
		index = i
	}
	require.Less(t, index, len(pages), "page %d requested past the end for %s", index, region)

	page := pages[index]
	if index < len(pages)-1 {
		page.NextPageToken = fmt.Sprintf("%s-p%d", region, index+1)
	}
	require.NoError(t, json.NewEncoder(w).Encode(page))
}

func (f *fakeAPI) serveVideos(t *testing.T, w http.ResponseWriter, r *http.Request) {
	f.videoIDsRequested = strings.Split(r.URL.Query().Get("id"), ",")
	var resp youtube.VideoListResponse
	for _, id := range f.videoIDsRequested {
		if video, ok := f.videos[id]; ok {
			resp.Items = append(resp.Items, video)
		}
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func (f *fakeAPI) serveChannels(t *testing.T, w http.ResponseWriter, r *http.Request) {
	var resp youtube.ChannelListResponse
	for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
		if channel, ok := f.channels[id]; ok {
			resp.Items = append(resp.Items, channel)
		}
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func (f *fakeAPI) serve(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)
	return server
}

func testRotator(serverURL string, keys ...string) *rotator.Rotator {
	factory := func(key string) (*youtube.Client, error) {
		client, err := youtube.NewClient(key, time.Second, nil)
		if err != nil {
			return nil, err
		}
		client.SetBaseURL(serverURL)
		client.SetRetrier(retry.NewRetrier(1, time.Millisecond, 1.0, nil))
		return client, nil
	}
	return rotator.New(keys, factory, nil)
}

// videoPage builds one search page of sequentially numbered video results
func videoPage(prefix string, start, count int) youtube.SearchResponse {
	var page youtube.SearchResponse
	for i := 0; i < count; i++ {
		page.Items = append(page.Items, youtube.SearchItem{
			ID: youtube.ResourceID{Kind: "youtube#video", VideoID: fmt.Sprintf("%s%d", prefix, start+i)},
		})
	}
	return page
}

func videoItems(ids ...string) youtube.SearchResponse {
	var page youtube.SearchResponse
	for _, id := range ids {
		page.Items = append(page.Items, youtube.SearchItem{
			ID: youtube.ResourceID{Kind: "youtube#video", VideoID: id},
		})
	}
	return page
}

func scanParams(regions ...string) market.ScanParams {
	return market.ScanParams{
		Keyword:        "sourdough baking",
		Window:         market.WindowWeek,
		Kind:           market.KindVideo,
		Duration:       market.DurationAny,
		Order:          market.OrderRelevance,
		PerRegionLimit: 1000,
		Regions:        regions,
	}
}

func TestScanFollowsPagination(t *testing.T) {
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{
			"US": {videoPage("v", 0, 50), videoPage("v", 50, 50), videoPage("v", 100, 20)},
		},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	result, err := scanner.Scan(context.Background(), scanParams("US"), "")
	require.NoError(t, err)

	assert.Equal(t, 120, result.Pool.Len())
	assert.Equal(t, market.RegionStats{"US": 120}, result.RegionStats)
	assert.False(t, result.CapHit)
	assert.Equal(t, 3, api.searchCalls)
}

func TestScanStopsAtPerRegionCap(t *testing.T) {
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{
			"US": {videoPage("v", 0, 50), videoPage("v", 50, 50), videoPage("v", 100, 50)},
		},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	params := scanParams("US")
	params.PerRegionLimit = 100

	var lastPooled int
	scanner.Progress = func(region string, regionIndex, regionTotal, pooled int) {
		lastPooled = pooled
	}

	result, err := scanner.Scan(context.Background(), params, "")
	require.NoError(t, err)

	assert.Equal(t, 100, result.Pool.Len())
	assert.True(t, result.CapHit)
	assert.Equal(t, 2, api.searchCalls, "the third page must never be requested")
	assert.Equal(t, 100, lastPooled, "the capped page still reports its pooled count")
}

func TestScanStopsAtEmptyPage(t *testing.T) {
	// an empty page ends the region even when it carries a next-page token
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{
			"US": {{}, videoItems("a")},
		},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	result, err := scanner.Scan(context.Background(), scanParams("US"), "")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Pool.Len())
	assert.False(t, result.CapHit)
	assert.Equal(t, 1, api.searchCalls, "the page after an empty one must never be requested")
}

func TestScanCreditsFirstRegionSeen(t *testing.T) {
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{
			"US": {videoItems("a", "b", "c")},
			"GB": {videoItems("c", "d")},
		},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	result, err := scanner.Scan(context.Background(), scanParams("US", "GB"), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, result.Pool.IDs())
	assert.Equal(t, market.RegionStats{"US": 3, "GB": 1}, result.RegionStats)
	assert.Equal(t, "US", result.Pool.Origin("c"))
	assert.Equal(t, "GB", result.Pool.Origin("d"))
}

func TestScanDuplicatesDoNotConsumeBudget(t *testing.T) {
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{
			"US": {videoItems("a", "b", "c")},
			"GB": {videoItems("a", "b", "c", "d", "e")},
		},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	params := scanParams("US", "GB")
	params.PerRegionLimit = 50

	result, err := scanner.Scan(context.Background(), params, "")
	require.NoError(t, err)

	assert.Equal(t, 5, result.Pool.Len())
	assert.Equal(t, 2, result.RegionStats["GB"])
}

func TestScanSkipsMismatchedResourceKinds(t *testing.T) {
	page := videoItems("a")
	page.Items = append(page.Items, youtube.SearchItem{
		ID: youtube.ResourceID{Kind: "youtube#channel", ChannelID: "chan1"},
	})
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{"US": {page}},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	result, err := scanner.Scan(context.Background(), scanParams("US"), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, result.Pool.IDs())
}

func TestScanChannelKindCollectsChannelIDs(t *testing.T) {
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{
			"US": {{Items: []youtube.SearchItem{
				{ID: youtube.ResourceID{Kind: "youtube#channel", ChannelID: "chan1"}},
				{ID: youtube.ResourceID{Kind: "youtube#channel", ChannelID: "chan2"}},
			}}},
		},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	params := scanParams("US")
	params.Kind = market.KindChannel

	result, err := scanner.Scan(context.Background(), params, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"chan1", "chan2"}, result.Pool.IDs())
}

func TestScanHonorsCancelledContext(t *testing.T) {
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{"US": {videoItems("a")}},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.Scan(ctx, scanParams("US"), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, api.searchCalls)
}

func TestScanReportsProgress(t *testing.T) {
	api := &fakeAPI{
		searchPages: map[string][]youtube.SearchResponse{
			"US": {videoItems("a", "b")},
			"GB": {videoItems("c")},
		},
	}
	server := api.serve(t)
	scanner := NewScanner(testRotator(server.URL, "k1"), nil, nil)

	var regions []string
	var indexes, totals, pooled []int
	scanner.Progress = func(region string, regionIndex, regionTotal, n int) {
		regions = append(regions, region)
		indexes = append(indexes, regionIndex)
		totals = append(totals, regionTotal)
		pooled = append(pooled, n)
	}

	_, err := scanner.Scan(context.Background(), scanParams("US", "GB"), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"US", "GB"}, regions)
	assert.Equal(t, []int{0, 1}, indexes)
	assert.Equal(t, []int{2, 2}, totals)
	assert.Equal(t, []int{2, 3}, pooled)
}
