package youtube

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "ytmarket/pkg/errors"
	"ytmarket/pkg/logger"
	"ytmarket/pkg/retry"
)

// Client is a YouTube Data API v3 client bound to a single API key
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retrier    *retry.Retrier
	logger     logger.Logger
}

// NewClient creates a new client for the given API key
func NewClient(apiKey string, timeout time.Duration, log logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: "API key is empty",
		}
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    BaseURL,
		apiKey:     apiKey,
		retrier:    retry.NewRetrier(3, 2*time.Second, 2.0, log),
		logger:     log,
	}, nil
}

// SetBaseURL overrides the API base URL (used by tests)
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// SetRetrier overrides the transport retrier
func (c *Client) SetRetrier(r *retry.Retrier) {
	c.retrier = r
}

// Search performs one search.list page request
func (c *Client) Search(p SearchParams) (*SearchResponse, error) {
	var response SearchResponse
	if err := c.getJSON(searchURL(c.baseURL, c.apiKey, p), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListVideos fetches snippet and statistics for up to MaxBatchSize video IDs
func (c *Client) ListVideos(ids []string) (*VideoListResponse, error) {
	if len(ids) == 0 {
		return &VideoListResponse{}, nil
	}
	if len(ids) > MaxBatchSize {
		ids = ids[:MaxBatchSize]
	}

	var response VideoListResponse
	if err := c.getJSON(videosURL(c.baseURL, c.apiKey, ids), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListChannels fetches statistics for up to MaxBatchSize channel IDs
func (c *Client) ListChannels(ids []string) (*ChannelListResponse, error) {
	if len(ids) == 0 {
		return &ChannelListResponse{}, nil
	}
	if len(ids) > MaxBatchSize {
		ids = ids[:MaxBatchSize]
	}

	var response ChannelListResponse
	if err := c.getJSON(channelsURL(c.baseURL, c.apiKey, ids), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// getJSON performs a GET request and decodes the JSON response. Network and
// 5xx failures are retried with backoff; API-level rejections are mapped to
// typed errors and returned as-is.
func (c *Client) getJSON(url string, target interface{}) error {
	return c.retrier.Do(func() error {
		return c.doGetJSON(url, target)
	})
}

func (c *Client) doGetJSON(url string, target interface{}) error {
	start := time.Now()

	resp, err := c.httpClient.Get(url)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode != http.StatusOK {
		return c.mapAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// mapAPIError converts a non-200 response into a typed error. A 403 carrying
// a quota reason is the signal the rotator acts on; every other 403 is an
// auth failure.
func (c *Client) mapAPIError(status int, body []byte) error {
	var envelope apiError
	reason := ""
	message := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		message = envelope.Error.Message
		if len(envelope.Error.Errors) > 0 {
			reason = envelope.Error.Errors[0].Reason
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusForbidden && isQuotaReason(reason):
		c.logger.WarnWithFields("API quota exhausted for current key", map[string]interface{}{
			"status": status,
			"reason": reason,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeQuota,
			Message: message,
			Code:    status,
			Reason:  reason,
		}
	case status == http.StatusForbidden || status == http.StatusUnauthorized ||
		(status == http.StatusBadRequest && reason == "keyInvalid"):
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: message,
			Code:    status,
			Reason:  reason,
		}
	case status == http.StatusNotFound:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: message,
			Code:    status,
			Reason:  reason,
		}
	case status >= 500 || status == http.StatusTooManyRequests:
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: message,
			Code:    status,
			Reason:  reason,
		}
	default:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code %d: %s", status, message),
			Code:    status,
			Reason:  reason,
		}
	}
}

// isQuotaReason reports whether an API reason code means the key's call
// budget is spent, as opposed to a permanently denied request.
func isQuotaReason(reason string) bool {
	switch reason {
	case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
		return true
	default:
		return false
	}
}
