// Package helix is the Twitch Helix "Get Streams" client.
package helix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/domain"
	"github.com/kailas-cloud/streamreel/internal/domain/stream"
	"github.com/kailas-cloud/streamreel/internal/metrics"
)

// Defaults for the Helix client.
const (
	DefaultBaseURL = "https://api.twitch.tv/helix"
	DefaultTimeout = 15 * time.Second

	maxBodyBytes = 4 << 20
)

// Config holds the Helix client settings. The access token is used as-is and never refreshed.
type Config struct {
	BaseURL     string
	ClientID    string
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client fetches pages of live streams for a category.
type Client struct {
	http        *http.Client
	streamsURL  string
	clientID    string
	accessToken string
	logger      *zap.Logger
}

// NewClient creates a Helix client.
func NewClient(cfg *Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:        hc,
		streamsURL:  base + "/streams",
		clientID:    cfg.ClientID,
		accessToken: cfg.AccessToken,
		logger:      logger,
	}
}

// Fetch requests one page of live streams. cursor is empty for the first page.
// Transport failures, non-200 statuses, empty and oversized bodies return *domain.UpstreamError.
// A body without a data field yields a Page with HasData=false.
func (c *Client) Fetch(ctx context.Context, categoryID string, pageSize int, cursor string) (stream.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(categoryID, pageSize, cursor), http.NoBody)
	if err != nil {
		return stream.Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("transport_error").Inc()
		return stream.Page{}, domain.NewTransportError(transportDetail(err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	// One byte past the limit tells an oversized body from one that fits exactly.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("transport_error").Inc()
		return stream.Page{}, &domain.UpstreamError{HTTPStatus: resp.StatusCode, Detail: transportDetail(err), Err: err}
	}
	if len(body) > maxBodyBytes {
		metrics.UpstreamRequestsTotal.WithLabelValues("http_error").Inc()
		return stream.Page{}, domain.NewUpstreamError(resp.StatusCode,
			fmt.Sprintf("response body exceeds %d bytes", maxBodyBytes))
	}

	c.observeRateLimit(resp.Header)

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues("http_error").Inc()
		return stream.Page{}, domain.NewUpstreamError(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(body) == 0 {
		metrics.UpstreamRequestsTotal.WithLabelValues("http_error").Inc()
		return stream.Page{}, domain.NewUpstreamError(resp.StatusCode, "empty response body")
	}

	page, err := decodePage(body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("malformed").Inc()
		c.logger.Warn("Malformed upstream page, treating as last page", zap.Error(err))
		return stream.Page{}, nil
	}
	if !page.HasData {
		metrics.UpstreamRequestsTotal.WithLabelValues("malformed").Inc()
		c.logger.Warn("Upstream page has no data field, treating as last page")
		return page, nil
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("success").Inc()
	return page, nil
}

func (c *Client) pageURL(categoryID string, pageSize int, cursor string) string {
	params := url.Values{}
	params.Set("game_id", categoryID)
	params.Set("first", strconv.Itoa(pageSize))
	if cursor != "" {
		params.Set("after", cursor)
	}
	return c.streamsURL + "?" + params.Encode()
}

func (c *Client) observeRateLimit(h http.Header) {
	raw := h.Get("Ratelimit-Remaining")
	if raw == "" {
		return
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	metrics.UpstreamRateLimitRemaining.Set(float64(remaining))
	c.logger.Debug("Upstream rate limit", zap.Int("remaining", remaining))
}

// transportDetail flattens *url.Error so the detail reads like a curl error message.
func transportDetail(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return "request timed out: " + uerr.Err.Error()
		}
		return uerr.Err.Error()
	}
	return err.Error()
}
