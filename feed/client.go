package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"nba-game-poller/metrics"
)

const (
	DefaultBaseURL = "https://cdn.nba.com/static/json/liveData"
	DefaultTimeout = 5 * time.Second

	// Feed names used in logs and metrics.
	FeedPlayByPlay = "playbyplay"
	FeedBoxScore   = "boxscore"
	FeedScoreboard = "scoreboard"
)

// Fetch results.
const (
	ResultOK          = "ok"
	ResultNotModified = "not_modified"
	ResultError       = "error"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Client reads the league's live-data CDN with conditional requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) PlayByPlayURL(gameID string) string {
	return fmt.Sprintf("%s/playbyplay/playbyplay_%s.json", c.baseURL, gameID)
}

func (c *Client) BoxScoreURL(gameID string) string {
	return fmt.Sprintf("%s/boxscore/boxscore_%s.json", c.baseURL, gameID)
}

func (c *Client) ScoreboardURL() string {
	return c.baseURL + "/scoreboard/todaysScoreboard_00.json"
}

// Fetch performs a conditional GET. It returns the decoded-ready JSON body and
// the new validator token on 200. Every other outcome (304, non-200, transport
// error, undecodable body) returns a nil body and the prior token.
func (c *Client) Fetch(ctx context.Context, url, etag, userAgent string) ([]byte, string) {
	body, newTag, result := c.fetch(ctx, url, etag, userAgent)
	if result != ResultOK {
		return nil, etag
	}
	return body, newTag
}

func (c *Client) fetch(ctx context.Context, url, etag, userAgent string) ([]byte, string, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to build feed request", "url", url, "error", err)
		return nil, etag, ResultError
	}
	if userAgent == "" {
		userAgent = PickUserAgent(nil)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Feed request failed", "url", url, "error", err)
		return nil, etag, ResultError
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		return nil, etag, ResultNotModified
	default:
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn("Feed returned unexpected status", "url", url, "status", resp.StatusCode)
		return nil, etag, ResultError
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("Failed to read feed body", "url", url, "error", err)
		return nil, etag, ResultError
	}
	if bytes.HasPrefix(body, gzipMagic) {
		body, err = gunzip(body)
		if err != nil {
			c.logger.Warn("Failed to decompress feed body", "url", url, "error", err)
			return nil, etag, ResultError
		}
	}
	if !json.Valid(body) {
		c.logger.Warn("Feed body is not valid JSON", "url", url)
		return nil, etag, ResultError
	}
	return body, resp.Header.Get("ETag"), ResultOK
}

func gunzip(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// FetchPlayByPlay returns the play-by-play document, or nil when unchanged or unavailable.
func (c *Client) FetchPlayByPlay(ctx context.Context, gameID, etag, userAgent string) (*PlayByPlay, string) {
	body, newTag, result := c.fetch(ctx, c.PlayByPlayURL(gameID), etag, userAgent)
	if result == ResultOK {
		var doc PlayByPlay
		if err := json.Unmarshal(body, &doc); err != nil {
			c.logger.Warn("Failed to decode play-by-play", "gameID", gameID, "error", err)
			c.metrics.IncFeedFetch(FeedPlayByPlay, ResultError)
			return nil, etag
		}
		c.metrics.IncFeedFetch(FeedPlayByPlay, result)
		return &doc, newTag
	}
	c.metrics.IncFeedFetch(FeedPlayByPlay, result)
	return nil, etag
}

// FetchBoxScore returns the box score document, or nil when unchanged or unavailable.
func (c *Client) FetchBoxScore(ctx context.Context, gameID, etag, userAgent string) (*BoxScore, string) {
	body, newTag, result := c.fetch(ctx, c.BoxScoreURL(gameID), etag, userAgent)
	if result == ResultOK {
		var doc BoxScore
		if err := json.Unmarshal(body, &doc); err != nil {
			c.logger.Warn("Failed to decode box score", "gameID", gameID, "error", err)
			c.metrics.IncFeedFetch(FeedBoxScore, ResultError)
			return nil, etag
		}
		c.metrics.IncFeedFetch(FeedBoxScore, result)
		return &doc, newTag
	}
	c.metrics.IncFeedFetch(FeedBoxScore, result)
	return nil, etag
}

// FetchScoreboard reads today's scoreboard unconditionally.
func (c *Client) FetchScoreboard(ctx context.Context, userAgent string) (*Scoreboard, error) {
	body, _, result := c.fetch(ctx, c.ScoreboardURL(), "", userAgent)
	c.metrics.IncFeedFetch(FeedScoreboard, result)
	if result != ResultOK {
		return nil, fmt.Errorf("fetching scoreboard: %s", result)
	}
	var sb Scoreboard
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}
	return &sb, nil
}
