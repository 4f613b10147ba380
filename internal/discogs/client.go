// Package discogs is the HTTP client for the Discogs catalog API. All
// outbound traffic in the application flows through one Client, which
// enforces a single-request-at-a-time pace under a configurable minimum
// inter-request interval and retries transient failures with exponential
// backoff and jitter.
package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.discogs.com"

// rateLimitHeader carries the requests remaining in the current window.
const rateLimitHeader = "X-Discogs-Ratelimit-Remaining"

// Config holds client credentials and pacing.
type Config struct {
	Token              string
	UserAgent          string
	MinRequestInterval time.Duration
	RetryMax           int
}

// Client talks to the Discogs API.
type Client struct {
	client    *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

// New creates a client with the default base URL.
func New(cfg Config, logger *slog.Logger) *Client {
	return NewWithBaseURL(cfg, logger, defaultBaseURL)
}

// NewWithBaseURL creates a client with a custom base URL (for testing).
func NewWithBaseURL(cfg Config, logger *slog.Logger, baseURL string) *Client {
	interval := cfg.MinRequestInterval
	if interval <= 0 {
		interval = time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Periphery/1.0"
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.Logger = nil
	rc.HTTPClient.Timeout = 10 * time.Second

	return &Client{
		client:    rc.StandardClient(),
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		logger:    logger.With(slog.String("component", "discogs")),
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     cfg.Token,
		userAgent: userAgent,
	}
}

// SearchPage is a release search response plus the upstream rate-limit
// remaining value, which callers forward to their own clients.
type SearchPage struct {
	Results            []SearchResult
	RateLimitRemaining string
}

// SearchReleases searches the catalog for releases matching album and
// artist, sorted by community "have" count descending.
func (c *Client) SearchReleases(ctx context.Context, artist, album string) (*SearchPage, error) {
	params := url.Values{
		"release_title": {album},
		"artist":        {artist},
		"type":          {"release"},
		"sort":          {"have"},
		"sort_order":    {"desc"},
	}
	reqURL := c.baseURL + "/database/search?" + params.Encode()

	body, header, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return &SearchPage{
		Results:            resp.Results,
		RateLimitRemaining: header.Get(rateLimitHeader),
	}, nil
}

// GetRelease fetches full release detail, including artist credits,
// extra-artist credits, top-level credits, and the tracklist.
func (c *Client) GetRelease(ctx context.Context, id int) (*Release, error) {
	reqURL := fmt.Sprintf("%s/releases/%d", c.baseURL, id)

	body, _, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var rel Release
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("parsing release response: %w", err)
	}
	return &rel, nil
}

// GetArtist fetches artist detail; for rostered bands this includes the
// member array.
func (c *Client) GetArtist(ctx context.Context, id int) (*Artist, error) {
	reqURL := fmt.Sprintf("%s/artists/%d", c.baseURL, id)

	body, _, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var artist Artist
	if err := json.Unmarshal(body, &artist); err != nil {
		return nil, fmt.Errorf("parsing artist response: %w", err)
	}
	return &artist, nil
}

// GetArtistReleases fetches the artist's full discography, following
// pagination until the last page.
func (c *Client) GetArtistReleases(ctx context.Context, id int) ([]ArtistRelease, error) {
	var all []ArtistRelease

	page := 1
	for {
		reqURL := fmt.Sprintf("%s/artists/%d/releases?page=%d&per_page=100", c.baseURL, id, page)

		body, _, err := c.doRequest(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		var resp ArtistReleasesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parsing artist releases response: %w", err)
		}
		all = append(all, resp.Releases...)

		if resp.Pagination.Pages == 0 || page >= resp.Pagination.Pages {
			return all, nil
		}
		page++
	}
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, &ErrUnavailable{Cause: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.token)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting", slog.String("url", reqURL))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, &ErrUnavailable{Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, &ErrNotFound{URL: reqURL}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil, &ErrAuthRequired{}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &ErrUnavailable{
			Cause:     fmt.Errorf("HTTP %d", resp.StatusCode),
			Remaining: resp.Header.Get(rateLimitHeader),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &ErrUnavailable{Cause: err}
	}
	return body, resp.Header, nil
}

// YearString renders a discography entry's numeric year the way search
// results carry it.
func YearString(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
