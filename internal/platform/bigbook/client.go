package bigbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shelfapi/internal/book"
	"shelfapi/internal/logger"
	"shelfapi/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.bigbookapi.com"

	opSearch = "search"
	opDetail = "detail"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RPS paces outbound calls; zero or negative disables pacing.
	RPS float64
}

// Client talks to the Big Book API. Calls are never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    newBreaker("bigbook-api"),
	}
}

// SearchQuery is one page request against search-books.
type SearchQuery struct {
	Query string
	// Genre is passed through as the genres filter when non-empty.
	Genre  string
	Number int
	Offset int
}

// SearchResult is one projected page of search-books.
type SearchResult struct {
	Available int
	Books     []book.Summary
	// Skipped counts records on the page that could not be decoded.
	Skipped int
}

// Empty reports whether the page carried no records at all, decodable or not.
func (r *SearchResult) Empty() bool {
	return len(r.Books) == 0 && r.Skipped == 0
}

type rawAuthor struct {
	Name string `json:"name"`
}

type rawRating struct {
	Average *float64 `json:"average"`
}

type rawBook struct {
	ID      json.Number `json:"id"`
	Title   string      `json:"title"`
	Image   string      `json:"image"`
	Authors []rawAuthor `json:"authors"`
	Rating  *rawRating  `json:"rating"`
}

type rawDetail struct {
	rawBook
	NumberOfPages *int   `json:"number_of_pages"`
	Description   string `json:"description"`
}

// search-books returns books as arrays of editions; older responses used
// plain objects under "data".
type rawSearchResponse struct {
	Available *int              `json:"available"`
	Books     []json.RawMessage `json:"books"`
	Data      []json.RawMessage `json:"data"`
}

func (c *Client) SearchPage(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", q.Query)
	params.Set("number", strconv.Itoa(q.Number))
	params.Set("offset", strconv.Itoa(q.Offset))
	if q.Genre != "" {
		params.Set("genres", q.Genre)
	}

	var res rawSearchResponse
	if err := c.get(ctx, opSearch, "/search-books", params, &res); err != nil {
		return nil, err
	}

	items := res.Books
	if len(items) == 0 {
		items = res.Data
	}

	out := &SearchResult{Books: make([]book.Summary, 0, len(items))}
	if res.Available != nil {
		out.Available = *res.Available
	}
	for _, item := range items {
		raw, ok := decodeItem(item)
		if !ok {
			out.Skipped++
			continue
		}
		out.Books = append(out.Books, raw.summary())
	}
	return out, nil
}

func (c *Client) GetDetail(ctx context.Context, id string) (*book.Detail, error) {
	var raw rawDetail
	if err := c.get(ctx, opDetail, "/"+url.PathEscape(id), url.Values{}, &raw); err != nil {
		return nil, err
	}

	d := &book.Detail{Summary: raw.summary()}
	if raw.NumberOfPages != nil && *raw.NumberOfPages > 0 {
		pages := *raw.NumberOfPages
		d.NumberOfPages = &pages
	}
	if raw.Description != "" {
		desc := raw.Description
		d.Description = &desc
	}
	return d, nil
}

func decodeItem(item json.RawMessage) (rawBook, bool) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var editions []rawBook
		if err := json.Unmarshal(trimmed, &editions); err != nil || len(editions) == 0 {
			return rawBook{}, false
		}
		return editions[0], true
	}
	var b rawBook
	if err := json.Unmarshal(trimmed, &b); err != nil {
		return rawBook{}, false
	}
	return b, true
}

func (b rawBook) summary() book.Summary {
	s := book.Summary{
		ExternalID: b.ID.String(),
		Title:      b.Title,
		Authors:    make([]string, 0, len(b.Authors)),
	}
	for _, a := range b.Authors {
		if a.Name != "" {
			s.Authors = append(s.Authors, a.Name)
		}
	}
	if b.Image != "" {
		img := b.Image
		s.CoverImageURL = &img
	}
	if b.Rating != nil && b.Rating.Average != nil {
		avg := *b.Rating.Average
		s.AverageRating = &avg
	}
	return s
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &UpstreamError{Op: op, Err: err}
	}

	params.Set("api-key", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, op, u, target)
	})
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, "error").Inc()
		logger.For(ctx).WithError(err).WithField("op", op).Warn("bigbook call failed")
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			return err
		}
		return &UpstreamError{Op: op, Err: err}
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

func (c *Client) do(ctx context.Context, op, u string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: redact(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// redact strips the request URL (and with it the API key) from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
