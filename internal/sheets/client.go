package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"EstiloSol/internal/catalog"
)

var (
	// ErrBadStatus is a hard failure: the endpoint answered with a
	// non-2xx status and no partial data is returned.
	ErrBadStatus = errors.New("sheets: bad status")
)

// StatusError carries the HTTP status of a failed feed fetch.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sheets: fetch failed with status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrBadStatus }

// Client is the catalog ingestion adapter: it fetches the sheet feed,
// normalizes rows, and degrades to the bundled snapshot (or an empty
// list) when no endpoint is configured.
type Client struct {
	endpoint     string
	fallbackPath string
	currency     string
	http         *http.Client
	log          *zap.Logger
}

func NewClient(endpoint, fallbackPath, currency string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		endpoint:     endpoint,
		fallbackPath: fallbackPath,
		currency:     currency,
		http:         &http.Client{Timeout: timeout},
		log:          log,
	}
}

// FetchCatalog implements catalog.Fetcher. live defeats intermediary
// caches with a no-store header plus a cache-busting query parameter.
//
// Failure modes: a missing endpoint degrades to the fallback snapshot
// and then to an empty list, never an error. A reachable endpoint that
// answers non-2xx or drops the connection is an error. A reachable
// endpoint returning a non-array body is an empty list.
func (c *Client) FetchCatalog(ctx context.Context, live bool) ([]catalog.Product, error) {
	if c.endpoint == "" {
		c.log.Warn("sheets endpoint not configured, using fallback snapshot")
		return c.loadFallback()
	}

	target := c.endpoint
	if live {
		target = withCacheBust(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: build request: %w", err)
	}
	if live {
		req.Header.Set("Cache-Control", "no-store")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sheets: decode body: %w", err)
	}

	rows, ok := payload.([]any)
	if !ok {
		// Reachable but malformed: degrade, don't fail.
		c.log.Warn("sheets response is not a list, returning empty catalog")
		return []catalog.Product{}, nil
	}

	return c.normalizeAll(rows), nil
}

// normalizeAll keeps survivors in arrival order; the feed is
// newest-first and that order is the "newest" sort contract.
func (c *Client) normalizeAll(rows []any) []catalog.Product {
	out := make([]catalog.Product, 0, len(rows))
	for i, raw := range rows {
		m, ok := raw.(map[string]any)
		if !ok {
			c.log.Debug("skipping non-object row", zap.Int("index", i))
			continue
		}

		p, err := normalizeRow(Row(m), c.currency)
		if err != nil {
			c.log.Debug("skipping row", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Client) loadFallback() ([]catalog.Product, error) {
	if c.fallbackPath == "" {
		return []catalog.Product{}, nil
	}

	b, err := os.ReadFile(c.fallbackPath)
	if err != nil {
		c.log.Warn("fallback snapshot unreadable", zap.String("path", c.fallbackPath), zap.Error(err))
		return []catalog.Product{}, nil
	}

	var rows []any
	if err := json.Unmarshal(b, &rows); err != nil {
		c.log.Warn("fallback snapshot is not a list", zap.String("path", c.fallbackPath), zap.Error(err))
		return []catalog.Product{}, nil
	}

	return c.normalizeAll(rows), nil
}

func withCacheBust(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(time.Now().UnixNano(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}
