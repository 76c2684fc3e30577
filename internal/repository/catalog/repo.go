// Package catalog is the client for the external product catalog: keyword
// search, multi-keyword fan-out with deduplication, result caching, and
// structured filtering.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/domain"
	"github.com/giftwise/giftwise/internal/metrics"
)

// Searcher executes one keyword search against the catalog.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]domain.Product, error)
}

// Config holds the catalog client settings.
type Config struct {
	BaseURL    string
	SearchPath string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client talks to the catalog search endpoint over HTTP.
type Client struct {
	httpClient *http.Client
	searchURL  string
	baseURL    string
	logger     *zap.Logger
}

// Compile-time check: Client implements Searcher.
var _ Searcher = (*Client)(nil)

// NewClient creates a catalog HTTP client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		searchURL:  strings.TrimRight(cfg.BaseURL, "/") + cfg.SearchPath,
		baseURL:    cfg.BaseURL,
		logger:     cfg.Logger,
	}
}

// BaseURL returns the catalog root used to build absolute product URLs.
func (c *Client) BaseURL() string { return c.baseURL }

// Search runs one keyword search. A blank keyword returns an empty result
// without a network call. Failures are wrapped with ErrCatalogUnavailable;
// the multi-search layer decides whether to absorb them.
func (c *Client) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}

	body, err := json.Marshal(map[string]string{"keyword": keyword})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CatalogSearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("catalog search %q: %w: %w", keyword, domain.ErrCatalogUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.CatalogSearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("catalog search %q: status %d: %w", keyword, resp.StatusCode, domain.ErrCatalogUnavailable)
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		metrics.CatalogSearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode catalog response for %q: %w", keyword, err)
	}

	metrics.CatalogSearchesTotal.WithLabelValues("success").Inc()
	return products, nil
}

// Ping checks catalog reachability for health reporting.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog ping: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// Multi fans a query out over several keywords through one Searcher
// (typically the caching decorator).
type Multi struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewMulti creates a multi-keyword searcher.
func NewMulti(s Searcher, logger *zap.Logger) *Multi {
	return &Multi{searcher: s, logger: logger}
}

// MultiSearch issues all keyword searches concurrently, waits for all of
// them, and merges the results in first-seen order, deduplicated by product
// ID. A failed sub-search degrades to an empty slice so one bad keyword
// never aborts the whole search.
func (m *Multi) MultiSearch(ctx context.Context, keywords []string) []domain.Product {
	if len(keywords) == 0 {
		return nil
	}

	perKeyword := make([][]domain.Product, len(keywords))
	var wg sync.WaitGroup
	for i, kw := range keywords {
		wg.Add(1)
		go func(i int, kw string) {
			defer wg.Done()
			products, err := m.searcher.Search(ctx, kw)
			if err != nil {
				m.logger.Warn("Catalog sub-search failed, degrading to empty",
					zap.String("keyword", kw), zap.Error(err))
				return
			}
			perKeyword[i] = products
		}(i, kw)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var merged []domain.Product
	for _, products := range perKeyword {
		for _, p := range products {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}
