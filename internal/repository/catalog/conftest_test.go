package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/cache"
	"github.com/giftwise/giftwise/internal/domain"
)

func price(v float64) *float64 { return &v }

func product(id string, opts ...func(*domain.Product)) domain.Product {
	p := domain.Product{
		ID:       id,
		Name:     "Gift " + id,
		MinPrice: price(25),
		Score:    1,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func withMinPrice(v float64) func(*domain.Product) {
	return func(p *domain.Product) { p.MinPrice = price(v) }
}

func withNoPrice() func(*domain.Product) {
	return func(p *domain.Product) { p.MinPrice = nil }
}

func withOccasion(occ string) func(*domain.Product) {
	return func(p *domain.Product) { p.Occasion = occ }
}

func withIngredients(ing string) func(*domain.Product) {
	return func(p *domain.Product) { p.Ingredients = ing }
}

func withOneHour() func(*domain.Product) {
	return func(p *domain.Product) { p.OneHourDelivery = true }
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

// mockSearcher returns canned results per keyword. MultiSearch fans out
// concurrently, so the call log is mutex-guarded.
type mockSearcher struct {
	mu      sync.Mutex
	results map[string][]domain.Product
	errs    map[string]error
	calls   []string
}

func (m *mockSearcher) Search(_ context.Context, keyword string) ([]domain.Product, error) {
	m.mu.Lock()
	m.calls = append(m.calls, keyword)
	m.mu.Unlock()
	if err, ok := m.errs[keyword]; ok {
		return nil, err
	}
	return m.results[keyword], nil
}

// mockStore implements cache.Store for decorator tests.
type mockStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, cache.ErrKeyNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockStore) Ping(context.Context) error { return nil }

func testLogger() *zap.Logger { return zap.NewNop() }
