package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/giftwise/giftwise/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{
		BaseURL:    srv.URL,
		SearchPath: "/api/search",
		Timeout:    2 * time.Second,
		Logger:     testLogger(),
	})
	return client, srv
}

func TestSearch_BlankKeywordSkipsNetwork(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, kw := range []string{"", "   ", "\t"} {
		products, err := client.Search(context.Background(), kw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", kw, err)
		}
		if len(products) != 0 {
			t.Fatalf("expected empty result for %q", kw)
		}
	}
	if called {
		t.Error("blank keyword must not reach the network")
	}
}

func TestSearch_PostsKeywordAndDecodesProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["keyword"] != "birthday" {
			t.Errorf("expected keyword birthday, got %q", req["keyword"])
		}
		_ = json.NewEncoder(w).Encode([]domain.Product{product("p1"), product("p2")})
	})

	products, err := client.Search(context.Background(), "  birthday ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(products); !reflect.DeepEqual(got, []string{"p1", "p2"}) {
		t.Fatalf("expected [p1 p2], got %v", got)
	}
}

func TestSearch_NonSuccessStatusIsCatalogUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "roses")
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestMultiSearch_EmptyKeywordList(t *testing.T) {
	s := &mockSearcher{}
	out := NewMulti(s, testLogger()).MultiSearch(context.Background(), nil)
	if out != nil {
		t.Fatalf("expected nil, got %v", ids(out))
	}
	if len(s.calls) != 0 {
		t.Error("empty keyword list must not trigger searches")
	}
}

func TestMultiSearch_DeduplicatesInFirstSeenOrder(t *testing.T) {
	s := &mockSearcher{results: map[string][]domain.Product{
		"birthday": {product("10"), product("20")},
		"flowers":  {product("20"), product("30")},
		"cakes":    {product("10"), product("40")},
	}}

	out := NewMulti(s, testLogger()).MultiSearch(context.Background(), []string{"birthday", "flowers", "cakes"})
	if got := ids(out); !reflect.DeepEqual(got, []string{"10", "20", "30", "40"}) {
		t.Fatalf("expected first-seen order [10 20 30 40], got %v", got)
	}
}

func TestMultiSearch_FailedSubSearchDegradesToEmpty(t *testing.T) {
	s := &mockSearcher{
		results: map[string][]domain.Product{"flowers": {product("1")}},
		errs:    map[string]error{"birthday": domain.ErrCatalogUnavailable},
	}

	out := NewMulti(s, testLogger()).MultiSearch(context.Background(), []string{"birthday", "flowers"})
	if got := ids(out); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("one failed sub-search must not abort the rest, got %v", got)
	}

	sort.Strings(s.calls)
	if !reflect.DeepEqual(s.calls, []string{"birthday", "flowers"}) {
		t.Fatalf("expected both keywords searched, got %v", s.calls)
	}
}

func TestMultiSearch_NoDuplicateIDs(t *testing.T) {
	s := &mockSearcher{results: map[string][]domain.Product{
		"a": {product("x"), product("x")},
		"b": {product("x"), product("y")},
	}}

	out := NewMulti(s, testLogger()).MultiSearch(context.Background(), []string{"a", "b"})
	seen := map[string]int{}
	for _, p := range out {
		seen[p.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("product %s appears %d times", id, n)
		}
	}
}
