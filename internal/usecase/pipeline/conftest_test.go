package pipeline

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/domain"
)

func price(v float64) *float64 { return &v }

func product(id, name string, score float64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     name,
		MinPrice: price(10),
		MaxPrice: price(40),
		Score:    score,
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func equalIDs(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type mockCatalog struct {
	products []domain.Product
	calls    [][]string
}

func (m *mockCatalog) MultiSearch(_ context.Context, keywords []string) []domain.Product {
	m.calls = append(m.calls, keywords)
	return m.products
}

type completerCall struct {
	prompt string
	opts   domain.ChatOptions
}

type canned struct {
	text string
	err  error
}

// mockCompleter replays canned responses in call order and records every
// request it saw.
type mockCompleter struct {
	responses []canned
	calls     []completerCall
}

func (m *mockCompleter) next(messages []domain.ChatMessage, opts domain.ChatOptions) canned {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	m.calls = append(m.calls, completerCall{prompt: prompt, opts: opts})

	if len(m.responses) == 0 {
		return canned{}
	}
	r := m.responses[0]
	m.responses = m.responses[1:]
	return r
}

func (m *mockCompleter) Complete(_ context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	r := m.next(messages, opts)
	return r.text, r.err
}

func (m *mockCompleter) Stream(_ context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (domain.TokenStream, error) {
	r := m.next(messages, opts)
	if r.err != nil {
		return nil, r.err
	}
	return &fakeStream{fragments: []string{r.text}}, nil
}

type fakeStream struct {
	fragments []string
	closed    bool
}

func (s *fakeStream) Recv() (string, error) {
	if len(s.fragments) == 0 {
		return "", io.EOF
	}
	f := s.fragments[0]
	s.fragments = s.fragments[1:]
	return f, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

func newService(catalog *mockCatalog, llm *mockCompleter) *Service {
	return New(catalog, llm, zap.NewNop())
}
