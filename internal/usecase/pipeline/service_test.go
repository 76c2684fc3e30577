package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/giftwise/giftwise/internal/domain"
)

const birthdayIntentJSON = `{
	"keywords": ["chocolate"],
	"occasion": "birthday",
	"budget_max": 50,
	"recipient": "mom",
	"intent_type": "browse",
	"needs_clarification": false,
	"sentiment": "positive"
}`

func TestProcessMessage_Recommend(t *testing.T) {
	catalog := &mockCatalog{products: []domain.Product{
		product("p1", "Truffle Box", 0.9),
		product("p2", "Chocolate Tower", 0.8),
		product("p3", "Fruit Basket", 0.7),
	}}
	llm := &mockCompleter{responses: []canned{
		{text: birthdayIntentJSON},
		{text: "Try the [ID:p2] Chocolate Tower, a classic birthday pick."},
	}}
	svc := newService(catalog, llm)

	res, err := svc.ProcessMessage(context.Background(), "gift for my mom's birthday, under $50", nil)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if len(catalog.calls) != 1 {
		t.Fatalf("catalog called %d times, want 1", len(catalog.calls))
	}
	if want := []string{"chocolate", "birthday"}; !equalIDs(catalog.calls[0], want) {
		t.Errorf("search keywords %v, want %v", catalog.calls[0], want)
	}

	if !strings.Contains(res.Message, "Chocolate Tower") {
		t.Errorf("message %q does not carry the generated text", res.Message)
	}
	if res.Intent.Occasion != "birthday" {
		t.Errorf("intent occasion = %q, want birthday", res.Intent.Occasion)
	}

	// The mentioned product leads, the rest keep ranked order.
	if want := []string{"p2", "p1", "p3"}; !equalIDs(ids(res.Products), want) {
		t.Errorf("products %v, want %v", ids(res.Products), want)
	}

	if len(llm.calls) != 2 {
		t.Fatalf("completer called %d times, want 2", len(llm.calls))
	}
	if got := llm.calls[0].opts.Temperature; got != 0 {
		t.Errorf("extraction temperature = %v, want 0", got)
	}
	if got := llm.calls[1].opts.Temperature; got != 0.7 {
		t.Errorf("response temperature = %v, want 0.7", got)
	}
}

func TestProcessMessage_ClarificationSkipsCatalog(t *testing.T) {
	catalog := &mockCatalog{}
	llm := &mockCompleter{responses: []canned{
		{text: `{"intent_type":"browse","needs_clarification":true,"clarification_topic":"budget"}`},
		{text: "What budget did you have in mind?"},
	}}
	svc := newService(catalog, llm)

	res, err := svc.ProcessMessage(context.Background(), "I need a gift", nil)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if len(catalog.calls) != 0 {
		t.Errorf("catalog was searched on a clarification turn")
	}
	if res.Message != "What budget did you have in mind?" {
		t.Errorf("message = %q", res.Message)
	}
	if len(res.Products) != 0 {
		t.Errorf("clarification turn returned %d products", len(res.Products))
	}
}

func TestProcessMessage_MalformedIntentFallsBack(t *testing.T) {
	catalog := &mockCatalog{products: []domain.Product{product("p1", "Candle Set", 0.5)}}
	llm := &mockCompleter{responses: []canned{
		{text: "I could not produce JSON, sorry!"},
		{text: "How about the [ID:p1] Candle Set?"},
	}}
	svc := newService(catalog, llm)

	res, err := svc.ProcessMessage(context.Background(), "cozy gift for a friend please", nil)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if len(catalog.calls) != 1 {
		t.Fatalf("catalog called %d times, want 1", len(catalog.calls))
	}
	// Fallback keyword is the first three words of the raw message.
	if want := []string{"cozy gift for"}; !equalIDs(catalog.calls[0], want) {
		t.Errorf("search keywords %v, want %v", catalog.calls[0], want)
	}
	if len(res.Products) != 1 || res.Products[0].ID != "p1" {
		t.Errorf("products %v, want [p1]", ids(res.Products))
	}
}

func TestProcessMessage_ExtractionFailurePropagates(t *testing.T) {
	llm := &mockCompleter{responses: []canned{
		{err: domain.ErrInferenceProvider},
	}}
	svc := newService(&mockCatalog{}, llm)

	_, err := svc.ProcessMessage(context.Background(), "hi", nil)
	if !errors.Is(err, domain.ErrInferenceProvider) {
		t.Fatalf("err = %v, want ErrInferenceProvider", err)
	}
}

func TestProcessMessage_ResponseFailurePropagates(t *testing.T) {
	catalog := &mockCatalog{products: []domain.Product{product("p1", "Truffle Box", 0.9)}}
	llm := &mockCompleter{responses: []canned{
		{text: birthdayIntentJSON},
		{err: domain.ErrInferenceProvider},
	}}
	svc := newService(catalog, llm)

	_, err := svc.ProcessMessage(context.Background(), "gift", nil)
	if !errors.Is(err, domain.ErrInferenceProvider) {
		t.Fatalf("err = %v, want ErrInferenceProvider", err)
	}
}

func TestProcessMessage_EmptyCatalogStillAnswers(t *testing.T) {
	llm := &mockCompleter{responses: []canned{
		{text: birthdayIntentJSON},
		{text: "I could not find a match, could you tell me more?"},
	}}
	svc := newService(&mockCatalog{}, llm)

	res, err := svc.ProcessMessage(context.Background(), "gift", nil)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if res.Message == "" {
		t.Error("empty message on empty catalog")
	}
	if len(res.Products) != 0 {
		t.Errorf("products %v, want none", ids(res.Products))
	}
}

func TestProcessMessageStream(t *testing.T) {
	catalog := &mockCatalog{products: []domain.Product{
		product("p1", "Truffle Box", 0.9),
		product("p2", "Chocolate Tower", 0.8),
	}}
	llm := &mockCompleter{responses: []canned{
		{text: birthdayIntentJSON},
		{text: "Here are some ideas."},
	}}
	svc := newService(catalog, llm)

	res, err := svc.ProcessMessageStream(context.Background(), "gift", nil)
	if err != nil {
		t.Fatalf("ProcessMessageStream: %v", err)
	}
	defer res.Stream.Close()

	// Provisional products keep ranked order; reconciliation needs the
	// full text, which the caller has not consumed yet.
	if want := []string{"p1", "p2"}; !equalIDs(ids(res.Products), want) {
		t.Errorf("products %v, want %v", ids(res.Products), want)
	}

	var text strings.Builder
	for {
		frag, err := res.Stream.Recv()
		if err != nil {
			break
		}
		text.WriteString(frag)
	}
	if text.String() != "Here are some ideas." {
		t.Errorf("streamed text = %q", text.String())
	}
}

func TestCompareProducts(t *testing.T) {
	pool := []domain.Product{
		product("p1", "Truffle Box", 0.9),
		product("p2", "Chocolate Tower", 0.8),
	}
	llm := &mockCompleter{responses: []canned{
		{text: "The [ID:p1] Truffle Box is the richer option."},
	}}
	svc := newService(&mockCatalog{}, llm)

	res, err := svc.CompareProducts(context.Background(), []string{"p1", "p2"}, pool, "for a birthday")
	if err != nil {
		t.Fatalf("CompareProducts: %v", err)
	}
	if !strings.Contains(res.Message, "Truffle Box") {
		t.Errorf("message = %q", res.Message)
	}

	if len(llm.calls) != 1 {
		t.Fatalf("completer called %d times, want 1", len(llm.calls))
	}
	if got := llm.calls[0].opts.Temperature; got != 0.5 {
		t.Errorf("comparison temperature = %v, want 0.5", got)
	}
}

func TestCompareProducts_TooFewSelected(t *testing.T) {
	llm := &mockCompleter{}
	svc := newService(&mockCatalog{}, llm)

	res, err := svc.CompareProducts(context.Background(), []string{"p1"}, nil, "")
	if err != nil {
		t.Fatalf("CompareProducts: %v", err)
	}
	if res.Message != compareValidationMessage {
		t.Errorf("message = %q, want validation message", res.Message)
	}
	if len(llm.calls) != 0 {
		t.Error("model was called for an invalid comparison")
	}
}

func TestCompareProducts_UnknownIDsDropped(t *testing.T) {
	pool := []domain.Product{product("p1", "Truffle Box", 0.9)}
	llm := &mockCompleter{}
	svc := newService(&mockCatalog{}, llm)

	// Two identifiers, but only one resolves against the pool.
	res, err := svc.CompareProducts(context.Background(), []string{"p1", "ghost"}, pool, "")
	if err != nil {
		t.Fatalf("CompareProducts: %v", err)
	}
	if res.Message != compareValidationMessage {
		t.Errorf("message = %q, want validation message", res.Message)
	}
	if len(llm.calls) != 0 {
		t.Error("model was called with fewer than two resolved products")
	}
}
