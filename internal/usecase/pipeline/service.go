// Package pipeline orchestrates one conversation turn: intent extraction,
// catalog search, filtering and ranking, grounded response generation, and
// reconciliation of the generated text with the displayed products.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/domain"
	"github.com/giftwise/giftwise/internal/metrics"
	"github.com/giftwise/giftwise/internal/usecase/prompt"
)

// Request temperatures per purpose. Extraction is deterministic; the
// conversational replies leave room for phrasing variety.
const (
	tempExtract  = 0.0
	tempClarify  = 0.7
	tempRespond  = 0.7
	tempCompare  = 0.5
	displayLimit = 8
	modelLimit   = 10
)

// compareValidationMessage is returned without a model call when fewer than
// two products were selected for comparison.
const compareValidationMessage = "Please select at least two products to compare."

// Result is the terminal output of a completed turn.
type Result struct {
	Message  string
	Products []domain.Product
	Intent   domain.Intent
}

// StreamResult is the streaming variant's output. Products are provisional:
// reconciliation needs the complete text, which the caller is still
// consuming from Stream.
type StreamResult struct {
	Stream   domain.TokenStream
	Products []domain.Product
	Intent   domain.Intent
}

// CompareResult is the output of a product comparison.
type CompareResult struct {
	Message string
}

// Service is the message-processing pipeline.
type Service struct {
	catalog Catalog
	llm     Completer
	logger  *zap.Logger
}

// New creates a pipeline service.
func New(catalog Catalog, llm Completer, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, llm: llm, logger: logger}
}

// ProcessMessage runs the full turn and returns the final message with its
// reconciled product list.
func (s *Service) ProcessMessage(ctx context.Context, message string, history []domain.Turn) (Result, error) {
	intent, err := s.extractIntent(ctx, message, history)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}

	if intent.NeedsClarification {
		text, err := s.complete(ctx, prompt.Clarification(message, intent), tempClarify, "clarify")
		if err != nil {
			metrics.TurnsTotal.WithLabelValues("error").Inc()
			return Result{}, err
		}
		metrics.TurnsTotal.WithLabelValues("clarify").Inc()
		return Result{Message: text, Intent: intent}, nil
	}

	ranked := s.searchAndRank(ctx, intent)
	candidates := topN(ranked, modelLimit)
	display := topN(ranked, displayLimit)

	text, err := s.complete(ctx, prompt.Response(message, intent, candidates, history), tempRespond, "respond")
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}

	metrics.TurnsTotal.WithLabelValues("recommend").Inc()
	return Result{
		Message:  text,
		Products: reconcileProducts(text, display, candidates, displayLimit, s.logger),
		Intent:   intent,
	}, nil
}

// ProcessMessageStream runs the turn up to generation and hands back the
// token stream. The caller owns the stream: it may abandon it with Close,
// and it cannot get a reconciled product order since that needs the full
// text.
func (s *Service) ProcessMessageStream(ctx context.Context, message string, history []domain.Turn) (StreamResult, error) {
	intent, err := s.extractIntent(ctx, message, history)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return StreamResult{}, err
	}

	if intent.NeedsClarification {
		stream, err := s.stream(ctx, prompt.Clarification(message, intent), tempClarify, "clarify")
		if err != nil {
			metrics.TurnsTotal.WithLabelValues("error").Inc()
			return StreamResult{}, err
		}
		metrics.TurnsTotal.WithLabelValues("clarify").Inc()
		return StreamResult{Stream: stream, Intent: intent}, nil
	}

	ranked := s.searchAndRank(ctx, intent)
	candidates := topN(ranked, modelLimit)
	display := topN(ranked, displayLimit)

	stream, err := s.stream(ctx, prompt.Response(message, intent, candidates, history), tempRespond, "respond")
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return StreamResult{}, err
	}

	metrics.TurnsTotal.WithLabelValues("recommend").Inc()
	return StreamResult{Stream: stream, Products: display, Intent: intent}, nil
}

// CompareProducts generates a side-by-side comparison of the selected
// products. Fewer than two resolvable products is a user-facing validation
// failure: a validation message, no model call, no error.
func (s *Service) CompareProducts(
	ctx context.Context, productIDs []string, pool []domain.Product, contextNote string,
) (CompareResult, error) {
	if len(productIDs) < 2 {
		return CompareResult{Message: compareValidationMessage}, nil
	}

	byID := make(map[string]domain.Product, len(pool))
	for _, p := range pool {
		byID[p.ID] = p
	}

	var selected []domain.Product
	for _, id := range productIDs {
		p, ok := byID[id]
		if !ok {
			s.logger.Warn("Comparison references an unknown product", zap.String("product_id", id))
			continue
		}
		selected = append(selected, p)
	}
	if len(selected) < 2 {
		return CompareResult{Message: compareValidationMessage}, nil
	}

	text, err := s.complete(ctx, prompt.Comparison(selected, contextNote), tempCompare, "compare")
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return CompareResult{}, err
	}

	metrics.TurnsTotal.WithLabelValues("compare").Inc()
	return CompareResult{Message: text}, nil
}

// extractIntent runs the extraction call and parses its output. Provider
// failures propagate; malformed output is absorbed and the turn proceeds on
// a best-effort browse intent derived from the raw message.
func (s *Service) extractIntent(ctx context.Context, message string, history []domain.Turn) (domain.Intent, error) {
	raw, err := s.complete(ctx, prompt.IntentExtraction(message, history), tempExtract, "intent")
	if err != nil {
		return domain.Intent{}, err
	}

	intent, err := parseIntent(raw)
	if err != nil {
		s.logger.Warn("Intent extraction returned unparsable output, using fallback intent",
			zap.Error(err), zap.String("raw", raw))
		return domain.FallbackIntent(message), nil
	}
	return intent, nil
}

func (s *Service) searchAndRank(ctx context.Context, intent domain.Intent) []domain.Product {
	keywords := searchKeywords(intent)
	products := s.catalog.MultiSearch(ctx, keywords)
	filtered := domain.FilterProducts(products, domain.FiltersFromIntent(intent))
	return rankProducts(filtered)
}

func (s *Service) complete(ctx context.Context, promptText string, temperature float32, purpose string) (string, error) {
	text, err := s.llm.Complete(ctx,
		[]domain.ChatMessage{{Role: "user", Content: promptText}},
		domain.ChatOptions{Temperature: temperature, Purpose: purpose},
	)
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", purpose, err)
	}
	return text, nil
}

func (s *Service) stream(ctx context.Context, promptText string, temperature float32, purpose string) (domain.TokenStream, error) {
	stream, err := s.llm.Stream(ctx,
		[]domain.ChatMessage{{Role: "user", Content: promptText}},
		domain.ChatOptions{Temperature: temperature, Purpose: purpose},
	)
	if err != nil {
		return nil, fmt.Errorf("%s stream: %w", purpose, err)
	}
	return stream, nil
}
