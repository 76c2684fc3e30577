package pipeline

import (
	"context"

	"github.com/giftwise/giftwise/internal/domain"
)

// Catalog provides multi-keyword product search. Sub-search failures are
// absorbed by the implementation and degrade to fewer results.
type Catalog interface {
	MultiSearch(ctx context.Context, keywords []string) []domain.Product
}

// Completer talks to the inference endpoint. Errors are not absorbed here;
// the pipeline propagates them to the caller, which owns retry policy.
type Completer interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error)
	Stream(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (domain.TokenStream, error)
}
