package pipeline

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/domain"
)

// idTagRe is the grammar of the contract between free-text generation and
// structured display state: every product the model mentions carries an
// [ID:x] tag right after its name.
var idTagRe = regexp.MustCompile(`\[ID:([^\]\s]+)\]`)

// mentionedIDs extracts identifier tags from generated text in order of
// first appearance, duplicates collapsed to the first occurrence.
func mentionedIDs(text string) []string {
	matches := idTagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, m := range matches {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// reconcileProducts reorders the display set to match what the generated
// text actually references. Mentioned products come first, in mention
// order, pulled from the nominal display set or from the broader
// model-visible pool; remaining slots fill with leftover display products
// in their prior relative order, capped at the display limit. A mentioned
// ID absent from both sets is logged and skipped, never inserted as a
// placeholder.
func reconcileProducts(
	text string, display, pool []domain.Product, limit int, logger *zap.Logger,
) []domain.Product {
	mentioned := mentionedIDs(text)
	if len(mentioned) == 0 {
		return display
	}

	byID := make(map[string]domain.Product, len(pool)+len(display))
	for _, p := range pool {
		byID[p.ID] = p
	}
	for _, p := range display {
		byID[p.ID] = p
	}

	used := make(map[string]struct{})
	var out []domain.Product
	for _, id := range mentioned {
		p, ok := byID[id]
		if !ok {
			logger.Warn("Generated text references a product outside the candidate sets",
				zap.String("product_id", id))
			continue
		}
		if _, dup := used[id]; dup {
			continue
		}
		used[id] = struct{}{}
		out = append(out, p)
	}

	for _, p := range display {
		if len(out) >= limit {
			break
		}
		if _, ok := used[p.ID]; ok {
			continue
		}
		used[p.ID] = struct{}{}
		out = append(out, p)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
