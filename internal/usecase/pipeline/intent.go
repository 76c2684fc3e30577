package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giftwise/giftwise/internal/domain"
)

// parseIntent parses the extraction output into an Intent. The model is
// asked for bare JSON but sometimes wraps it in a markdown code fence, so
// the fence is stripped before unmarshalling. The caller falls back to
// domain.FallbackIntent on error.
func parseIntent(raw string) (domain.Intent, error) {
	payload := stripCodeFence(raw)

	var intent domain.Intent
	if err := json.Unmarshal([]byte(payload), &intent); err != nil {
		return domain.Intent{}, fmt.Errorf("%w: %w", domain.ErrMalformedIntent, err)
	}

	intent.Normalize()
	return intent, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence, if any.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language hint on the opening fence line.
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// maxSearchKeywords caps how many keywords one turn searches.
const maxSearchKeywords = 3

// fallbackKeywords is searched when the intent yields no usable keywords.
var fallbackKeywords = []string{"popular gifts", "best sellers"}

// searchKeywords derives the keyword list for a turn: explicit intent
// keywords plus the occasion, case-insensitively deduplicated, at most
// three. Generic fallback terms keep the turn productive when the intent
// carries nothing searchable.
func searchKeywords(intent domain.Intent) []string {
	var keywords []string
	seen := make(map[string]struct{})

	add := func(kw string) {
		kw = strings.TrimSpace(kw)
		if kw == "" || len(keywords) >= maxSearchKeywords {
			return
		}
		norm := strings.ToLower(kw)
		if _, ok := seen[norm]; ok {
			return
		}
		seen[norm] = struct{}{}
		keywords = append(keywords, kw)
	}

	for _, kw := range intent.Keywords {
		add(kw)
	}
	add(intent.Occasion)

	if len(keywords) == 0 {
		return fallbackKeywords
	}
	return keywords
}
