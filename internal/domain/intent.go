package domain

import "strings"

// IntentType classifies what the user is trying to do this turn.
type IntentType string

const (
	IntentBrowse         IntentType = "browse"
	IntentSpecificSearch IntentType = "specific_search"
	IntentComparison     IntentType = "comparison"
	IntentQuestion       IntentType = "question"
	IntentReadyToBuy     IntentType = "ready_to_buy"
	IntentGreeting       IntentType = "greeting"
)

// Urgency describes how fast the gift has to arrive.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyStandard Urgency = "standard"
	UrgencySameDay  Urgency = "same_day"
	UrgencyOneHour  Urgency = "one_hour"
)

// Sentiment is the model's read of the user's mood.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Intent is the structured read of one user turn, extracted by the model.
// It is an untrusted external payload: every enumerated field is coerced to
// a known value on normalization and numeric bounds are nullable.
type Intent struct {
	Keywords            []string   `json:"keywords"`
	Occasion            string     `json:"occasion"`
	BudgetMin           *float64   `json:"budget_min"`
	BudgetMax           *float64   `json:"budget_max"`
	Recipient           string     `json:"recipient"`
	DietaryRestrictions []string   `json:"dietary_restrictions"`
	Urgency             Urgency    `json:"urgency"`
	ProductType         string     `json:"product_type_preference"`
	Type                IntentType `json:"intent_type"`
	NeedsClarification  bool       `json:"needs_clarification"`
	ClarificationTopic  string     `json:"clarification_topic"`
	Sentiment           Sentiment  `json:"sentiment"`
}

// Normalize coerces enumerated fields to known values and repairs
// inconsistent bounds. Enumerations from the model are never trusted
// without a default.
func (in *Intent) Normalize() {
	switch in.Type {
	case IntentBrowse, IntentSpecificSearch, IntentComparison,
		IntentQuestion, IntentReadyToBuy, IntentGreeting:
	default:
		in.Type = IntentBrowse
	}

	switch in.Urgency {
	case UrgencyNone, UrgencyStandard, UrgencySameDay, UrgencyOneHour:
	default:
		in.Urgency = UrgencyNone
	}

	switch in.Sentiment {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		in.Sentiment = SentimentNeutral
	}

	if in.ProductType == "" {
		in.ProductType = "any"
	}

	if in.BudgetMin != nil && *in.BudgetMin < 0 {
		in.BudgetMin = nil
	}
	if in.BudgetMax != nil && *in.BudgetMax < 0 {
		in.BudgetMax = nil
	}

	kept := in.Keywords[:0]
	for _, k := range in.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kept = append(kept, k)
		}
	}
	in.Keywords = kept
}

// FallbackIntent is used when the extraction output cannot be parsed.
// It keeps the pipeline available: browse intent, no clarification, and a
// best-effort keyword from the first three words of the raw message.
func FallbackIntent(message string) Intent {
	words := strings.Fields(message)
	if len(words) > 3 {
		words = words[:3]
	}
	keyword := strings.Join(words, " ")
	if keyword == "" {
		keyword = "gifts"
	}
	return Intent{
		Keywords:    []string{keyword},
		Urgency:     UrgencyNone,
		ProductType: "any",
		Type:        IntentBrowse,
		Sentiment:   SentimentNeutral,
	}
}
