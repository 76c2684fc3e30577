// Package prompt builds the text sent to the language model. Every builder
// is a pure function of its inputs: no state, no network, independently
// testable by input/output text.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giftwise/giftwise/internal/domain"
)

// historyWindow is the number of trailing turns (3 exchanges) embedded in
// the intent extraction prompt.
const historyWindow = 6

// AllergyWarning is appended verbatim by the model whenever the active
// intent carries a dietary restriction. Reconciliation tests depend on the
// exact wording.
const AllergyWarning = "Please double-check the product's full ingredient list before ordering if you have any allergies."

const intentSchema = `{
  "keywords": ["up to 3 short catalog search terms"],
  "occasion": "birthday|anniversary|sympathy|congratulations|thank_you|get_well|holiday|other|null",
  "budget_min": "number or null",
  "budget_max": "number or null",
  "recipient": "who the gift is for, or null",
  "dietary_restrictions": ["e.g. nut allergy, vegan, gluten-free"],
  "urgency": "none|standard|same_day|one_hour",
  "product_type_preference": "fruit|chocolate|flowers|baked|any",
  "intent_type": "browse|specific_search|comparison|question|ready_to_buy|greeting",
  "needs_clarification": "boolean",
  "clarification_topic": "occasion|recipient|budget|preferences|null",
  "sentiment": "positive|neutral|negative"
}`

// IntentExtraction builds the prompt that turns a raw user message into a
// structured intent. It embeds the last three exchanges of history so that
// follow-up turns carry prior-turn specifics forward.
func IntentExtraction(message string, history []domain.Turn) string {
	var b strings.Builder
	b.WriteString("You are an intent extraction engine for a gift shopping assistant.\n")
	b.WriteString("Analyze the customer's message and return ONLY a JSON object, no prose, no markdown, matching this schema exactly:\n\n")
	b.WriteString(intentSchema)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Set needs_clarification to true ONLY when the message gives none of: occasion, recipient, product type, or budget. The moment any one of them is present, set it to false.\n")
	b.WriteString("- On follow-up turns, carry forward the specifics already established in the conversation and merge in the new constraints. Never discard prior context.\n")
	b.WriteString("- Keywords must be concrete catalog search terms, not sentences.\n")

	if window := domain.LastTurns(history, historyWindow); len(window) > 0 {
		b.WriteString("\nConversation so far:\n")
		writeHistory(&b, window)
	}

	fmt.Fprintf(&b, "\nCustomer message: %s\n", message)
	return b.String()
}

// Clarification builds a prompt for a short warm reply with one or two
// targeted questions. The model must not name specific products or prices:
// no catalog data has been retrieved on this branch.
func Clarification(message string, intent domain.Intent) string {
	topic := intent.ClarificationTopic
	if topic == "" {
		topic = "what they are looking for"
	}

	var b strings.Builder
	b.WriteString("You are a friendly gift concierge. The customer's request is too vague to search the catalog yet.\n")
	fmt.Fprintf(&b, "Write a short, warm reply that asks 1-2 targeted questions about: %s.\n", topic)
	b.WriteString("Do NOT mention any specific products or prices. Keep it under three sentences.\n")
	fmt.Fprintf(&b, "\nCustomer message: %s\n", message)
	return b.String()
}

// maxModelProducts caps how many products the response prompt embeds.
const maxModelProducts = 10

// Response builds the grounded recommendation prompt. Each product carries
// a 1-based display index and a stable [ID:x] tag; the model must repeat
// the tag after every product it mentions, which is what reconciliation
// parses back out of the generated text.
func Response(message string, intent domain.Intent, products []domain.Product, history []domain.Turn) string {
	var b strings.Builder
	b.WriteString("You are a warm, knowledgeable gift concierge. Recommend gifts from the catalog items below and ONLY from them. Never invent products, prices, or details.\n\n")
	b.WriteString("Catalog items:\n")

	n := len(products)
	if n > maxModelProducts {
		n = maxModelProducts
	}
	for i, p := range products[:n] {
		view := p.ForModel()
		data, err := json.Marshal(view)
		if err != nil {
			// Product views are plain structs; this cannot realistically fail.
			continue
		}
		fmt.Fprintf(&b, "%d. [ID:%s] %s\n", i+1, p.ID, data)
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString("- Recommend 3 to 5 of the items above, matched to the customer's needs.\n")
	b.WriteString("- Immediately after each product name, repeat its tag exactly as given, e.g. \"Deluxe Fruit Basket [ID:123]\".\n")
	b.WriteString("- Mention price ranges only as given in the data.\n")
	if len(intent.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "- The customer has dietary restrictions (%s). End your reply with this exact sentence: %s\n",
			strings.Join(intent.DietaryRestrictions, ", "), AllergyWarning)
	}
	b.WriteString("- Ask at most one short follow-up question at the end.\n")

	if window := domain.LastTurns(history, historyWindow); len(window) > 0 {
		b.WriteString("\nConversation so far:\n")
		writeHistory(&b, window)
	}

	fmt.Fprintf(&b, "\nCustomer message: %s\n", message)
	return b.String()
}

// Comparison builds the side-by-side comparison prompt for two or more
// selected products.
func Comparison(products []domain.Product, context string) string {
	var b strings.Builder
	b.WriteString("You are a gift concierge helping a customer choose between products. Compare the following items:\n\n")

	for i, p := range products {
		view := p.ForModel()
		data, err := json.Marshal(view)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%d. [ID:%s] %s\n", i+1, p.ID, data)
	}

	b.WriteString("\nWrite a structured prose comparison (no tables): strengths of each, price difference, and which kind of recipient each suits best.\n")
	b.WriteString("Tag every product mention with its [ID:x] tag immediately after the name.\n")
	b.WriteString("Finish with a single clear recommendation.\n")

	if context = strings.TrimSpace(context); context != "" {
		fmt.Fprintf(&b, "\nWhat the customer cares about: %s\n", context)
	}
	return b.String()
}

func writeHistory(b *strings.Builder, turns []domain.Turn) {
	for _, t := range turns {
		role := "Customer"
		if t.Role == domain.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(b, "%s: %s\n", role, t.Content)
	}
}
