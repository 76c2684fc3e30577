package chi

import "github.com/giftwise/giftwise/internal/domain"

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeInferenceProvider  = "inference_provider_error"
	codeCatalogUnavailable = "catalog_unavailable"
	codeInternal           = "internal_error"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TurnPayload is one prior conversation turn supplied by the client.
type TurnPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /v1/chat and /v1/chat/stream.
// Conversation state is client-held: the full history rides along.
type ChatRequest struct {
	Message string        `json:"message"`
	History []TurnPayload `json:"history,omitempty"`
}

// history converts the payload turns, dropping entries with unknown roles.
func (r ChatRequest) history() []domain.Turn {
	var turns []domain.Turn
	for _, t := range r.History {
		switch t.Role {
		case string(domain.RoleUser), string(domain.RoleAssistant):
			turns = append(turns, domain.Turn{Role: domain.Role(t.Role), Content: t.Content})
		}
	}
	return turns
}

// IntentInfo is the intent summary echoed back with a reply.
type IntentInfo struct {
	Type               string `json:"type"`
	Occasion           string `json:"occasion,omitempty"`
	NeedsClarification bool   `json:"needs_clarification"`
}

func intentInfo(in domain.Intent) IntentInfo {
	return IntentInfo{
		Type:               string(in.Type),
		Occasion:           in.Occasion,
		NeedsClarification: in.NeedsClarification,
	}
}

// ChatResponse is the body of a completed chat turn. In the streaming
// variant it rides in the products frame without the message.
type ChatResponse struct {
	Message  string               `json:"message,omitempty"`
	Products []domain.DisplayView `json:"products"`
	Intent   IntentInfo           `json:"intent"`
}

// TokenEvent is one generated fragment of a streamed reply.
type TokenEvent struct {
	Delta string `json:"delta"`
}

// CompareRequest is the body of POST /v1/compare.
type CompareRequest struct {
	ProductIDs []string         `json:"product_ids"`
	Products   []domain.Product `json:"products"`
	Context    string           `json:"context,omitempty"`
}

// CompareResponse is the body of a completed comparison.
type CompareResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
