package domain

// ChatMessage is one role-tagged entry of an inference request.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a single inference request.
type ChatOptions struct {
	Temperature float32
	MaxTokens   int
	Purpose     string // metrics label: intent, clarify, respond, compare
}

// TokenStream is a lazily-consumed sequence of generated text fragments.
// Recv returns io.EOF when the stream ends; Close releases the underlying
// connection and may be called before the stream is drained.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}
