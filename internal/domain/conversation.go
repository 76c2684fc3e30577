package domain

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in the conversation history.
// History is owned by the caller; the service never persists it.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LastTurns returns the trailing window of at most n turns.
func LastTurns(history []Turn, n int) []Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
