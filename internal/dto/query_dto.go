package dto

// ChatMessage is one prior conversation turn supplied by the client.
// Roles matching the configured human/ai tags are loaded into the
// conversation window; anything else (system, tool) is ignored.
type ChatMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type AskRequest struct {
	Question    string        `json:"question" validate:"required"`
	Language    string        `json:"language"`
	Namespace   string        `json:"namespace"`
	SessionId   string        `json:"session_id"`
	ChatContext []ChatMessage `json:"chat_context" validate:"dive"`
}

type AskResponse struct {
	Answer    string `json:"answer"`
	Namespace string `json:"namespace"`
	SessionId string `json:"session_id,omitempty"`
}

type SummarizeRequest struct {
	Question  string `json:"question" validate:"required"`
	Namespace string `json:"namespace"`
}

type SummarizeResponse struct {
	Summary   string `json:"summary"`
	Namespace string `json:"namespace"`
	DocCount  int    `json:"doc_count"`
}
