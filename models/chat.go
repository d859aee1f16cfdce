package models

// ChatMessage is a single turn of the project chat widget conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the body of POST /projects/{id}/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}
