package models

import "moschee-backend/internal/assistant"

// ChatRequest is the payload sent to the assistant messages endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse reports the session after a submission. Accepted is false
// when a blank message was ignored.
type ChatResponse struct {
	Accepted bool               `json:"accepted"`
	Reply    *assistant.Reply   `json:"reply,omitempty"`
	Session  assistant.Snapshot `json:"session"`
}

type VisibilityResponse struct {
	Open bool `json:"open"`
}
