package models

import (
	"github.com/google/uuid"

	"moschee-backend/internal/assistant"
)

// WebSocket message types
const (
	WSTypeReply = "assistant_reply"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ReplyEvent tells the page a reply landed and the transcript should scroll to it.
type ReplyEvent struct {
	SessionID uuid.UUID       `json:"session_id"`
	Reply     assistant.Reply `json:"reply"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
