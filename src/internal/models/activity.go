package models

import "time"

type ActivityMessage struct {
	UserID      string            `json:"user_id"`
	SessionID   string            `json:"session_id,omitempty"`
	ServiceName string            `json:"service_name"`
	Action      string            `json:"action"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Activity action constants
const (
	ActionSignup      = "signup"
	ActionLogin       = "login"
	ActionLogout      = "logout"
	ActionPostCreated = "post_created"
	ActionPostDeleted = "post_deleted"
)

// Service name constants
const (
	ServiceUserHandler = "backend.handler.user"
	ServicePostHandler = "backend.handler.post"
)
