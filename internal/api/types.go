package api

import "github.com/pageza/mealsearch/backend/internal/view"

// SessionResponse represents the response structure for session endpoints
type SessionResponse struct {
	SessionID string      `json:"session_id"`
	Screen    view.Screen `json:"screen"`
}
