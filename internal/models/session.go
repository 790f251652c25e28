package models

import "time"

type SessionRole string

const (
	RoleVisitor SessionRole = "visitor"
	RoleAdmin   SessionRole = "admin"
)

func (r SessionRole) Valid() bool {
	return r == RoleVisitor || r == RoleAdmin
}

// Session is the server-held record behind a bearer token.
type Session struct {
	ID        string      `json:"id"`
	Role      SessionRole `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	IPAddress string      `json:"ip_address,omitempty"`
	UserAgent string      `json:"user_agent,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type AccessRequest struct {
	Code string `json:"code"`
}

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both /access/verify and /admin/login.
type AuthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type SessionCheckResponse struct {
	HasAccess bool `json:"hasAccess"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
