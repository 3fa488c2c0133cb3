package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a signed-in person
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	ExternalID  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExternalIdentity is what the identity provider returns after a code exchange
type ExternalIdentity struct {
	Subject     string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Identity is the authenticated caller of a request
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Session is a server-side sign-in session; its id is the bearer token
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SignIn is returned when a sign-in completes
type SignIn struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
