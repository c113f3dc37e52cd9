package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the persisted login: a bearer token plus the user snapshot
type Session struct {
	Token   string    `json:"token" bson:"token"`
	User    User      `json:"user" bson:"user"`
	SavedAt time.Time `json:"savedAt" bson:"savedAt"`
}

// TokenClaims are the claims the backend puts into its bearer tokens.
// They are decoded without verification; only the backend holds the key.
type TokenClaims struct {
	UserID string `json:"id,omitempty"`
	Role   Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// LoginRequest is the body for POST /api/auth/login.
// Players log in by email, admins by username.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// RegisterRequest is the multipart form for POST /api/auth/register
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Avatar   *Avatar
}

// ProfileUpdate is the multipart form for profile edits
type ProfileUpdate struct {
	Username string
	Avatar   *Avatar
	// Complete marks a first-time profile as finished
	Complete bool
}

var ErrMissingToken = errors.New("auth response has no token")

// ParseAuthResponse normalizes the two auth response shapes the backend uses:
// {"token": ..., "user": {...}} and {"token": ..., "_id": ..., "username": ...}.
func ParseAuthResponse(data []byte) (*Session, error) {
	var envelope struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if envelope.Token == "" {
		return nil, ErrMissingToken
	}

	userJSON := data
	if len(envelope.User) > 0 && string(envelope.User) != "null" {
		userJSON = envelope.User
	}

	var user User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, fmt.Errorf("decode auth user: %w", err)
	}
	return &Session{Token: envelope.Token, User: user}, nil
}

// ParseOAuthCallback builds a session from the user and token query values of
// the Google sign-in redirect
func ParseOAuthCallback(userJSON, token string) (*Session, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	var user User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("decode oauth user: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}
