package ports

import (
	"context"
	"time"
)

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	// Compare never fails; malformed hashes simply do not match.
	Compare(ctx context.Context, password, hash string) bool
}

// SessionPayload is the identity carried inside a session token.
type SessionPayload struct {
	UserID  int64
	Role    string
	TokenID string
	Expires time.Time
}

type SessionCodec interface {
	Sign(payload SessionPayload) (string, error)
	// Verify returns domain.ErrTokenInvalid or domain.ErrTokenExpired on failure.
	Verify(token string) (SessionPayload, error)
}

// SessionCarrier reads and writes the session token on the current request.
type SessionCarrier interface {
	SessionToken() (string, bool)
	SetSessionToken(token string, expires time.Time)
	ClearSessionToken()
}
