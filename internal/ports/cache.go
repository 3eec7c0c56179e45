package ports

import (
	"context"
	"time"
)

// SessionRevocationStore keeps revoked token ids until the token would have expired anyway.
type SessionRevocationStore interface {
	MarkRevoked(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
