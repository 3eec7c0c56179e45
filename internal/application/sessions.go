package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// DefaultSessionTTL is used when no session lifetime is configured.
const DefaultSessionTTL = 24 * time.Hour

var errNoSessionCarrier = errors.New("no session carrier on request context")

type carrierKey struct{}

type requestMetaKey struct{}

// RequestMeta carries request attributes recorded in activity logs.
type RequestMeta struct {
	IPAddress string
	RequestID string
}

// WithSessionCarrier binds the request's cookie jar to ctx.
func WithSessionCarrier(ctx context.Context, carrier ports.SessionCarrier) context.Context {
	return context.WithValue(ctx, carrierKey{}, carrier)
}

func sessionCarrierFrom(ctx context.Context) ports.SessionCarrier {
	carrier, _ := ctx.Value(carrierKey{}).(ports.SessionCarrier)
	return carrier
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// SessionManager turns session tokens into users and back. Tokens are
// stateless: without a revocation store an ended session's token stays
// valid until it expires.
type SessionManager struct {
	codec       ports.SessionCodec
	users       ports.UserRepository
	revocations ports.SessionRevocationStore
	ttl         time.Duration
	logger      *slog.Logger
	nowFn       func() time.Time
}

// NewSessionManager builds a manager; revocations may be nil to disable the denylist.
func NewSessionManager(codec ports.SessionCodec, users ports.UserRepository, revocations ports.SessionRevocationStore, ttl time.Duration, logger *slog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		codec:       codec,
		users:       users,
		revocations: revocations,
		ttl:         ttl,
		logger:      logger.With("module", "sessions", "layer", "application"),
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

// CurrentUser returns nil, nil when the request carries no usable session.
// Only store failures are returned as errors.
func (m *SessionManager) CurrentUser(ctx context.Context) (*domain.User, error) {
	carrier := sessionCarrierFrom(ctx)
	if carrier == nil {
		return nil, nil
	}
	token, ok := carrier.SessionToken()
	if !ok || token == "" {
		return nil, nil
	}

	payload, err := m.codec.Verify(token)
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		m.logger.DebugContext(ctx, "session token expired",
			"operation", "current_user",
			"outcome", "expired",
			"user_id", payload.UserID,
		)
		return nil, nil
	case err != nil:
		m.logger.WarnContext(ctx, "session token rejected",
			"operation", "current_user",
			"outcome", "invalid",
			"error", err,
		)
		return nil, nil
	}
	if !payload.Expires.After(m.nowFn()) {
		return nil, nil
	}

	if m.revocations != nil && payload.TokenID != "" {
		revoked, err := m.revocations.IsRevoked(ctx, payload.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check session revocation: %w", err)
		}
		if revoked {
			return nil, nil
		}
	}

	user, err := m.users.GetByID(ctx, payload.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user.IsDeleted() {
		return nil, nil
	}
	return &user, nil
}

// Establish signs a fresh token for user and attaches it to the response.
func (m *SessionManager) Establish(ctx context.Context, user domain.User) error {
	carrier := sessionCarrierFrom(ctx)
	if carrier == nil {
		return errNoSessionCarrier
	}
	expires := m.nowFn().Add(m.ttl)
	token, err := m.codec.Sign(ports.SessionPayload{
		UserID:  user.ID,
		Role:    user.Role,
		TokenID: uuid.NewString(),
		Expires: expires,
	})
	if err != nil {
		return err
	}
	carrier.SetSessionToken(token, expires)
	return nil
}

// End clears the session cookie and, when revocation is enabled, denylists
// the token until it would have expired.
func (m *SessionManager) End(ctx context.Context) error {
	carrier := sessionCarrierFrom(ctx)
	if carrier == nil {
		return nil
	}
	defer carrier.ClearSessionToken()

	if m.revocations == nil {
		return nil
	}
	token, ok := carrier.SessionToken()
	if !ok || token == "" {
		return nil
	}
	payload, err := m.codec.Verify(token)
	if err != nil || payload.TokenID == "" {
		return nil
	}
	if err := m.revocations.MarkRevoked(ctx, payload.TokenID, payload.Expires); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
