package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// JWTSessionCodec signs session payloads as HS256 JWTs. The secret is only
// held here, so the application layer never sees key material.
type JWTSessionCodec struct {
	secret []byte
	nowFn  func() time.Time
}

func NewJWTSessionCodec(secret string) (*JWTSessionCodec, error) {
	if secret == "" {
		return nil, errors.New("session signing secret is required")
	}
	return &JWTSessionCodec{
		secret: []byte(secret),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}, nil
}

type sessionUser struct {
	ID   int64  `json:"id"`
	Role string `json:"role,omitempty"`
}

type sessionClaims struct {
	User    sessionUser `json:"user"`
	Expires string      `json:"expires"`
	jwt.RegisteredClaims
}

func (c *JWTSessionCodec) Sign(payload ports.SessionPayload) (string, error) {
	if payload.UserID == 0 {
		return "", errors.New("session payload requires a user id")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		User:    sessionUser{ID: payload.UserID, Role: payload.Role},
		Expires: domain.FormatTimestamp(payload.Expires),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        payload.TokenID,
			IssuedAt:  jwt.NewNumericDate(c.nowFn()),
			ExpiresAt: jwt.NewNumericDate(payload.Expires),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and the embedded expires timestamp. Expiry is
// evaluated here rather than by the jwt library so the two failure modes
// stay distinguishable.
func (c *JWTSessionCodec) Verify(raw string) (ports.SessionPayload, error) {
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return ports.SessionPayload{}, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.User.ID == 0 {
		return ports.SessionPayload{}, fmt.Errorf("%w: missing user", domain.ErrTokenInvalid)
	}
	expires, err := time.Parse(time.RFC3339Nano, claims.Expires)
	if err != nil {
		return ports.SessionPayload{}, fmt.Errorf("%w: malformed expires", domain.ErrTokenInvalid)
	}

	payload := ports.SessionPayload{
		UserID:  claims.User.ID,
		Role:    claims.User.Role,
		TokenID: claims.ID,
		Expires: expires.UTC(),
	}
	if !c.nowFn().Before(payload.Expires) {
		return payload, domain.ErrTokenExpired
	}
	return payload, nil
}
