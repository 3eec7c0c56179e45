package security_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := security.NewBcryptHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	for _, password := range []string{"", "longenough1", "pässwörd with spaces", strings.Repeat("x", 72)} {
		hash, err := hasher.Hash(ctx, password)
		if err != nil {
			t.Fatalf("hash %q: %v", password, err)
		}
		if !hasher.Compare(ctx, password, hash) {
			t.Fatalf("expected %q to match its own hash", password)
		}
		if hasher.Compare(ctx, "!"+password, hash) {
			t.Fatalf("expected a different password not to match")
		}
	}
}

func TestCompareMalformedHashReturnsFalse(t *testing.T) {
	t.Parallel()

	hasher := security.NewBcryptHasher(bcrypt.MinCost, 1)
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		if hasher.Compare(context.Background(), "longenough1", hash) {
			t.Fatalf("expected malformed hash %q not to match", hash)
		}
	}
}

func TestHashHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	hasher := security.NewBcryptHasher(bcrypt.MinCost, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// the single slot is free, so a cancelled context may still win it;
	// only assert that an error, if any, is the context error.
	if _, err := hasher.Hash(ctx, "longenough1"); err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionTokenExpiryBoundary(t *testing.T) {
	t.Parallel()

	codec, err := security.NewJWTSessionCodec("test-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	now := time.Now().UTC()

	cases := []struct {
		name    string
		expires time.Time
		wantErr error
	}{
		{name: "expired one second ago", expires: now.Add(-time.Second), wantErr: domain.ErrTokenExpired},
		{name: "valid for an hour", expires: now.Add(time.Hour), wantErr: nil},
	}
	for _, tc := range cases {
		token, err := codec.Sign(ports.SessionPayload{UserID: 42, Role: domain.RoleOwner, TokenID: "jti-1", Expires: tc.expires})
		if err != nil {
			t.Fatalf("%s: sign: %v", tc.name, err)
		}
		payload, err := codec.Verify(token)
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
		if payload.UserID != 42 {
			t.Fatalf("%s: expected user 42 in payload, got %d", tc.name, payload.UserID)
		}
	}
}

func TestSessionTokenRejectsTampering(t *testing.T) {
	t.Parallel()

	codec, err := security.NewJWTSessionCodec("test-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, err := codec.Sign(ports.SessionPayload{UserID: 42, TokenID: "jti-1", Expires: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three-part token")
	}
	for idx := range parts {
		segment := []byte(parts[idx])
		mid := len(segment) / 2
		if segment[mid] == 'A' {
			segment[mid] = 'B'
		} else {
			segment[mid] = 'A'
		}
		tampered := append([]string{}, parts...)
		tampered[idx] = string(segment)
		if _, err := codec.Verify(strings.Join(tampered, ".")); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Fatalf("segment %d: expected invalid token, got %v", idx, err)
		}
	}
}

func TestSessionTokenRejectsForeignSecretAndGarbage(t *testing.T) {
	t.Parallel()

	codec, _ := security.NewJWTSessionCodec("test-secret")
	other, _ := security.NewJWTSessionCodec("other-secret")
	token, err := other.Sign(ports.SessionPayload{UserID: 1, TokenID: "jti", Expires: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	for _, raw := range []string{token, "", "garbage", "a.b.c"} {
		if _, err := codec.Verify(raw); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Fatalf("expected %q to be rejected as invalid, got %v", raw, err)
		}
	}
}

func TestNewJWTSessionCodecRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := security.NewJWTSessionCodec(""); err == nil {
		t.Fatalf("expected empty secret to be rejected")
	}
}
