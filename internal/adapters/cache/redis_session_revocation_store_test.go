package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// recordingRedis answers Set and Exists from an in-process map.
type recordingRedis struct {
	redis.Cmdable
	mu     sync.Mutex
	ttls   map[string]time.Duration
	sets   int
	exists error
}

func newRecordingRedis() *recordingRedis {
	return &recordingRedis{ttls: map[string]time.Duration{}}
}

func (r *recordingRedis) Set(_ context.Context, key string, _ interface{}, ttl time.Duration) *redis.StatusCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets++
	r.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (r *recordingRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exists != nil {
		return redis.NewIntResult(0, r.exists)
	}
	var n int64
	for _, key := range keys {
		if _, ok := r.ttls[key]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisRevocationKeyAndTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := newRecordingRedis()
	store := NewRedisSessionRevocationStore(client)
	store.nowFn = func() time.Time { return now }
	ctx := context.Background()

	if err := store.MarkRevoked(ctx, "tok-1", now.Add(90*time.Minute)); err != nil {
		t.Fatalf("mark revoked: %v", err)
	}
	if ttl, ok := client.ttls["account:session:revoked:tok-1"]; !ok || ttl != 90*time.Minute {
		t.Fatalf("expected prefixed key with 90m ttl, got %v", client.ttls)
	}

	if err := store.MarkRevoked(ctx, "tok-expired", now.Add(-time.Second)); err != nil {
		t.Fatalf("mark expired: %v", err)
	}
	if err := store.MarkRevoked(ctx, "tok-now", now); err != nil {
		t.Fatalf("mark expiring now: %v", err)
	}
	if client.sets != 1 {
		t.Fatalf("expected already-expired tokens to skip redis, got %d writes", client.sets)
	}

	for tokenID, want := range map[string]bool{"tok-1": true, "tok-expired": false, "unknown": false} {
		got, err := store.IsRevoked(ctx, tokenID)
		if err != nil {
			t.Fatalf("is revoked %s: %v", tokenID, err)
		}
		if got != want {
			t.Fatalf("token %s: expected revoked=%v, got %v", tokenID, want, got)
		}
	}
}

func TestRedisRevocationLookupErrorPropagates(t *testing.T) {
	t.Parallel()

	client := newRecordingRedis()
	client.exists = errors.New("connection reset")
	store := NewRedisSessionRevocationStore(client)

	revoked, err := store.IsRevoked(context.Background(), "tok")
	if err == nil || revoked {
		t.Fatalf("expected lookup error, got revoked=%v err=%v", revoked, err)
	}
}

// Runs against a real server only when REDIS_URL is set.
func TestRedisRevocationAgainstServer(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	tokenID := "it-" + time.Now().Format("150405.000000000")
	store := NewRedisSessionRevocationStore(client)
	if err := store.MarkRevoked(ctx, tokenID, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("mark revoked: %v", err)
	}
	t.Cleanup(func() { client.Del(ctx, revokedKeyPrefix+tokenID) })

	ttl, err := client.TTL(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl within a minute, got %v err=%v", ttl, err)
	}
	if revoked, err := store.IsRevoked(ctx, tokenID); err != nil || !revoked {
		t.Fatalf("expected revoked, got %v err=%v", revoked, err)
	}
}
