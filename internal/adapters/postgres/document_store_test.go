package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/postgres"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// Runs against a real database only when ACCOUNT_TEST_DB_URL is set.
func TestDocumentStoreAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("ACCOUNT_TEST_DB_URL")
	if dsn == "" {
		t.Skip("ACCOUNT_TEST_DB_URL not set")
	}
	ctx := context.Background()
	db, err := postgres.Connect(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := postgres.RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if again, err := postgres.RunMigrations(ctx, db); err != nil || len(again) != 0 {
		t.Fatalf("expected second run to apply nothing, got %v err=%v", again, err)
	}

	table := fmt.Sprintf("it_members_%d", time.Now().UnixNano())
	schema := ports.TableSchema{Name: table, KeyAttributes: []string{"id", "teamId"}}
	store := postgres.NewDocumentStore(db, schema)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM `+postgres.DocumentTable+` WHERE tbl = ?`, table)
	})

	bigID := int64(1790000000000000123)
	if err := store.PutIfAbsent(ctx, table, ports.Item{"id": bigID, "teamId": int64(2), "userId": int64(7), "status": "pending"}); err != nil {
		t.Fatalf("put if absent: %v", err)
	}
	if err := store.PutIfAbsent(ctx, table, ports.Item{"id": bigID, "teamId": int64(2)}); !errors.Is(err, ports.ErrConditionFailed) {
		t.Fatalf("expected condition failure, got %v", err)
	}

	items, err := store.Scan(ctx, table, ports.Filter{"userId": int64(7)})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if id, _ := items[0].Int64("id"); id != bigID {
		t.Fatalf("expected exact id %d, got %d", bigID, id)
	}

	key := ports.Key{"id": bigID, "teamId": int64(2)}
	if err := store.Update(ctx, table, key, ports.Item{"status": "accepted"}, ports.Filter{"status": "pending"}); err != nil {
		t.Fatalf("conditional update: %v", err)
	}
	if err := store.Update(ctx, table, key, ports.Item{"status": "accepted"}, ports.Filter{"status": "pending"}); !errors.Is(err, ports.ErrConditionFailed) {
		t.Fatalf("expected second conditional update to fail, got %v", err)
	}

	if err := store.Delete(ctx, table, ports.Key{"id": bigID, "teamId": int64(3)}); err != nil {
		t.Fatalf("delete foreign key: %v", err)
	}
	if _, err := store.Get(ctx, table, key); err != nil {
		t.Fatalf("expected row to survive foreign delete: %v", err)
	}
	if err := store.Delete(ctx, table, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, table, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
