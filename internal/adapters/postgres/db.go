package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DocumentTable holds every row of every logical table.
const DocumentTable = "kv_items"

const ledgerTable = "kv_schema_migrations"

//go:embed migrations/*.sql
var migrationFS embed.FS

// Connect opens the GORM pool backing the document store and pings it.
func Connect(ctx context.Context, databaseURL string, maxConns int32) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(int(maxConns))
		sqlDB.SetMaxIdleConns(int(maxConns) / 2)
	}
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	slog.Default().InfoContext(ctx, "document store connected",
		"module", "postgres",
		"operation", "connect",
		"outcome", "success",
		"max_conns", maxConns,
	)
	return db, nil
}

// RunMigrations applies the embedded migrations not yet recorded in the
// ledger, each in its own transaction, and returns the names it applied.
// It fails if the document table is still missing afterwards.
func RunMigrations(ctx context.Context, db *gorm.DB) ([]string, error) {
	names, err := migrationNames(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}

	conn := db.WithContext(ctx)
	if err := conn.Exec(`CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`).Error; err != nil {
		return nil, fmt.Errorf("create migration ledger: %w", err)
	}

	var done []string
	if err := conn.Table(ledgerTable).Pluck("name", &done).Error; err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	seen := make(map[string]bool, len(done))
	for _, name := range done {
		seen[name] = true
	}

	var applied []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		raw, err := fs.ReadFile(migrationFS, path.Join("migrations", name))
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}
		err = conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(raw)).Error; err != nil {
				return err
			}
			return tx.Exec(`INSERT INTO `+ledgerTable+` (name) VALUES (?)`, name).Error
		})
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", name, err)
		}
		applied = append(applied, name)
	}

	var present bool
	if err := conn.Raw(`SELECT to_regclass(?) IS NOT NULL`, DocumentTable).Scan(&present).Error; err != nil {
		return applied, fmt.Errorf("check %s: %w", DocumentTable, err)
	}
	if !present {
		return applied, fmt.Errorf("migrations left no %s table", DocumentTable)
	}
	slog.Default().InfoContext(ctx, "document table ready",
		"module", "postgres",
		"operation", "run_migrations",
		"outcome", "success",
		"table", DocumentTable,
		"applied", applied,
		"skipped", len(names)-len(applied),
	)
	return applied, nil
}

// migrationNames lists the .sql files in dir in lexical order.
func migrationNames(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
