package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// DocumentStore implements ports.Store on a single jsonb table. Rows are
// addressed by (table, canonical key) and filters use jsonb containment.
type DocumentStore struct {
	db      *gorm.DB
	schemas map[string]ports.TableSchema
}

func NewDocumentStore(db *gorm.DB, schemas ...ports.TableSchema) *DocumentStore {
	s := &DocumentStore{db: db, schemas: make(map[string]ports.TableSchema, len(schemas))}
	for _, schema := range schemas {
		s.schemas[schema.Name] = schema
	}
	return s
}

type docRow struct {
	Doc string `gorm:"column:doc"`
}

func (s *DocumentStore) Get(ctx context.Context, table string, key ports.Key) (ports.Item, error) {
	pk, err := s.canonical(table, key)
	if err != nil {
		return nil, err
	}
	var rows []docRow
	err = s.db.WithContext(ctx).
		Raw(`SELECT doc::text AS doc FROM kv_items WHERE tbl = ? AND pk = ?`, table, pk).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return decodeDoc(rows[0].Doc)
}

func (s *DocumentStore) Put(ctx context.Context, table string, item ports.Item) error {
	pk, doc, err := s.encodeItem(table, item)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Exec(
		`INSERT INTO kv_items (tbl, pk, doc) VALUES (?, ?, ?::jsonb)
		 ON CONFLICT (tbl, pk) DO UPDATE SET doc = EXCLUDED.doc`,
		table, pk, doc,
	).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *DocumentStore) PutIfAbsent(ctx context.Context, table string, item ports.Item) error {
	pk, doc, err := s.encodeItem(table, item)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Exec(
		`INSERT INTO kv_items (tbl, pk, doc) VALUES (?, ?, ?::jsonb)
		 ON CONFLICT (tbl, pk) DO NOTHING`,
		table, pk, doc,
	)
	if res.Error != nil {
		return fmt.Errorf("insert %s: %w", table, res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrConditionFailed
	}
	return nil
}

func (s *DocumentStore) Update(ctx context.Context, table string, key ports.Key, attrs ports.Item, cond ports.Filter) error {
	pk, err := s.canonical(table, key)
	if err != nil {
		return err
	}
	if cond == nil {
		merged := ports.Item{}
		for k, v := range key {
			merged[k] = v
		}
		for k, v := range attrs {
			merged[k] = v
		}
		doc, err := encodeJSON(merged)
		if err != nil {
			return err
		}
		err = s.db.WithContext(ctx).Exec(
			`INSERT INTO kv_items (tbl, pk, doc) VALUES (?, ?, ?::jsonb)
			 ON CONFLICT (tbl, pk) DO UPDATE SET doc = kv_items.doc || EXCLUDED.doc`,
			table, pk, doc,
		).Error
		if err != nil {
			return fmt.Errorf("merge %s: %w", table, err)
		}
		return nil
	}

	patch, err := encodeJSON(attrs)
	if err != nil {
		return err
	}
	match, err := encodeJSON(cond)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Exec(
		`UPDATE kv_items SET doc = doc || ?::jsonb WHERE tbl = ? AND pk = ? AND doc @> ?::jsonb`,
		patch, table, pk, match,
	)
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", table, res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrConditionFailed
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, table string, key ports.Key) error {
	pk, err := s.canonical(table, key)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Exec(`DELETE FROM kv_items WHERE tbl = ? AND pk = ?`, table, pk).Error; err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (s *DocumentStore) Scan(ctx context.Context, table string, filter ports.Filter) ([]ports.Item, error) {
	if filter == nil {
		filter = ports.Filter{}
	}
	match, err := encodeJSON(filter)
	if err != nil {
		return nil, err
	}
	var rows []docRow
	err = s.db.WithContext(ctx).
		Raw(`SELECT doc::text AS doc FROM kv_items WHERE tbl = ? AND doc @> ?::jsonb ORDER BY seq`, table, match).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	out := make([]ports.Item, 0, len(rows))
	for _, row := range rows {
		item, err := decodeDoc(row.Doc)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *DocumentStore) canonical(table string, key ports.Key) (string, error) {
	schema, ok := s.schemas[table]
	if !ok {
		return "", fmt.Errorf("unknown table %q", table)
	}
	return schema.Canonical(key)
}

func (s *DocumentStore) encodeItem(table string, item ports.Item) (string, string, error) {
	schema, ok := s.schemas[table]
	if !ok {
		return "", "", fmt.Errorf("unknown table %q", table)
	}
	key, err := schema.KeyOf(item)
	if err != nil {
		return "", "", err
	}
	pk, err := schema.Canonical(key)
	if err != nil {
		return "", "", err
	}
	doc, err := encodeJSON(item)
	if err != nil {
		return "", "", err
	}
	return pk, doc, nil
}

func encodeJSON(v map[string]any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

// decodeDoc keeps numbers as json.Number so int64 ids survive.
func decodeDoc(raw string) (ports.Item, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var item ports.Item
	if err := dec.Decode(&item); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return item, nil
}
