package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// Store is an in-process ports.Store. Scans return rows in insertion order.
type Store struct {
	mu      sync.RWMutex
	schemas map[string]ports.TableSchema
	tables  map[string]*table
}

type table struct {
	rows  map[string]ports.Item
	order []string
}

func NewStore(schemas ...ports.TableSchema) *Store {
	s := &Store{
		schemas: make(map[string]ports.TableSchema, len(schemas)),
		tables:  make(map[string]*table, len(schemas)),
	}
	for _, schema := range schemas {
		s.schemas[schema.Name] = schema
		s.tables[schema.Name] = &table{rows: map[string]ports.Item{}}
	}
	return s
}

func (s *Store) Get(_ context.Context, name string, key ports.Key) (ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, id, err := s.locate(name, key)
	if err != nil {
		return nil, err
	}
	item, ok := t.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item.Clone(), nil
}

func (s *Store) Put(_ context.Context, name string, item ports.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, id, err := s.locateItem(name, item)
	if err != nil {
		return err
	}
	t.set(id, item.Clone())
	return nil
}

func (s *Store) PutIfAbsent(_ context.Context, name string, item ports.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, id, err := s.locateItem(name, item)
	if err != nil {
		return err
	}
	if _, exists := t.rows[id]; exists {
		return ports.ErrConditionFailed
	}
	t.set(id, item.Clone())
	return nil
}

func (s *Store) Update(_ context.Context, name string, key ports.Key, attrs ports.Item, cond ports.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, id, err := s.locate(name, key)
	if err != nil {
		return err
	}
	schema := s.schemas[name]
	for _, attr := range schema.KeyAttributes {
		if _, ok := attrs[attr]; ok {
			return fmt.Errorf("table %s: cannot update key attribute %q", name, attr)
		}
	}

	current, exists := t.rows[id]
	if cond != nil && (!exists || !current.Matches(cond)) {
		return ports.ErrConditionFailed
	}
	next := current.Clone()
	if !exists {
		next = ports.Item{}
		for k, v := range key {
			next[k] = v
		}
	}
	for k, v := range attrs {
		next[k] = v
	}
	t.set(id, next.Clone())
	return nil
}

func (s *Store) Delete(_ context.Context, name string, key ports.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, id, err := s.locate(name, key)
	if err != nil {
		return err
	}
	if _, ok := t.rows[id]; !ok {
		return nil
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v string) bool { return v == id })
	return nil
}

func (s *Store) Scan(_ context.Context, name string, filter ports.Filter) ([]ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	out := make([]ports.Item, 0)
	for _, id := range t.order {
		item := t.rows[id]
		if item.Matches(filter) {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

func (t *table) set(id string, item ports.Item) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = item
}

func (s *Store) locateItem(name string, item ports.Item) (*table, string, error) {
	schema, ok := s.schemas[name]
	if !ok {
		return nil, "", fmt.Errorf("unknown table %q", name)
	}
	key, err := schema.KeyOf(item)
	if err != nil {
		return nil, "", err
	}
	return s.locate(name, key)
}

func (s *Store) locate(name string, key ports.Key) (*table, string, error) {
	schema, ok := s.schemas[name]
	if !ok {
		return nil, "", fmt.Errorf("unknown table %q", name)
	}
	id, err := schema.Canonical(key)
	if err != nil {
		return nil, "", err
	}
	return s.tables[name], id, nil
}
