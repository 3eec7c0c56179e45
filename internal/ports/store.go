package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrConditionFailed is returned by conditional writes whose condition did not hold.
var ErrConditionFailed = errors.New("store condition failed")

// Item is one schemaless row. Values are strings, bools, nil, numbers or
// nested maps and slices. The concrete numeric type depends on the backend
// (int64, float64, json.Number), so read numbers through the Item helpers.
type Item map[string]any

// Key holds the primary-key attributes of a row.
type Key map[string]any

// Filter is an attribute-equality predicate; all attributes must match.
type Filter map[string]any

// TableSchema names a table and its primary-key attributes.
type TableSchema struct {
	Name          string
	KeyAttributes []string
}

// KeyOf extracts the primary key of item.
func (s TableSchema) KeyOf(item Item) (Key, error) {
	key := make(Key, len(s.KeyAttributes))
	for _, attr := range s.KeyAttributes {
		v, ok := item[attr]
		if !ok || v == nil {
			return nil, fmt.Errorf("table %s: item is missing key attribute %q", s.Name, attr)
		}
		key[attr] = v
	}
	return key, nil
}

// Canonical renders a key as a string so that numerically equal values of
// different Go types address the same row.
func (s TableSchema) Canonical(key Key) (string, error) {
	if len(key) != len(s.KeyAttributes) {
		return "", fmt.Errorf("table %s: key must have attributes %v", s.Name, s.KeyAttributes)
	}
	parts := make([]string, 0, len(s.KeyAttributes))
	for _, attr := range s.KeyAttributes {
		v, ok := key[attr]
		if !ok {
			return "", fmt.Errorf("table %s: key is missing attribute %q", s.Name, attr)
		}
		if str, isString := v.(string); isString {
			parts = append(parts, "s:"+str)
			continue
		}
		n, ok := ToInt64(v)
		if !ok {
			return "", fmt.Errorf("table %s: unsupported key value for %q", s.Name, attr)
		}
		parts = append(parts, "n:"+strconv.FormatInt(n, 10))
	}
	return strings.Join(parts, "|"), nil
}

// Store exposes the primitives of a schemaless key-value store. Only Get,
// Put, PutIfAbsent, Update and Delete address a single row by key; Scan
// reads the whole table and filters it, so every lookup by a non-key
// attribute costs O(table size). Reads are eventually consistent.
type Store interface {
	// Get returns domain.ErrNotFound when no row has the key.
	Get(ctx context.Context, table string, key Key) (Item, error)
	// Put inserts or replaces the row identified by the item's key attributes.
	Put(ctx context.Context, table string, item Item) error
	// PutIfAbsent inserts the row and fails with ErrConditionFailed when the key is taken.
	PutIfAbsent(ctx context.Context, table string, item Item) error
	// Update merges attrs into the row. A nil cond upserts; otherwise the row
	// must exist and match cond or ErrConditionFailed is returned.
	Update(ctx context.Context, table string, key Key, attrs Item, cond Filter) error
	// Delete removes the row whose key matches exactly. Missing rows are not an error.
	Delete(ctx context.Context, table string, key Key) error
	Scan(ctx context.Context, table string, filter Filter) ([]Item, error)
}

func (i Item) String(name string) string {
	s, _ := i[name].(string)
	return s
}

// StringPtr returns nil for absent or null attributes.
func (i Item) StringPtr(name string) *string {
	s, ok := i[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func (i Item) Int64(name string) (int64, bool) {
	return ToInt64(i[name])
}

// Time parses an ISO-8601 attribute, returning the zero time when absent or malformed.
func (i Item) Time(name string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, i.String(name))
	return t.UTC()
}

func (i Item) TimePtr(name string) *time.Time {
	raw := i.String(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// Matches reports whether every filter attribute equals the item's value.
func (i Item) Matches(filter Filter) bool {
	for attr, want := range filter {
		got, ok := i[attr]
		if !ok || !SameValue(got, want) {
			return false
		}
	}
	return true
}

// Clone deep-copies the item so callers cannot alias stored state.
func (i Item) Clone() Item {
	if i == nil {
		return nil
	}
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, inner := range tv {
			out[k] = cloneValue(inner)
		}
		return out
	case Item:
		return tv.Clone()
	case []any:
		out := make([]any, len(tv))
		for idx, inner := range tv {
			out[idx] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// ToInt64 normalizes the numeric representations backends hand back.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// SameValue compares two attribute values, treating numbers of different
// Go types as equal when they hold the same value.
func SameValue(a, b any) bool {
	if an, ok := numberOf(a); ok {
		bn, ok := numberOf(b)
		if !ok {
			return false
		}
		if an.isInt && bn.isInt {
			return an.i == bn.i
		}
		return an.f == bn.f
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}

type number struct {
	i     int64
	f     float64
	isInt bool
}

func numberOf(v any) (number, bool) {
	switch n := v.(type) {
	case int, int32, int64, uint32:
		i, _ := ToInt64(n)
		return number{i: i, f: float64(i), isInt: true}, true
	case float64:
		if i, ok := ToInt64(n); ok {
			return number{i: i, f: n, isInt: true}, true
		}
		return number{f: n}, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return number{i: i, f: float64(i), isInt: true}, true
		}
		f, err := n.Float64()
		if err != nil {
			return number{}, false
		}
		return number{f: f}, true
	default:
		return number{}, false
	}
}
