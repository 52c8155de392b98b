// Package runtime is the support library of generated code. It defines
// the store abstraction repositories and live entities are built on,
// the row representation they exchange, and the typed value helpers
// they scan with.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Row is one stored row keyed by column name.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RowBuilder accumulates column values for inserts and updates.
// Columns keep the order they were set in.
type RowBuilder struct {
	cols []string
	vals map[string]any
}

// NewRow creates an empty row builder.
func NewRow() *RowBuilder {
	return &RowBuilder{vals: make(map[string]any)}
}

// Set assigns a value to a column. Setting a column twice keeps its
// original position and overwrites the value.
func (b *RowBuilder) Set(col string, v any) *RowBuilder {
	if _, ok := b.vals[col]; !ok {
		b.cols = append(b.cols, col)
	}
	b.vals[col] = v
	return b
}

// Empty reports whether no column has been set.
func (b *RowBuilder) Empty() bool {
	return len(b.cols) == 0
}

// Columns returns the set columns in order.
func (b *RowBuilder) Columns() []string {
	return b.cols
}

// Values returns the set values, aligned with Columns.
func (b *RowBuilder) Values() []any {
	vals := make([]any, len(b.cols))
	for i, c := range b.cols {
		vals[i] = b.vals[c]
	}
	return vals
}

// Value returns the value set for a column.
func (b *RowBuilder) Value(col string) (any, bool) {
	v, ok := b.vals[col]
	return v, ok
}

// Store is the persistence capability generated code operates against.
// SQLStore implements it over database/sql; tests substitute fakes.
type Store interface {
	// InsertRow inserts one row and returns it, including the columns
	// named in returning that the store filled in.
	InsertRow(ctx context.Context, table string, b *RowBuilder, returning []string) (Row, error)

	// SelectRows returns the rows matching the predicate, with the named
	// columns populated, honoring the query options.
	SelectRows(ctx context.Context, table string, cols []string, p Predicate, opts ...QueryOption) ([]Row, error)

	// UpdateRows applies the builder to every row matching the predicate
	// and returns the number of rows changed.
	UpdateRows(ctx context.Context, table string, b *RowBuilder, p Predicate) (int64, error)

	// DeleteRows removes every row matching the predicate and returns
	// the number of rows removed.
	DeleteRows(ctx context.Context, table string, p Predicate) (int64, error)
}

// QueryOption modifies a row selection.
type QueryOption func(*QuerySpec)

// QuerySpec carries the modifiers of one selection.
type QuerySpec struct {
	LimitCount  int // 0 means unlimited
	OffsetCount int
	Ordering    []OrderTerm
}

// OrderTerm orders a selection by one column.
type OrderTerm struct {
	Column string
	Desc   bool
}

// Limit bounds the number of returned rows.
func Limit(n int) QueryOption {
	return func(q *QuerySpec) { q.LimitCount = n }
}

// Offset skips the first n matching rows.
func Offset(n int) QueryOption {
	return func(q *QuerySpec) { q.OffsetCount = n }
}

// OrderBy appends an ascending order term.
func OrderBy(col string) QueryOption {
	return func(q *QuerySpec) { q.Ordering = append(q.Ordering, OrderTerm{Column: col}) }
}

// OrderByDesc appends a descending order term.
func OrderByDesc(col string) QueryOption {
	return func(q *QuerySpec) { q.Ordering = append(q.Ordering, OrderTerm{Column: col, Desc: true}) }
}

// BuildQuerySpec applies the options to an empty spec.
func BuildQuerySpec(opts []QueryOption) *QuerySpec {
	q := &QuerySpec{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Int64 converts a scanned value to int64.
func Int64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("runtime: cannot convert %T to int64", v)
	}
}

// Int converts a scanned value to int.
func Int(v any) (int, error) {
	n, err := Int64(v)
	return int(n), err
}

// Float64 converts a scanned value to float64.
func Float64(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("runtime: cannot convert %T to float64", v)
	}
}

// String converts a scanned value to string.
func String(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("runtime: cannot convert %T to string", v)
	}
}

// Bool converts a scanned value to bool.
func Bool(v any) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("runtime: cannot convert %T to bool", v)
	}
}

// Time converts a scanned value to time.Time.
func Time(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("runtime: cannot parse %q as time: %w", v, err)
		}
		return t, nil
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("runtime: cannot convert %T to time", v)
	}
}

// UUID converts a scanned value to uuid.UUID.
func UUID(v any) (uuid.UUID, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	case nil:
		return uuid.Nil, nil
	default:
		return uuid.Nil, fmt.Errorf("runtime: cannot convert %T to uuid", v)
	}
}

// Bytes converts a scanned value to a byte slice.
func Bytes(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("runtime: cannot convert %T to bytes", v)
	}
}

// Nullable wraps a conversion helper for nullable columns: nil maps to
// a nil pointer instead of the zero value.
func Nullable[T any](v any, conv func(any) (T, error)) (*T, error) {
	if v == nil {
		return nil, nil
	}
	out, err := conv(v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
