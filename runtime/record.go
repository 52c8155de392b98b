package runtime

import (
	"context"
	"fmt"
	"sync"
)

// Record is a live handle on one stored row. Reads go through a cached
// copy that loads lazily, writes buffer in the handle until Flush
// applies them in a single update. A Record is safe for concurrent use.
type Record struct {
	store Store
	table string
	idCol string
	id    any
	cols  []string

	mu    sync.Mutex
	row   Row
	dirty *RowBuilder
}

// NewRecord creates a handle on the row of table keyed by id.
func NewRecord(store Store, table, idCol string, id any, cols []string) *Record {
	return &Record{
		store: store,
		table: table,
		idCol: idCol,
		id:    id,
		cols:  cols,
		dirty: NewRow(),
	}
}

// Store returns the store the record operates against.
func (r *Record) Store() Store {
	return r.store
}

// Table returns the table name of the record.
func (r *Record) Table() string {
	return r.table
}

// ID returns the key of the record.
func (r *Record) ID() any {
	return r.id
}

// Prime seeds the cache with an already fetched row, avoiding the lazy
// load on first read.
func (r *Record) Prime(row Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.row = row.Clone()
}

// Get returns the current value of a column. A buffered write shadows
// the stored value until Flush.
func (r *Record) Get(ctx context.Context, col string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.dirty.Value(col); ok {
		return v, nil
	}
	if r.row == nil {
		if err := r.load(ctx); err != nil {
			return nil, err
		}
	}
	v, ok := r.row[col]
	if !ok {
		return nil, fmt.Errorf("runtime: %s has no column %q", r.table, col)
	}
	return v, nil
}

// Set buffers a column write. Nothing reaches the store until Flush.
func (r *Record) Set(col string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty.Set(col, v)
}

// Dirty reports whether unflushed writes are buffered.
func (r *Record) Dirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.dirty.Empty()
}

// Flush applies the buffered writes in one update. A flush with no
// buffered writes is a no-op.
func (r *Record) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty.Empty() {
		return nil
	}
	n, err := r.store.UpdateRows(ctx, r.table, r.dirty, Eq(r.idCol, r.id))
	if err != nil {
		return err
	}
	if n == 0 {
		return NewNotFoundErrorWithID(r.table, r.id)
	}
	if r.row != nil {
		for i, c := range r.dirty.Columns() {
			r.row[c] = r.dirty.Values()[i]
		}
	}
	r.dirty = NewRow()
	return nil
}

// Reload drops the cache and buffered writes and fetches the row again.
func (r *Record) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty = NewRow()
	r.row = nil
	return r.load(ctx)
}

// load fetches the row by key. Callers hold r.mu.
func (r *Record) load(ctx context.Context) error {
	rows, err := r.store.SelectRows(ctx, r.table, r.cols, Eq(r.idCol, r.id))
	if err != nil {
		return err
	}
	switch len(rows) {
	case 0:
		return NewNotFoundErrorWithID(r.table, r.id)
	case 1:
		r.row = rows[0]
		return nil
	default:
		return NewNotSingularErrorWithCount(r.table, len(rows))
	}
}

// Field reads a column through the record and converts it with the
// conversion helper matching T.
func Field[T any](ctx context.Context, r *Record, col string, conv func(any) (T, error)) (T, error) {
	v, err := r.Get(ctx, col)
	if err != nil {
		var zero T
		return zero, err
	}
	return conv(v)
}
