package runtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is the interface for caching selected rows.
// Users should implement this interface with their preferred caching
// solution (e.g., Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

type memEntry struct {
	value   []byte
	expires time.Time
}

// MemCache is an in-memory Cache, safe for concurrent use.
type MemCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

// NewMemCache creates an empty in-memory cache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]memEntry)}
}

// Get implements Cache.
func (c *MemCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.value, nil
}

// Set implements Cache.
func (c *MemCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memEntry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// Delete implements Cache.
func (c *MemCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// DeletePrefix implements Cache.
func (c *MemCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Clear implements Cache.
func (c *MemCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memEntry)
	return nil
}

// CachedStore caches row selections of an underlying store. Every write
// to a table invalidates the cached selections of that table, so a
// single process reading through one CachedStore never sees its own
// writes stale. Other writers bound the staleness by the TTL.
type CachedStore struct {
	next  Store
	cache Cache
	ttl   time.Duration
}

// NewCachedStore wraps a store with a selection cache. A zero ttl keeps
// entries until a write invalidates them.
func NewCachedStore(next Store, cache Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, cache: cache, ttl: ttl}
}

// InsertRow implements Store.
func (s *CachedStore) InsertRow(ctx context.Context, table string, b *RowBuilder, returning []string) (Row, error) {
	row, err := s.next.InsertRow(ctx, table, b, returning)
	if err != nil {
		return nil, err
	}
	return row, s.cache.DeletePrefix(ctx, table+":")
}

// SelectRows implements Store.
func (s *CachedStore) SelectRows(ctx context.Context, table string, cols []string, p Predicate, opts ...QueryOption) ([]Row, error) {
	key := selectKey(table, cols, p, opts)
	if buf, err := s.cache.Get(ctx, key); err == nil && buf != nil {
		var rows []Row
		if err := msgpack.Unmarshal(buf, &rows); err == nil {
			return rows, nil
		}
		// A corrupt entry falls through to the store.
	}
	rows, err := s.next.SelectRows(ctx, table, cols, p, opts...)
	if err != nil {
		return nil, err
	}
	buf, err := msgpack.Marshal(rows)
	if err != nil {
		return nil, err
	}
	return rows, s.cache.Set(ctx, key, buf, s.ttl)
}

// UpdateRows implements Store.
func (s *CachedStore) UpdateRows(ctx context.Context, table string, b *RowBuilder, p Predicate) (int64, error) {
	n, err := s.next.UpdateRows(ctx, table, b, p)
	if err != nil {
		return 0, err
	}
	return n, s.cache.DeletePrefix(ctx, table+":")
}

// DeleteRows implements Store.
func (s *CachedStore) DeleteRows(ctx context.Context, table string, p Predicate) (int64, error) {
	n, err := s.next.DeleteRows(ctx, table, p)
	if err != nil {
		return 0, err
	}
	return n, s.cache.DeletePrefix(ctx, table+":")
}

// selectKey builds the cache key of a selection. Keys share the table
// name as prefix so writes can invalidate per table.
func selectKey(table string, cols []string, p Predicate, opts []QueryOption) string {
	var b strings.Builder
	b.WriteString(table)
	b.WriteString(":")
	b.WriteString(strings.Join(cols, ","))
	b.WriteString(":")
	p.appendKey(&b)
	spec := BuildQuerySpec(opts)
	b.WriteString(":")
	for i, term := range spec.Ordering {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(term.Column)
		if term.Desc {
			b.WriteString(" desc")
		}
	}
	b.WriteString(":")
	b.WriteString(strconv.Itoa(spec.LimitCount))
	b.WriteString(":")
	b.WriteString(strconv.Itoa(spec.OffsetCount))
	return b.String()
}

// appendKey writes a stable textual form of the predicate.
func (p Predicate) appendKey(b *strings.Builder) {
	switch p.op {
	case opAll:
		b.WriteString("*")
	case opEq:
		fmt.Fprintf(b, "%s=%v", p.col, p.val)
	case opNeq:
		fmt.Fprintf(b, "%s<>%v", p.col, p.val)
	case opIn:
		fmt.Fprintf(b, "%s in %v", p.col, p.vals)
	case opIsNull:
		fmt.Fprintf(b, "%s null", p.col)
	case opNotNull:
		fmt.Fprintf(b, "%s not null", p.col)
	case opAnd, opOr:
		sep := " and "
		if p.op == opOr {
			sep = " or "
		}
		b.WriteString("(")
		for i, part := range p.parts {
			if i > 0 {
				b.WriteString(sep)
			}
			part.appendKey(b)
		}
		b.WriteString(")")
	}
}

// Verify CachedStore implements Store at compile time.
var _ Store = (*CachedStore)(nil)
var _ Cache = (*MemCache)(nil)
