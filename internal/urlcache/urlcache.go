// Package urlcache implements the per-bucket upload-URL and per-large-file
// upload-part-URL caches described in spec §4.3: at most one live entry per
// key, single-use exclusive checkout, TTL expiry, and unconditional eviction
// on any upload-URL-related error.
//
// It is backed by github.com/patrickmn/go-cache for the TTL bookkeeping,
// the same library rclone's backend/cache package uses for its in-memory
// chunk store.
package urlcache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is the B2-documented validity window for upload URLs.
const DefaultTTL = 3600 * time.Second

// Entry is a cached, single-writer upload endpoint.
type Entry struct {
	UploadURL string
	Token     string
	ExpiresAt time.Time
}

func (e Entry) expired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Fetcher obtains a fresh Entry for key (bucketId for the upload-URL cache,
// fileId for the upload-part-URL cache).
type Fetcher func(ctx context.Context, key string) (Entry, error)

type slot struct {
	mu         sync.Mutex
	entry      *Entry
	checkedOut bool
}

// Cache holds at most one cached Entry per key, leased exclusively for the
// duration of one caller's use.
type Cache struct {
	ttl   time.Duration
	fetch Fetcher
	store *gocache.Cache
}

// New builds a Cache. ttl of 0 uses DefaultTTL.
func New(ttl time.Duration, fetch Fetcher) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:   ttl,
		fetch: fetch,
		store: gocache.New(ttl, 2*ttl),
	}
}

func (c *Cache) slotFor(key string) *slot {
	if v, ok := c.store.Get(key); ok {
		return v.(*slot)
	}
	s := &slot{}
	// SetDefault races harmlessly with another goroutine's SetDefault for
	// the same key: go-cache's map write is itself mutex-guarded, and
	// whichever slot value wins is used consistently by both callers
	// after the subsequent Get within their own critical sections.
	c.store.SetDefault(key, s)
	if v, ok := c.store.Get(key); ok {
		return v.(*slot)
	}
	return s
}

// Checkout returns an unexpired, not-already-leased Entry for key if one is
// cached, else calls Fetcher and caches the result. The returned Entry is
// exclusively leased to the caller until Return is called.
func (c *Cache) Checkout(ctx context.Context, key string) (Entry, error) {
	s := c.slotFor(key)
	s.mu.Lock()
	if s.entry != nil && !s.checkedOut && !s.entry.expired() {
		s.checkedOut = true
		e := *s.entry
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	e, err := c.fetch(ctx, key)
	if err != nil {
		return Entry{}, err
	}
	if e.ExpiresAt.IsZero() {
		e.ExpiresAt = time.Now().Add(c.ttl)
	}

	s.mu.Lock()
	if s.entry == nil || !s.checkedOut {
		cp := e
		s.entry = &cp
		s.checkedOut = true
	}
	s.mu.Unlock()
	c.store.Set(key, s, c.ttl)
	return e, nil
}

// Return releases a leased Entry. ok true makes it available for the next
// Checkout (until TTL); ok false evicts the entry for key unconditionally,
// so the next Checkout fetches a fresh one.
func (c *Cache) Return(key string, e Entry, ok bool) {
	s := c.slotFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.entry = nil
		s.checkedOut = false
		c.store.Delete(key)
		return
	}
	cp := e
	s.entry = &cp
	s.checkedOut = false
	c.store.Set(key, s, c.ttl)
}

// Evict unconditionally discards any cached entry for key, regardless of
// lease state or TTL. Session.Connect clears both caches on
// (re)authorization with EvictAll instead.
func (c *Cache) Evict(key string) {
	c.store.Delete(key)
}

// EvictAll discards every cached entry, used when a session re-authorizes
// and all previously issued upload URLs should be considered suspect.
func (c *Cache) EvictAll() {
	c.store.Flush()
}
