// Package query caches analytics API responses by query key.
//
// Each key holds at most one in-flight request. Callers asking for a key
// that is already loading join that request instead of issuing another.
// Every request is tagged with a per-key generation; a response is stored
// only if its generation is still the latest one issued for the key, so a
// slow, superseded response can never overwrite a newer one.
package query

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the value for a key.
type Fetcher func(ctx context.Context) (any, error)

// State is a point-in-time snapshot of one key.
type State struct {
	Key       string
	Data      any
	HasData   bool
	Err       error
	Loading   bool
	FetchedAt time.Time
}

// Resolved reports whether the key holds a value or an error and nothing newer is loading.
func (s State) Resolved() bool {
	return !s.Loading && (s.HasData || s.Err != nil)
}

type entry struct {
	data      any
	hasData   bool
	err       error
	fetchedAt time.Time

	gen      uint64 // latest generation issued
	inflight bool   // a request for gen has not resolved yet
}

// Stats contains cache statistics.
type Stats struct {
	Entries   int     `json:"entries"`
	InFlight  int     `json:"in_flight"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Joined    int64   `json:"joined"`
	Discarded int64   `json:"discarded"`
	Errors    int64   `json:"errors"`
	HitRate   float64 `json:"hit_rate"`
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleAfter makes resolved values older than d refetch on next access.
// Zero keeps values until they are invalidated.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) {
		c.staleAfter = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Cache is a concurrent-safe keyed query cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group

	staleAfter time.Duration
	now        func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	joined    atomic.Int64
	discarded atomic.Int64
	errors    atomic.Int64
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the cached value for key, fetching it if needed, and
// blocks until the key resolves or ctx is done.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	s := c.Await(ctx, key, fetch)
	if s.Loading {
		return nil, ctx.Err()
	}
	return s.Data, s.Err
}

// Prefetch starts loading key, or joins the request already in flight, and
// returns without waiting.
func (c *Cache) Prefetch(ctx context.Context, key Key, fetch Fetcher) {
	c.start(ctx, key, fetch, false)
}

// Await starts or joins the request for key and waits until it resolves or
// ctx is done. The returned snapshot has Loading set if ctx ended first; the
// request keeps running and a later call picks up its result.
func (c *Cache) Await(ctx context.Context, key Key, fetch Fetcher) State {
	for {
		ch := c.start(ctx, key, fetch, false)
		if ch == nil {
			return c.Peek(key)
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return c.Peek(key)
		}
		if s := c.Peek(key); s.Resolved() {
			return s
		}
		// Superseded or invalidated while waiting; go around for the current request.
	}
}

// Refetch issues a new request for key even if one is in flight or a value
// is cached, then waits like Await. Any older in-flight response is discarded.
func (c *Cache) Refetch(ctx context.Context, key Key, fetch Fetcher) State {
	ch := c.start(ctx, key, fetch, true)
	select {
	case <-ch:
	case <-ctx.Done():
		return c.Peek(key)
	}
	if s := c.Peek(key); s.Resolved() {
		return s
	}
	return c.Await(ctx, key, fetch)
}

// Peek returns the current snapshot of key without starting a request.
func (c *Cache) Peek(key Key) State {
	k := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return State{Key: k}
	}
	return State{
		Key:       k,
		Data:      e.data,
		HasData:   e.hasData,
		Err:       e.err,
		Loading:   e.inflight,
		FetchedAt: e.fetchedAt,
	}
}

// Invalidate drops the cached value for key. A response still in flight for
// it will be discarded; the next access issues a new request.
func (c *Cache) Invalidate(key Key) {
	k := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return
	}
	e.gen++
	e.inflight = false
	e.data, e.hasData, e.err = nil, false, nil
	e.fetchedAt = time.Time{}
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	var inflight int
	for _, e := range c.entries {
		if e.inflight {
			inflight++
		}
	}
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Entries:   entries,
		InFlight:  inflight,
		Hits:      hits,
		Misses:    misses,
		Joined:    c.joined.Load(),
		Discarded: c.discarded.Load(),
		Errors:    c.errors.Load(),
		HitRate:   hitRate,
	}
}

// start returns a channel that fires when the current request for key
// resolves, issuing a new request when none is usable. It returns nil when a
// fresh value is already cached.
func (c *Cache) start(ctx context.Context, key Key, fetch Fetcher, force bool) <-chan singleflight.Result {
	k := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		e = &entry{}
		c.entries[k] = e
	}

	if !force {
		if e.inflight {
			c.joined.Add(1)
			return c.group.DoChan(flightKey(k, e.gen), c.runner(ctx, k, e.gen, fetch))
		}
		if e.hasData && !c.stale(e) {
			c.hits.Add(1)
			return nil
		}
	}

	c.misses.Add(1)
	e.gen++
	e.inflight = true
	zap.L().Debug("query: fetch", zap.String("key", k), zap.Uint64("generation", e.gen))

	// DoChan is called under c.mu and the runner commits under c.mu before it
	// returns, so a joiner that saw inflight always finds the call registered.
	return c.group.DoChan(flightKey(k, e.gen), c.runner(ctx, k, e.gen, fetch))
}

func (c *Cache) runner(ctx context.Context, k string, gen uint64, fetch Fetcher) func() (any, error) {
	fetchCtx := context.WithoutCancel(ctx)
	return func() (any, error) {
		data, err := fetch(fetchCtx)
		c.commit(k, gen, data, err)
		return data, err
	}
}

func (c *Cache) commit(k string, gen uint64, data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok || e.gen != gen {
		c.discarded.Add(1)
		zap.L().Debug("query: discard superseded result",
			zap.String("key", k),
			zap.Uint64("generation", gen),
		)
		return
	}

	e.inflight = false
	e.fetchedAt = c.now()
	if err != nil {
		c.errors.Add(1)
		e.data, e.hasData, e.err = nil, false, err
		zap.L().Warn("query: fetch failed", zap.String("key", k), zap.Error(err))
		return
	}
	e.data, e.hasData, e.err = data, true, nil
	zap.L().Debug("query: commit", zap.String("key", k), zap.Uint64("generation", gen))
}

func (c *Cache) stale(e *entry) bool {
	return c.staleAfter > 0 && c.now().Sub(e.fetchedAt) > c.staleAfter
}

func flightKey(k string, gen uint64) string {
	return k + "#" + strconv.FormatUint(gen, 10)
}
