// Package cache is a process-wide query cache with stale-while-revalidate
// reads, per-key request deduplication and mutation-driven invalidation.
package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Fetcher func(ctx context.Context) (any, error)

type Update struct {
	Key       Key
	Value     any
	UpdatedAt time.Time
}

type Mutation struct {
	Name        string
	Run         func(ctx context.Context) error
	Invalidates []Key
	Success     string
	Failure     string
}

const defaultFailureMessage = "Something went wrong. Please try again."

type Options struct {
	// StaleTime is how long a fetched value is served without a background
	// refresh. Zero refreshes on every read.
	StaleTime time.Duration
	Notifier  Notifier
	Now       func() time.Time
}

type entry struct {
	key       Key
	value     any
	hasValue  bool
	invalid   bool
	fetchedAt time.Time
	gen       uint64
}

type subscriber struct {
	key Key
	fn  func(Update)
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	subs    map[string]map[uint64]subscriber
	nextSub uint64
	seq     uint64
	group   singleflight.Group

	staleTime time.Duration
	notifier  Notifier
	now       func() time.Time
}

func New(opts Options) *Cache {
	c := &Cache{
		entries:   make(map[string]*entry),
		subs:      make(map[string]map[uint64]subscriber),
		staleTime: opts.StaleTime,
		notifier:  opts.Notifier,
		now:       opts.Now,
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Read returns the cached value for key if there is a valid one, refreshing
// it in the background when stale. Otherwise it waits for fetch, sharing a
// single in-flight call with every concurrent reader of the same key.
func (c *Cache) Read(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	id := key.id()

	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.seq++
		e = &entry{key: key, gen: c.seq}
		c.entries[id] = e
	}
	if e.hasValue && !e.invalid {
		v := e.value
		fresh := c.staleTime > 0 && c.now().Sub(e.fetchedAt) < c.staleTime
		gen := e.gen
		c.mu.Unlock()

		cacheHits.WithLabelValues(key.Kind()).Inc()
		if !fresh {
			go c.revalidate(ctx, key, gen, fetch)
		}
		return v, nil
	}
	gen := e.gen
	c.mu.Unlock()

	cacheMisses.WithLabelValues(key.Kind()).Inc()
	return c.fetch(ctx, key, gen, fetch)
}

func (c *Cache) revalidate(ctx context.Context, key Key, gen uint64, fetch Fetcher) {
	if _, err := c.fetch(context.WithoutCancel(ctx), key, gen, fetch); err != nil {
		log.Printf("[Cache] background refresh of %s failed: %v", key, err)
	}
}

// fetch joins or starts the flight for key at generation gen. The flight
// itself never observes the caller's cancellation.
func (c *Cache) fetch(ctx context.Context, key Key, gen uint64, fetch Fetcher) (any, error) {
	flight := key.id() + "#" + strconv.FormatUint(gen, 10)
	detached := context.WithoutCancel(ctx)

	ch := c.group.DoChan(flight, func() (any, error) {
		cacheFetches.WithLabelValues(key.Kind()).Inc()
		v, err := fetch(detached)
		if err != nil {
			cacheFetchErrors.WithLabelValues(key.Kind()).Inc()
			return nil, err
		}
		c.store(key, gen, v)
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// store keeps v only if the entry was neither invalidated nor swept since
// the flight started.
func (c *Cache) store(key Key, gen uint64, v any) {
	id := key.id()
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok || e.gen != gen {
		c.mu.Unlock()
		return
	}
	e.value = v
	e.hasValue = true
	e.invalid = false
	e.fetchedAt = now

	fns := make([]func(Update), 0, len(c.subs[id]))
	for _, s := range c.subs[id] {
		fns = append(fns, s.fn)
	}
	c.mu.Unlock()

	u := Update{Key: key, Value: v, UpdatedAt: now}
	for _, fn := range fns {
		fn(u)
	}
}

// Subscribe registers fn for every successful fetch of key. The returned
// func removes the subscription; in-flight fetches still complete.
func (c *Cache) Subscribe(key Key, fn func(Update)) func() {
	id := key.id()

	c.mu.Lock()
	c.nextSub++
	subID := c.nextSub
	if c.subs[id] == nil {
		c.subs[id] = make(map[uint64]subscriber)
	}
	c.subs[id][subID] = subscriber{key: key, fn: fn}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs[id], subID)
			if len(c.subs[id]) == 0 {
				delete(c.subs, id)
			}
			c.mu.Unlock()
		})
	}
}

// Invalidate marks every entry matching one of patterns so that its next
// read refetches. It returns the number of entries touched.
func (c *Cache) Invalidate(patterns ...Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		for _, p := range patterns {
			if e.key.Matches(p) {
				c.seq++
				e.invalid = true
				e.gen = c.seq
				n++
				cacheInvalidations.WithLabelValues(e.key.Kind()).Inc()
				break
			}
		}
	}
	return n
}

// Mutate runs the remote effect. Success invalidates the declared keys;
// failure leaves every entry as it was. Both outcomes are announced through
// the notifier and returned to the caller.
func (c *Cache) Mutate(ctx context.Context, m Mutation) (Notification, error) {
	if err := m.Run(ctx); err != nil {
		n := Notification{Level: LevelError, Mutation: m.Name, Message: m.Failure}
		if n.Message == "" {
			n.Message = defaultFailureMessage
		}
		mutations.WithLabelValues(m.Name, string(LevelError)).Inc()
		c.notifier.Notify(ctx, n)
		return n, fmt.Errorf("%s: %w", m.Name, err)
	}

	c.Invalidate(m.Invalidates...)

	n := Notification{Level: LevelSuccess, Mutation: m.Name, Message: m.Success}
	mutations.WithLabelValues(m.Name, string(LevelSuccess)).Inc()
	if n.Message != "" {
		c.notifier.Notify(ctx, n)
	}
	return n, nil
}

// Get is Read with a typed fetcher and result.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Read(ctx, key, func(ctx context.Context) (any, error) {
		t, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: %s holds %T", key, v)
	}
	return t, nil
}

// Sweep drops entries without subscribers that were last fetched more than
// maxAge ago, or never fetched at all.
func (c *Cache) Sweep(maxAge time.Duration) int {
	cutoff := c.now().Add(-maxAge)

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for id, e := range c.entries {
		if len(c.subs[id]) > 0 {
			continue
		}
		if !e.hasValue || e.fetchedAt.Before(cutoff) {
			delete(c.entries, id)
			n++
		}
	}
	return n
}
