// Package fixture caches execution results so repeated test setups share
// one deployed state instead of redeploying per test case.
package fixture

import (
	"context"
	"fmt"
	"sync"

	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/executor"
	"github.com/trebuchet-org/treb-ignition/internal/graph"
	"golang.org/x/sync/singleflight"
)

// Key identifies a snapshot by graph and network identity.
type Key struct {
	Graph   string
	Network string
}

func (k Key) String() string { return k.Graph + "@" + k.Network }

// KeyFor derives the cache key of executing g against profile.
func KeyFor(g *graph.Graph, profile *domain.NetworkProfile) Key {
	return Key{Graph: g.Identity(), Network: profile.Identity()}
}

// Factory produces a fresh execution result.
type Factory func(ctx context.Context) (*domain.ResultSet, error)

// Cache stores one ResultSet per key for the lifetime of the process.
// Entries are only dropped by Reset or ResetAll.
type Cache struct {
	mu         sync.Mutex
	entries    map[Key]*domain.ResultSet
	generation map[Key]uint64
	epoch      uint64
	flight     *singleflight.Group
	runs       map[Key]*run
}

// run is the cache owned context of one factory run. It is cancelled once
// every caller waiting on it has given up.
type run struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewCache creates an empty fixture cache.
func NewCache() *Cache {
	return &Cache{
		entries:    make(map[Key]*domain.ResultSet),
		generation: make(map[Key]uint64),
		flight:     new(singleflight.Group),
		runs:       make(map[Key]*run),
	}
}

// GetOrCreate returns the snapshot stored under key, running factory once to
// create it. Concurrent callers for the same key wait for the same factory
// run and receive the same result. A failing factory is not cached.
//
// ctx only bounds how long this caller waits. The factory context is
// cancelled only when every waiting caller has been cancelled.
func (c *Cache) GetOrCreate(ctx context.Context, key Key, factory Factory) (*domain.ResultSet, error) {
	c.mu.Lock()
	if rs, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return rs, nil
	}
	r, ok := c.runs[key]
	if !ok {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		r = &run{ctx: runCtx, cancel: cancel}
		c.runs[key] = r
	}
	r.waiters++
	flight := c.flight
	gen, epoch := c.generation[key], c.epoch
	c.mu.Unlock()
	defer c.leave(key, r)

	ch := flight.DoChan(key.String(), func() (any, error) {
		if rs, ok := c.get(key); ok {
			return rs, nil
		}

		rs, err := factory(r.ctx)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", key, err)
		}
		if rs == nil {
			return nil, fmt.Errorf("fixture %s: factory returned no result", key)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// A reset while the factory ran invalidates this result.
		if c.generation[key] == gen && c.epoch == epoch {
			c.entries[key] = rs
		}
		return rs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.ResultSet), nil
	}
}

func (c *Cache) leave(key Key, r *run) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r.waiters--
	if r.waiters > 0 {
		return
	}
	r.cancel()
	if c.runs[key] == r {
		delete(c.runs, key)
	}
}

// Reset drops the snapshot stored under key. A factory run still in flight
// finishes for its current waiters but later callers start a fresh run.
func (c *Cache) Reset(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	delete(c.runs, key)
	c.generation[key]++
	c.flight.Forget(key.String())
}

// ResetAll drops every snapshot, with the same in-flight behaviour as Reset.
func (c *Cache) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flight = new(singleflight.Group)
	c.runs = make(map[Key]*run)
	c.entries = make(map[Key]*domain.ResultSet)
	c.epoch++
}

// Len returns the number of stored snapshots.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) get(key Key) (*domain.ResultSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rs, ok := c.entries[key]
	return rs, ok
}

// Load executes g against profile once per cache and returns the shared
// result on every later call.
func Load(ctx context.Context, cache *Cache, exec *executor.Executor, g *graph.Graph, profile *domain.NetworkProfile) (*domain.ResultSet, error) {
	return cache.GetOrCreate(ctx, KeyFor(g, profile), func(ctx context.Context) (*domain.ResultSet, error) {
		return exec.Execute(ctx, g, profile)
	})
}
