package fixture

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/executor"
	"github.com/trebuchet-org/treb-ignition/internal/graph"
)

func resultWith(names ...string) *domain.ResultSet {
	rs := domain.NewResultSet("M", "hardhat")
	for i, name := range names {
		rs.Add(domain.ResultEntry{Unit: &domain.DeployedUnit{
			Node:    name,
			Address: common.BigToAddress(big.NewInt(int64(i + 1))),
		}})
	}
	return rs
}

func countingFactory(calls *atomic.Int32, names ...string) Factory {
	return func(ctx context.Context) (*domain.ResultSet, error) {
		calls.Add(1)
		return resultWith(names...), nil
	}
}

var key = Key{Graph: "AuraModule-abc", Network: "hardhat@31337"}

func TestCache_SecondCallReturnsStoredResult(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int32

	first, err := cache.GetOrCreate(context.Background(), key, countingFactory(&calls, "Aura"))
	require.NoError(t, err)
	second, err := cache.GetOrCreate(context.Background(), key, countingFactory(&calls, "Other"))
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Same(t, first, second)
	assert.Equal(t, []string{"Aura"}, second.Names())
	assert.Equal(t, 1, cache.Len())
}

func TestCache_ConcurrentCallersShareOneFactoryRun(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int32
	release := make(chan struct{})

	factory := func(ctx context.Context) (*domain.ResultSet, error) {
		calls.Add(1)
		<-release
		return resultWith("A", "B"), nil
	}

	const callers = 16
	results := make([]*domain.ResultSet, callers)
	errs := make([]error, callers)
	var started, done sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			started.Done()
			results[i], errs[i] = cache.GetOrCreate(context.Background(), key, factory)
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Units(), results[i].Units())
	}
}

func TestCache_FailedFactoryIsNotCached(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int32
	boom := errors.New("boom")

	_, err := cache.GetOrCreate(context.Background(), key, func(ctx context.Context) (*domain.ResultSet, error) {
		calls.Add(1)
		return resultWith("A"), boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), key.String())
	assert.Equal(t, 0, cache.Len())

	rs, err := cache.GetOrCreate(context.Background(), key, countingFactory(&calls, "A"))
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_ResetForcesNewFactoryRun(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int32
	other := Key{Graph: "Other", Network: "hardhat@31337"}

	_, err := cache.GetOrCreate(context.Background(), key, countingFactory(&calls, "A"))
	require.NoError(t, err)
	_, err = cache.GetOrCreate(context.Background(), other, countingFactory(&calls, "B"))
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	cache.Reset(key)
	assert.Equal(t, 1, cache.Len())

	_, err = cache.GetOrCreate(context.Background(), key, countingFactory(&calls, "A"))
	require.NoError(t, err)
	_, err = cache.GetOrCreate(context.Background(), other, countingFactory(&calls, "B"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "only the reset key runs again")

	cache.ResetAll()
	assert.Equal(t, 0, cache.Len())

	_, err = cache.GetOrCreate(context.Background(), other, countingFactory(&calls, "B"))
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestCache_ResetDuringFactoryDiscardsResult(t *testing.T) {
	cache := NewCache()
	entered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		<-entered
		cache.Reset(key)
		close(release)
	}()

	rs, err := cache.GetOrCreate(context.Background(), key, func(ctx context.Context) (*domain.ResultSet, error) {
		close(entered)
		<-release
		return resultWith("Stale"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Stale"}, rs.Names(), "the caller still receives its own result")
	assert.Equal(t, 0, cache.Len(), "but it is not stored after a reset")
}

func TestCache_WaiterCanGiveUp(t *testing.T) {
	cache := NewCache()
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _ = cache.GetOrCreate(context.Background(), key, func(ctx context.Context) (*domain.ResultSet, error) {
			<-release
			return resultWith("A"), nil
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := cache.GetOrCreate(ctx, key, func(ctx context.Context) (*domain.ResultSet, error) {
		<-release
		return resultWith("A"), nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func (c *Cache) waiters(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.runs[key]; ok {
		return r.waiters
	}
	return 0
}

func TestCache_StarterCancelDoesNotFailOtherWaiters(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	factory := func(ctx context.Context) (*domain.ResultSet, error) {
		calls.Add(1)
		close(entered)
		select {
		case <-release:
			return resultWith("Aura"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	starterErr := make(chan error, 1)
	go func() {
		_, err := cache.GetOrCreate(ctx, key, factory)
		starterErr <- err
	}()
	<-entered

	type outcome struct {
		rs  *domain.ResultSet
		err error
	}
	waiter := make(chan outcome, 1)
	go func() {
		rs, err := cache.GetOrCreate(context.Background(), key, factory)
		waiter <- outcome{rs, err}
	}()
	require.Eventually(t, func() bool { return cache.waiters(key) == 2 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-starterErr, context.Canceled)
	assert.Equal(t, 1, cache.waiters(key))

	close(release)
	got := <-waiter
	require.NoError(t, got.err)
	assert.Equal(t, []string{"Aura"}, got.rs.Names())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestCache_RunCancelledOnceEveryWaiterGivesUp(t *testing.T) {
	cache := NewCache()
	entered := make(chan struct{})
	observed := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-entered
		cancel()
	}()

	_, err := cache.GetOrCreate(ctx, key, func(ctx context.Context) (*domain.ResultSet, error) {
		close(entered)
		<-ctx.Done()
		observed <- ctx.Err()
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case err := <-observed:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("factory context was not cancelled")
	}
	assert.Equal(t, 0, cache.waiters(key))
	assert.Equal(t, 0, cache.Len())
}

func TestCache_ResetAllDuringFactoryStartsFreshRun(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	stale := make(chan *domain.ResultSet, 1)
	go func() {
		rs, err := cache.GetOrCreate(context.Background(), key, func(ctx context.Context) (*domain.ResultSet, error) {
			calls.Add(1)
			close(entered)
			<-release
			return resultWith("Stale"), nil
		})
		assert.NoError(t, err)
		stale <- rs
	}()
	<-entered

	cache.ResetAll()

	fresh, err := cache.GetOrCreate(context.Background(), key, countingFactory(&calls, "Fresh"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh"}, fresh.Names())
	assert.Equal(t, int32(2), calls.Load())

	close(release)
	assert.Equal(t, []string{"Stale"}, (<-stale).Names(), "the earlier waiter keeps its own result")

	stored, err := cache.GetOrCreate(context.Background(), key, countingFactory(&calls, "Other"))
	require.NoError(t, err)
	assert.Same(t, fresh, stored)
	assert.Equal(t, int32(2), calls.Load())
}

// auraNetwork deploys anything it is asked to and counts submissions.
type auraNetwork struct {
	mu       sync.Mutex
	deployed map[string]*domain.DeployedUnit
	submits  int
}

func (n *auraNetwork) Submit(ctx context.Context, req domain.DeployRequest, profile *domain.NetworkProfile) (*domain.DeployedUnit, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submits++
	unit := &domain.DeployedUnit{Node: req.Identity.Node, Contract: req.Contract, Address: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")}
	n.deployed[req.Identity.Key()] = unit
	return unit, nil
}

func (n *auraNetwork) Lookup(ctx context.Context, id domain.NodeIdentity, profile *domain.NetworkProfile) (*domain.DeployedUnit, error) {
	return nil, nil
}

func TestLoad_DeploysOncePerProcess(t *testing.T) {
	b := graph.NewBuilder("AuraModule")
	_, err := b.Declare("Aura", graph.Constructor{Contract: "Aura"})
	require.NoError(t, err)
	g, err := b.Seal()
	require.NoError(t, err)

	cred, err := domain.ParseCredential("0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	profile := &domain.NetworkProfile{Name: "hardhat", ChainID: 31337, Credentials: []domain.Credential{cred}}

	network := &auraNetwork{deployed: make(map[string]*domain.DeployedUnit)}
	exec := executor.NewExecutor(network, nil, nil)
	cache := NewCache()

	t.Run("Should deploy successfully", func(t *testing.T) {
		rs, err := Load(context.Background(), cache, exec, g, profile)
		require.NoError(t, err)
		aura, ok := rs.Get("Aura")
		require.True(t, ok)
		assert.Equal(t, "Aura", aura.Contract)
	})

	t.Run("reuses the deployed fixture", func(t *testing.T) {
		rs, err := Load(context.Background(), cache, exec, g, profile)
		require.NoError(t, err)
		assert.Equal(t, 1, rs.Len())
	})

	assert.Equal(t, 1, network.submits)
	assert.Equal(t, Key{Graph: g.Identity(), Network: "hardhat@31337"}, KeyFor(g, profile))
}
