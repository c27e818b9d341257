package network

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
)

func TestRouter_MemoryProfile(t *testing.T) {
	evm, _ := newTestEVM(t)
	memory := NewMemory(nil, nil)
	router := NewRouter(evm, memory, &config.RuntimeConfig{})
	profile := devProfile(t, "hardhat", "memory://hardhat")

	unit, err := router.Submit(context.Background(), auraRequest("f1"), profile)
	require.NoError(t, err)
	assert.Equal(t, 1, memory.Submitted(profile))

	found, err := router.Lookup(context.Background(), auraRequest("f1").Identity, profile)
	require.NoError(t, err)
	assert.Equal(t, unit.Address, found.Address)
}

func TestRouter_DryRunReconcilesAgainstRealNetwork(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain(31337)
	evm, _ := newTestEVM(t)
	profile := devProfile(t, "localhost", serveChain(t, chain))

	// Deploy Aura for real first.
	_, err := evm.Submit(ctx, auraRequest("f1"), profile)
	require.NoError(t, err)

	memory := NewMemory(nil, nil)
	router := NewRouter(evm, memory, &config.RuntimeConfig{DryRun: true})
	assert.True(t, router.DryRun())

	found, err := router.Lookup(ctx, auraRequest("f1").Identity, profile)
	require.NoError(t, err)
	require.NotNil(t, found)

	req := auraRequest("f1")
	req.Identity.Node = "Token"
	req.Contract = "Token"
	simulated, err := router.Submit(ctx, req, profile)
	require.NoError(t, err)
	assert.Equal(t, 1, chain.sent)
	assert.Equal(t, 1, memory.Submitted(profile))

	shadow, err := router.Lookup(ctx, req.Identity, profile)
	require.NoError(t, err)
	require.NotNil(t, shadow)
	assert.Equal(t, simulated.Address, shadow.Address)
}
