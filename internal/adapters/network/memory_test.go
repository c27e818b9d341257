package network

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
)

const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type artifactMap map[string]*domain.Artifact

func (m artifactMap) Get(name string) (*domain.Artifact, error) {
	if a, ok := m[name]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func devProfile(t *testing.T, name, url string) *domain.NetworkProfile {
	t.Helper()
	cred, err := domain.ParseCredential(devKey)
	require.NoError(t, err)
	return &domain.NetworkProfile{Name: name, URL: url, ChainID: 31337, Credentials: []domain.Credential{cred}}
}

func auraRequest(fingerprint string) domain.DeployRequest {
	return domain.DeployRequest{
		Identity: domain.NodeIdentity{Graph: "AuraModule", Node: "Aura", Contract: "Aura", Fingerprint: fingerprint},
		Contract: "Aura",
	}
}

func TestMemory_SubmitAndLookup(t *testing.T) {
	ctx := context.Background()
	artifacts := artifactMap{"Aura": {Name: "Aura", Bytecode: []byte{0x60, 0x0a}}}
	memory := NewMemory(artifacts, nil)
	profile := devProfile(t, "hardhat", "memory://hardhat")

	unit, err := memory.Lookup(ctx, auraRequest("f1").Identity, profile)
	require.NoError(t, err)
	assert.Nil(t, unit)

	unit, err = memory.Submit(ctx, auraRequest("f1"), profile)
	require.NoError(t, err)

	// First CREATE of the well-known dev account.
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", unit.Address.Hex())
	assert.Equal(t, "hardhat", unit.Network)
	assert.Equal(t, uint64(31337), unit.ChainID)
	assert.Equal(t, []byte{0x60, 0x0a}, memory.Code(profile, unit.Address))
	assert.Equal(t, 1, memory.Submitted(profile))

	found, err := memory.Lookup(ctx, auraRequest("f1").Identity, profile)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, unit.Address, found.Address)

	t.Run("fingerprint change is a mismatch", func(t *testing.T) {
		_, err := memory.Lookup(ctx, auraRequest("f2").Identity, profile)
		assert.ErrorIs(t, err, domain.ErrReconciliationMismatch)
	})

	t.Run("nonce advances", func(t *testing.T) {
		req := auraRequest("f1")
		req.Identity.Node = "Aura2"
		second, err := memory.Submit(ctx, req, profile)
		require.NoError(t, err)
		signer, _ := profile.Signer()
		assert.Equal(t, crypto.CreateAddress(signer.Address, 1), second.Address)
	})

	t.Run("networks are isolated", func(t *testing.T) {
		other := devProfile(t, "localhost", "memory://localhost")
		other.ChainID = 1337
		found, err := memory.Lookup(ctx, auraRequest("f1").Identity, other)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestMemory_SubmitErrors(t *testing.T) {
	ctx := context.Background()
	memory := NewMemory(artifactMap{}, nil)

	t.Run("no signer", func(t *testing.T) {
		profile := &domain.NetworkProfile{Name: "morphl2", URL: "memory://morphl2"}
		_, err := memory.Submit(ctx, auraRequest("f"), profile)
		var cfgErr domain.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("unknown artifact", func(t *testing.T) {
		_, err := memory.Submit(ctx, auraRequest("f"), devProfile(t, "hardhat", "memory://hardhat"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("without artifacts any contract deploys", func(t *testing.T) {
		bare := NewMemory(nil, nil)
		unit, err := bare.Submit(ctx, auraRequest("f"), devProfile(t, "hardhat", "memory://hardhat"))
		require.NoError(t, err)
		assert.NotEqual(t, [20]byte{}, [20]byte(unit.Address))
	})
}
