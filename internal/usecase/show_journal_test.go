package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

func TestShowJournal(t *testing.T) {
	ctx := context.Background()
	localhost := &domain.NetworkProfile{Name: "localhost", URL: "http://127.0.0.1:8545", ChainID: 31337}
	sepolia := &domain.NetworkProfile{Name: "sepolia", URL: "https://rpc.sepolia.org"}
	hardhat := &domain.NetworkProfile{Name: "hardhat", URL: "memory://hardhat", ChainID: 31337}

	entries := []*domain.JournalEntry{
		{Identity: domain.NodeIdentity{Graph: "AuraModule", Node: "Aura"}, Unit: unit("Aura", "0x01")},
		{Identity: domain.NodeIdentity{Graph: "VaultModule", Node: "Vault"}, Unit: unit("Vault", "0x02")},
	}

	t.Run("configured chain id", func(t *testing.T) {
		networks := new(MockNetworkRegistry)
		journal := new(MockDeploymentJournal)
		networks.On("Resolve", "localhost").Return(localhost, nil)
		journal.On("List", mock.Anything, uint64(31337)).Return(entries, nil)
		journal.On("Path", uint64(31337)).Return("ignition/deployments/chain-31337/journal.json")

		uc := usecase.NewShowJournal(&config.RuntimeConfig{}, networks, journal, nil)
		result, err := uc.Run(ctx, usecase.ShowJournalParams{Network: "localhost"})
		require.NoError(t, err)
		assert.Equal(t, uint64(31337), result.ChainID)
		assert.Len(t, result.Entries, 2)
		assert.Equal(t, "ignition/deployments/chain-31337/journal.json", result.Path)
		networks.AssertNotCalled(t, "ProbeChainID", mock.Anything, mock.Anything)
	})

	t.Run("probes unknown chain id and filters by graph", func(t *testing.T) {
		networks := new(MockNetworkRegistry)
		journal := new(MockDeploymentJournal)
		networks.On("Resolve", "sepolia").Return(sepolia, nil)
		networks.On("ProbeChainID", mock.Anything, "sepolia").Return(uint64(11155111), nil)
		journal.On("List", mock.Anything, uint64(11155111)).Return(append([]*domain.JournalEntry(nil), entries...), nil)
		journal.On("Path", uint64(11155111)).Return("chain-11155111/journal.json")

		uc := usecase.NewShowJournal(&config.RuntimeConfig{Network: "sepolia"}, networks, journal, nil)
		result, err := uc.Run(ctx, usecase.ShowJournalParams{Graph: "VaultModule"})
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, "Vault", result.Entries[0].Identity.Node)
	})

	t.Run("probe failure", func(t *testing.T) {
		networks := new(MockNetworkRegistry)
		networks.On("Resolve", "sepolia").Return(sepolia, nil)
		networks.On("ProbeChainID", mock.Anything, "sepolia").Return(uint64(0), domain.NetworkError{Network: "sepolia", Op: "dial", Err: errors.New("refused")})

		uc := usecase.NewShowJournal(&config.RuntimeConfig{}, networks, new(MockDeploymentJournal), nil)
		_, err := uc.Run(ctx, usecase.ShowJournalParams{Network: "sepolia"})
		var netErr domain.NetworkError
		require.ErrorAs(t, err, &netErr)
	})

	t.Run("in-process network", func(t *testing.T) {
		networks := new(MockNetworkRegistry)
		networks.On("Resolve", "hardhat").Return(hardhat, nil)

		uc := usecase.NewShowJournal(&config.RuntimeConfig{}, networks, new(MockDeploymentJournal), nil)
		_, err := uc.Run(ctx, usecase.ShowJournalParams{Network: "hardhat"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "in-process")
	})
}
