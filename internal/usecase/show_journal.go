package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
)

// ShowJournalParams contains parameters for showing the journal
type ShowJournalParams struct {
	Network string
	// Graph restricts entries to one module when set
	Graph string
}

// ShowJournalResult contains the recorded deployments of one chain
type ShowJournalResult struct {
	Network string
	ChainID uint64
	Path    string
	Entries []*domain.JournalEntry
}

// ShowJournal lists the deployments recorded for a network's chain
type ShowJournal struct {
	cfg      *config.RuntimeConfig
	networks NetworkRegistry
	journal  DeploymentJournal
	selector NetworkSelector
}

// NewShowJournal creates a new ShowJournal use case
func NewShowJournal(cfg *config.RuntimeConfig, networks NetworkRegistry, journal DeploymentJournal, selector NetworkSelector) *ShowJournal {
	return &ShowJournal{
		cfg:      cfg,
		networks: networks,
		journal:  journal,
		selector: selector,
	}
}

// Run executes the use case
func (uc *ShowJournal) Run(ctx context.Context, params ShowJournalParams) (*ShowJournalResult, error) {
	profile, err := resolveNetwork(ctx, uc.cfg, uc.networks, uc.selector, params.Network)
	if err != nil {
		return nil, err
	}
	if profile.InProcess() {
		return nil, fmt.Errorf("network '%s' is in-process and keeps no journal", profile.Name)
	}

	chainID := profile.ChainID
	if chainID == 0 {
		chainID, err = uc.networks.ProbeChainID(ctx, profile.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to determine chain id of '%s': %w", profile.Name, err)
		}
	}

	entries, err := uc.journal.List(ctx, chainID)
	if err != nil {
		return nil, err
	}
	if params.Graph != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.Identity.Graph == params.Graph {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	return &ShowJournalResult{
		Network: profile.Name,
		ChainID: chainID,
		Path:    uc.journal.Path(chainID),
		Entries: entries,
	}, nil
}
