package network

import (
	"context"

	"github.com/trebuchet-org/treb-ignition/internal/domain"
)

// ArtifactSource resolves contract names to compiled artifacts.
type ArtifactSource interface {
	Get(name string) (*domain.Artifact, error)
}

// Journal records deployments per chain so later executions can reconcile.
type Journal interface {
	Get(ctx context.Context, chainID uint64, key string) (*domain.JournalEntry, error)
	Record(ctx context.Context, chainID uint64, id domain.NodeIdentity, unit *domain.DeployedUnit) error
}
