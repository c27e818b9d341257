package usecase

import (
	"context"

	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/graph"
)

// ProgressEvent represents a progress update
type ProgressEvent = domain.ProgressEvent

// ProgressSink receives progress events
type ProgressSink = domain.ProgressSink

// NetworkRegistry resolves configured networks
type NetworkRegistry interface {
	Resolve(name string) (*domain.NetworkProfile, error)
	Names() []string
	ProbeChainID(ctx context.Context, name string) (uint64, error)
}

// ModuleLoader turns module files into sealed deployment graphs
type ModuleLoader interface {
	Resolve(name string) (string, error)
	Load(name string) (*graph.Graph, error)
	List() ([]string, error)
}

// GraphExecutor deploys a sealed graph against a network
type GraphExecutor interface {
	Execute(ctx context.Context, g *graph.Graph, profile *domain.NetworkProfile) (*domain.ResultSet, error)
}

// DeploymentJournal reads recorded deployments
type DeploymentJournal interface {
	List(ctx context.Context, chainID uint64) ([]*domain.JournalEntry, error)
	Path(chainID uint64) string
}

// NetworkSelector picks a network interactively when none was given
type NetworkSelector interface {
	SelectNetwork(ctx context.Context, names []string) (string, error)
}
