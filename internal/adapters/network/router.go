package network

import (
	"context"

	"github.com/google/wire"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
	"github.com/trebuchet-org/treb-ignition/internal/executor"
)

var NetworkSet = wire.NewSet(
	NewEVM,
	NewMemory,
	NewRouter,
	wire.Bind(new(executor.Network), new(*Router)),
)

// Router sends memory:// profiles to the simulated chain and everything
// else to the RPC collaborator. In dry-run mode lookups still reconcile
// against the real network but submissions are simulated.
type Router struct {
	evm    *EVM
	memory *Memory
	dryRun bool
}

// NewRouter creates the network collaborator used by the executor.
func NewRouter(evm *EVM, memory *Memory, cfg *config.RuntimeConfig) *Router {
	return &Router{evm: evm, memory: memory, dryRun: cfg.DryRun}
}

func (r *Router) Lookup(ctx context.Context, id domain.NodeIdentity, profile *domain.NetworkProfile) (*domain.DeployedUnit, error) {
	if profile.InProcess() {
		return r.memory.Lookup(ctx, id, profile)
	}
	if r.dryRun {
		// Units simulated earlier in this process shadow the real network.
		if unit, err := r.memory.Lookup(ctx, id, profile); unit != nil || err != nil {
			return unit, err
		}
	}
	return r.evm.Lookup(ctx, id, profile)
}

func (r *Router) Submit(ctx context.Context, req domain.DeployRequest, profile *domain.NetworkProfile) (*domain.DeployedUnit, error) {
	if r.dryRun || profile.InProcess() {
		return r.memory.Submit(ctx, req, profile)
	}
	return r.evm.Submit(ctx, req, profile)
}

// DryRun reports whether submissions are simulated.
func (r *Router) DryRun() bool { return r.dryRun }

// Close releases RPC connections.
func (r *Router) Close() { r.evm.Close() }

var _ executor.Network = (*Router)(nil)
