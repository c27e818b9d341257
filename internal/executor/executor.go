// Package executor walks a sealed deployment graph against a network.
//
// Nodes are processed strictly one at a time in the graph's topological
// order. Each node is first reconciled through Network.Lookup; only nodes
// without a matching deployment are submitted. The first failure stops the
// walk and the units resolved so far are returned with the error.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/wire"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/graph"
)

// Network is the collaborator that actually talks to a chain.
type Network interface {
	// Submit deploys one node and blocks until the network acknowledges it.
	// Implementations enforce profile.Deadline per operation.
	Submit(ctx context.Context, req domain.DeployRequest, profile *domain.NetworkProfile) (*domain.DeployedUnit, error)
	// Lookup returns an existing unit satisfying id, or nil when absent.
	Lookup(ctx context.Context, id domain.NodeIdentity, profile *domain.NetworkProfile) (*domain.DeployedUnit, error)
}

var ExecutorSet = wire.NewSet(NewExecutor)

// Executor deploys graphs through a Network.
type Executor struct {
	network  Network
	progress domain.ProgressSink
	log      *slog.Logger
}

// NewExecutor creates an executor bound to a network collaborator.
func NewExecutor(network Network, progress domain.ProgressSink, log *slog.Logger) *Executor {
	if progress == nil {
		progress = domain.NopProgress{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		network:  network,
		progress: progress,
		log:      log,
	}
}

// Execute deploys every node of g that the network does not already have.
//
// On failure the returned ResultSet holds every unit resolved before the
// failing node and the error is a DeploymentFailedError naming it. A
// cancelled ctx is honoured between nodes only; an operation that was
// already submitted is always awaited.
func (e *Executor) Execute(ctx context.Context, g *graph.Graph, profile *domain.NetworkProfile) (*domain.ResultSet, error) {
	results := domain.NewResultSet(g.ID(), profile.Name)
	nodes := g.Nodes()
	log := e.log.With("graph", g.ID(), "network", profile.Name)

	log.Debug("executing graph", "nodes", len(nodes), "identity", g.Identity())

	for i, node := range nodes {
		if err := ctx.Err(); err != nil {
			log.Warn("execution cancelled", "before", node.Name(), "completed", results.Len())
			return results, fmt.Errorf("execution of '%s' cancelled before node '%s': %w", g.ID(), node.Name(), err)
		}

		// In-flight operations cannot be un-submitted, so they run detached
		// from cancellation.
		opCtx := context.WithoutCancel(ctx)

		identity := domain.NodeIdentity{
			Graph:       g.ID(),
			Node:        node.Name(),
			Contract:    node.Contract(),
			Fingerprint: node.Fingerprint(),
		}

		existing, err := e.network.Lookup(opCtx, identity, profile)
		if err != nil {
			return results, e.fail(ctx, g, profile, node, i, len(nodes), fmt.Errorf("reconcile: %w", err))
		}
		if existing != nil {
			results.Add(domain.ResultEntry{Unit: existing, Reconciled: true})
			log.Info("node already deployed", "node", node.Name(), "address", existing.Address.Hex())
			e.progress.OnProgress(ctx, domain.ProgressEvent{
				Stage:    domain.StageNodeReconciled,
				Current:  i + 1,
				Total:    len(nodes),
				Message:  node.Name(),
				Metadata: existing,
			})
			continue
		}

		if err := profile.RequireSigner(); err != nil {
			return results, e.fail(ctx, g, profile, node, i, len(nodes), err)
		}

		req, err := buildRequest(identity, node, results)
		if err != nil {
			return results, e.fail(ctx, g, profile, node, i, len(nodes), err)
		}

		e.progress.OnProgress(ctx, domain.ProgressEvent{
			Stage:   domain.StageNodeDeploying,
			Current: i + 1,
			Total:   len(nodes),
			Message: node.Name(),
			Spinner: true,
		})
		log.Debug("submitting node", "node", node.Name(), "contract", node.Contract(), "deps", len(req.Dependencies))

		unit, err := e.network.Submit(opCtx, req, profile)
		if err != nil {
			return results, e.fail(ctx, g, profile, node, i, len(nodes), err)
		}
		if unit == nil {
			return results, e.fail(ctx, g, profile, node, i, len(nodes), errors.New("network returned no unit"))
		}

		results.Add(domain.ResultEntry{Unit: unit})
		log.Info("node deployed", "node", node.Name(), "address", unit.Address.Hex(), "tx", unit.TxHash.Hex())
		e.progress.OnProgress(ctx, domain.ProgressEvent{
			Stage:    domain.StageNodeDeployed,
			Current:  i + 1,
			Total:    len(nodes),
			Message:  node.Name(),
			Metadata: unit,
		})
	}

	e.progress.OnProgress(ctx, domain.ProgressEvent{
		Stage:    domain.StageExecutionCompleted,
		Current:  len(nodes),
		Total:    len(nodes),
		Metadata: results,
	})

	return results, nil
}

func (e *Executor) fail(ctx context.Context, g *graph.Graph, profile *domain.NetworkProfile, node *graph.Node, i, total int, cause error) error {
	err := domain.DeploymentFailedError{
		Graph:   g.ID(),
		Network: profile.Name,
		Node:    node.Name(),
		Err:     cause,
	}
	e.log.Error("node failed", "graph", g.ID(), "network", profile.Name, "node", node.Name(), "error", cause)
	e.progress.OnProgress(ctx, domain.ProgressEvent{
		Stage:    domain.StageNodeFailed,
		Current:  i + 1,
		Total:    total,
		Message:  node.Name(),
		Metadata: err,
	})
	return err
}

// buildRequest resolves NodeRef arguments and dependency handles from the
// units already recorded in results.
func buildRequest(id domain.NodeIdentity, node *graph.Node, results *domain.ResultSet) (domain.DeployRequest, error) {
	deps := node.Dependencies()
	req := domain.DeployRequest{
		Identity:     id,
		Contract:     node.Contract(),
		Args:         node.Args(),
		Dependencies: make([]*domain.DeployedUnit, 0, len(deps)),
	}

	for _, dep := range deps {
		unit, ok := results.Get(dep)
		if !ok {
			return req, fmt.Errorf("dependency '%s' has no deployed unit", dep)
		}
		req.Dependencies = append(req.Dependencies, unit)
	}

	for i, arg := range req.Args {
		ref, ok := arg.(graph.NodeRef)
		if !ok {
			continue
		}
		unit, ok := results.Get(ref.Name())
		if !ok {
			return req, fmt.Errorf("argument %d references '%s' which has no deployed unit", i, ref.Name())
		}
		req.Args[i] = unit.Address
	}

	return req, nil
}
