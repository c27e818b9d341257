package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
	"github.com/trebuchet-org/treb-ignition/internal/fixture"
	"github.com/trebuchet-org/treb-ignition/internal/graph"
)

// DeployModuleParams contains parameters for deploying modules
type DeployModuleParams struct {
	Modules []string
	Network string
}

// DeployModuleResult is the outcome of one module
type DeployModuleResult struct {
	Module   string
	Graph    *graph.Graph
	Network  *domain.NetworkProfile
	Results  *domain.ResultSet
	DryRun   bool
	Duration time.Duration
	Err      error
}

// DeployModule deploys one or more modules to a network. Modules are
// executed one after another; a module whose graph was already executed in
// this process is served from the fixture cache.
type DeployModule struct {
	cfg      *config.RuntimeConfig
	networks NetworkRegistry
	modules  ModuleLoader
	executor GraphExecutor
	cache    *fixture.Cache
	selector NetworkSelector
	progress ProgressSink
	log      *slog.Logger
}

// NewDeployModule creates a new DeployModule use case
func NewDeployModule(
	cfg *config.RuntimeConfig,
	networks NetworkRegistry,
	modules ModuleLoader,
	executor GraphExecutor,
	cache *fixture.Cache,
	selector NetworkSelector,
	progress ProgressSink,
	log *slog.Logger,
) *DeployModule {
	return &DeployModule{
		cfg:      cfg,
		networks: networks,
		modules:  modules,
		executor: executor,
		cache:    cache,
		selector: selector,
		progress: progress,
		log:      log,
	}
}

// Run deploys every module in params.Modules. It stops at the first module
// that fails; the failed module's result carries its partial ResultSet.
func (uc *DeployModule) Run(ctx context.Context, params DeployModuleParams) ([]*DeployModuleResult, error) {
	if len(params.Modules) == 0 {
		return nil, fmt.Errorf("no module given")
	}

	profile, err := resolveNetwork(ctx, uc.cfg, uc.networks, uc.selector, params.Network)
	if err != nil {
		return nil, err
	}

	// Parse every module up front so a typo in the last one does not leave
	// the first ones deployed.
	graphs := make([]*graph.Graph, len(params.Modules))
	for i, name := range params.Modules {
		g, err := uc.modules.Load(name)
		if err != nil {
			return nil, err
		}
		graphs[i] = g
	}

	var results []*DeployModuleResult
	for i, g := range graphs {
		result := uc.deploy(ctx, params.Modules[i], g, profile)
		results = append(results, result)
		if result.Err != nil {
			return results, result.Err
		}
	}
	return results, nil
}

func (uc *DeployModule) deploy(ctx context.Context, name string, g *graph.Graph, profile *domain.NetworkProfile) *DeployModuleResult {
	start := time.Now()
	result := &DeployModuleResult{
		Module:  name,
		Graph:   g,
		Network: profile,
		DryRun:  uc.cfg.DryRun,
	}

	uc.log.Debug("deploying module", "module", g.ID(), "network", profile.Name, "nodes", g.Len())
	uc.progress.Info(fmt.Sprintf("Deploying %s to %s", g.ID(), profile.Name))

	// The executor returns partial results alongside a failure; the cache
	// does not, so keep them aside.
	var partial atomic.Pointer[domain.ResultSet]
	rs, err := uc.cache.GetOrCreate(ctx, fixture.KeyFor(g, profile), func(ctx context.Context) (*domain.ResultSet, error) {
		rs, err := uc.executor.Execute(ctx, g, profile)
		partial.Store(rs)
		return rs, err
	})
	if err != nil {
		rs = partial.Load()
	}

	result.Results = rs
	result.Err = err
	result.Duration = time.Since(start)
	return result
}

// resolveNetwork returns the requested profile, falling back to the
// configured default and finally to an interactive selection.
func resolveNetwork(ctx context.Context, cfg *config.RuntimeConfig, networks NetworkRegistry, selector NetworkSelector, name string) (*domain.NetworkProfile, error) {
	if name == "" {
		name = cfg.Network
	}
	if name == "" {
		if cfg.NonInteractive || selector == nil {
			return nil, fmt.Errorf("no network given, use --network")
		}
		selected, err := selector.SelectNetwork(ctx, networks.Names())
		if err != nil {
			return nil, err
		}
		name = selected
	}
	return networks.Resolve(name)
}
