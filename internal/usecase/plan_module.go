package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/treb-ignition/internal/graph"
)

// PlanModuleParams contains parameters for planning a module
type PlanModuleParams struct {
	Module string
}

// PlanStep is one node in execution order
type PlanStep struct {
	Index        int
	Name         string
	Contract     string
	Args         []string
	Dependencies []string
	Fingerprint  string
}

// PlanModuleResult contains the execution plan of a module
type PlanModuleResult struct {
	Module   string
	Path     string
	Identity string
	Steps    []PlanStep
}

// PlanModule loads and seals a module and reports the order its nodes
// would execute in. It never contacts a network.
type PlanModule struct {
	modules ModuleLoader
}

// NewPlanModule creates a new PlanModule use case
func NewPlanModule(modules ModuleLoader) *PlanModule {
	return &PlanModule{
		modules: modules,
	}
}

// Run executes the use case
func (uc *PlanModule) Run(ctx context.Context, params PlanModuleParams) (*PlanModuleResult, error) {
	path, err := uc.modules.Resolve(params.Module)
	if err != nil {
		return nil, err
	}
	g, err := uc.modules.Load(params.Module)
	if err != nil {
		return nil, err
	}

	result := &PlanModuleResult{
		Module:   g.ID(),
		Path:     path,
		Identity: g.Identity(),
	}
	for i, node := range g.Nodes() {
		result.Steps = append(result.Steps, PlanStep{
			Index:        i + 1,
			Name:         node.Name(),
			Contract:     node.Contract(),
			Args:         formatArgs(node.Args()),
			Dependencies: node.Dependencies(),
			Fingerprint:  node.Fingerprint(),
		})
	}
	return result, nil
}

func formatArgs(args []any) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case graph.NodeRef:
			out[i] = v.String()
		case string:
			out[i] = fmt.Sprintf("%q", v)
		default:
			out[i] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
