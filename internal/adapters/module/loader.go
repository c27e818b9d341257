package module

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
	"github.com/trebuchet-org/treb-ignition/internal/graph"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// Loader reads module definition files and turns them into sealed graphs.
type Loader struct {
	modulesDir string
}

// NewLoader creates a loader that resolves bare module names against the
// project's modules directory.
func NewLoader(cfg *config.RuntimeConfig) *Loader {
	return &Loader{modulesDir: filepath.Join(cfg.ProjectRoot, cfg.Project.Paths.Modules)}
}

// NewLoaderAt creates a loader over an explicit modules directory.
func NewLoaderAt(dir string) *Loader {
	return &Loader{modulesDir: dir}
}

// Resolve maps a module argument to a file: an existing path is used as is,
// otherwise <modules>/<name>.yaml and .yml are tried.
func (l *Loader) Resolve(name string) (string, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(l.modulesDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("module '%s' not found in %s: %w", name, l.modulesDir, domain.ErrNotFound)
}

// List returns the module files in the modules directory.
func (l *Loader) List() ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(l.modulesDir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return files, nil
}

// Load resolves, parses and builds a module.
func (l *Loader) Load(name string) (*graph.Graph, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	def, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Build(def)
}

// ParseFile parses a module definition from a YAML file.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module file: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return def, nil
}

// Parse parses a module definition from YAML data. Contracts keep their
// file order, which becomes the graph's declaration order.
func Parse(data []byte) (*Definition, error) {
	var raw definitionYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	def := &Definition{Module: raw.Module}

	if raw.Contracts.Kind != 0 {
		if raw.Contracts.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("contracts must be a mapping of name to contract")
		}
		for i := 0; i+1 < len(raw.Contracts.Content); i += 2 {
			name := raw.Contracts.Content[i].Value
			spec := &ContractSpec{}
			if err := raw.Contracts.Content[i+1].Decode(spec); err != nil {
				return nil, fmt.Errorf("contract '%s': %w", name, err)
			}
			spec.Name = name

			args, err := decodeArgs(name, spec.Args)
			if err != nil {
				return nil, err
			}
			spec.Args = args
			def.Contracts = append(def.Contracts, spec)
		}
	}

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid module: %w", err)
	}
	return def, nil
}

// Build declares the contracts of def on a graph builder in dependency
// order and seals it.
func Build(def *Definition) (*graph.Graph, error) {
	ordered, err := declarationOrder(def)
	if err != nil {
		return nil, err
	}

	b := graph.NewBuilder(def.Module)
	refs := make(map[string]graph.NodeRef, len(ordered))

	for _, spec := range ordered {
		args := make([]any, len(spec.Args))
		for i, arg := range spec.Args {
			if ref, ok := arg.(refArg); ok {
				args[i] = refs[ref.Ref]
				continue
			}
			args[i] = arg
		}

		ref, err := b.Declare(spec.Name, graph.Constructor{Contract: spec.Artifact, Args: args}, spec.After...)
		if err != nil {
			return nil, err
		}
		refs[spec.Name] = ref
	}

	return b.Seal()
}

// declarationOrder sorts the contracts so every dependency precedes its
// dependents (Kahn's algorithm). Ready nodes are taken in file order.
func declarationOrder(def *Definition) ([]*ContractSpec, error) {
	byName := make(map[string]*ContractSpec, len(def.Contracts))
	for _, spec := range def.Contracts {
		if _, dup := byName[spec.Name]; dup {
			return nil, domain.DuplicateNameError{Graph: def.Module, Name: spec.Name}
		}
		byName[spec.Name] = spec
	}

	inDegree := make(map[string]int, len(def.Contracts))
	dependents := make(map[string][]string)
	for _, spec := range def.Contracts {
		for _, dep := range spec.Dependencies() {
			if _, exists := byName[dep]; !exists {
				return nil, domain.UnknownDependencyError{Graph: def.Module, Name: spec.Name, Dependency: dep}
			}
			inDegree[spec.Name]++
			dependents[dep] = append(dependents[dep], spec.Name)
		}
	}

	position := make(map[string]int, len(def.Contracts))
	var queue []string
	for i, spec := range def.Contracts {
		position[spec.Name] = i
		if inDegree[spec.Name] == 0 {
			queue = append(queue, spec.Name)
		}
	}

	result := make([]*ContractSpec, 0, len(def.Contracts))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, byName[current])

		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				// Keep queue in file order for deterministic output
				slices.SortFunc(queue, func(a, b string) int { return position[a] - position[b] })
			}
		}
	}

	if len(result) != len(def.Contracts) {
		return nil, domain.CyclicGraphError{Graph: def.Module, Path: findCycle(def, byName, inDegree)}
	}
	return result, nil
}

// findCycle follows unresolved dependencies from the first unresolved
// contract until a contract repeats. Every unresolved contract has at least
// one unresolved dependency, so the walk always closes a loop.
func findCycle(def *Definition, byName map[string]*ContractSpec, inDegree map[string]int) []string {
	var start string
	for _, spec := range def.Contracts {
		if inDegree[spec.Name] > 0 {
			start = spec.Name
			break
		}
	}

	var path []string
	seen := make(map[string]int)
	for current := start; ; {
		if i, ok := seen[current]; ok {
			return append(path[i:], current)
		}
		seen[current] = len(path)
		path = append(path, current)

		next := ""
		for _, dep := range byName[current].Dependencies() {
			if inDegree[dep] > 0 {
				next = dep
				break
			}
		}
		if next == "" {
			return path
		}
		current = next
	}
}

var _ usecase.ModuleLoader = (*Loader)(nil)
