package module

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is a parsed module file.
type Definition struct {
	Module    string
	Contracts []*ContractSpec // file order
}

// ContractSpec declares one node of the module.
type ContractSpec struct {
	Name     string   `yaml:"-"`
	Artifact string   `yaml:"artifact,omitempty"`
	Args     []any    `yaml:"args,omitempty"`
	After    []string `yaml:"after,omitempty"`
}

type definitionYAML struct {
	Module    string    `yaml:"module"`
	Contracts yaml.Node `yaml:"contracts"`
}

// refArg is the {ref: Name} argument form.
type refArg struct {
	Ref string
}

// Dependencies returns the explicit dependencies plus every referenced
// node, without duplicates.
func (c *ContractSpec) Dependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	for _, dep := range c.After {
		add(dep)
	}
	for _, arg := range c.Args {
		if ref, ok := arg.(refArg); ok {
			add(ref.Ref)
		}
	}
	return deps
}

// Validate checks the definition for errors that do not need a graph.
func (d *Definition) Validate() error {
	if d.Module == "" {
		return fmt.Errorf("module name is required")
	}
	if len(d.Contracts) == 0 {
		return fmt.Errorf("module '%s' must declare at least one contract", d.Module)
	}
	return nil
}

// decodeArgs turns {ref: Name} mappings into refArg values. References
// are only valid as top-level constructor arguments.
func decodeArgs(name string, args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, arg := range args {
		if m, ok := arg.(map[string]any); ok {
			ref, err := decodeRef(m)
			if err != nil {
				return nil, fmt.Errorf("contract '%s' argument %d: %w", name, i, err)
			}
			out[i] = ref
			continue
		}
		if containsRef(arg) {
			return nil, fmt.Errorf("contract '%s' argument %d: references are only supported as top-level arguments", name, i)
		}
		out[i] = arg
	}
	return out, nil
}

func decodeRef(m map[string]any) (refArg, error) {
	target, ok := m["ref"].(string)
	if !ok || len(m) != 1 || target == "" {
		return refArg{}, fmt.Errorf("mapping arguments must have the form {ref: <contract>}")
	}
	return refArg{Ref: target}, nil
}

func containsRef(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return true
	case []any:
		for _, item := range t {
			if containsRef(item) {
				return true
			}
		}
	}
	return false
}
