package graph

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
)

// Constructor describes how a node is deployed: the contract artifact and
// its constructor arguments. Arguments may contain NodeRef values, which are
// replaced by the referenced node's deployed address at execution time.
type Constructor struct {
	Contract string
	Args     []any
}

// NodeRef is a handle to a declared node, usable as a dependency or as a
// constructor argument of later nodes.
type NodeRef struct {
	graph string
	name  string
}

// Name returns the referenced node name.
func (r NodeRef) Name() string { return r.name }

func (r NodeRef) String() string { return "ref(" + r.name + ")" }

// Builder is the mutable construction phase of a deployment graph.
// Dependencies must be declared before their dependents.
type Builder struct {
	id     string
	nodes  map[string]*Node
	order  []string // declaration order
	sealed bool
}

// NewBuilder starts a new graph with the given module id.
func NewBuilder(id string) *Builder {
	return &Builder{
		id:    id,
		nodes: make(map[string]*Node),
	}
}

// ID returns the module id of the graph under construction.
func (b *Builder) ID() string { return b.id }

// Declare adds a node. Dependencies are the explicit names plus every NodeRef
// found in the constructor arguments.
func (b *Builder) Declare(name string, ctor Constructor, deps ...string) (NodeRef, error) {
	if b.sealed {
		return NodeRef{}, fmt.Errorf("declare '%s': %w", name, domain.ErrSealed)
	}
	if name == "" {
		return NodeRef{}, fmt.Errorf("graph '%s': node name is required", b.id)
	}
	if _, exists := b.nodes[name]; exists {
		return NodeRef{}, domain.DuplicateNameError{Graph: b.id, Name: name}
	}

	all := slices.Clone(deps)
	for _, arg := range ctor.Args {
		ref, ok := arg.(NodeRef)
		if !ok {
			continue
		}
		if ref.graph != b.id {
			return NodeRef{}, domain.UnknownDependencyError{Graph: b.id, Name: name, Dependency: ref.graph + "#" + ref.name}
		}
		all = append(all, ref.name)
	}
	all = lo.Uniq(all)

	for _, dep := range all {
		if _, exists := b.nodes[dep]; !exists {
			return NodeRef{}, domain.UnknownDependencyError{Graph: b.id, Name: name, Dependency: dep}
		}
	}

	contract := ctor.Contract
	if contract == "" {
		contract = name
	}

	b.nodes[name] = &Node{
		name:     name,
		contract: contract,
		args:     slices.Clone(ctor.Args),
		deps:     all,
	}
	b.order = append(b.order, name)

	return NodeRef{graph: b.id, name: name}, nil
}

// Seal validates the graph and freezes it. The builder cannot be used
// afterwards.
func (b *Builder) Seal() (*Graph, error) {
	if b.sealed {
		return nil, fmt.Errorf("seal graph '%s': %w", b.id, domain.ErrSealed)
	}

	order, err := b.topologicalOrder()
	if err != nil {
		return nil, err
	}
	b.sealed = true

	g := &Graph{
		id:         b.id,
		nodes:      b.nodes,
		order:      order,
		dependents: make(map[string][]string, len(b.nodes)),
	}
	for _, name := range order {
		n := g.nodes[name]
		n.fingerprint = fingerprintNode(n)
		for _, dep := range n.deps {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}
	g.identity = fingerprintGraph(g)

	return g, nil
}

// topologicalOrder runs a depth-first traversal with white/gray/black
// colouring. Dependencies are emitted before dependents; ties follow
// declaration order.
func (b *Builder) topologicalOrder() ([]string, error) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(b.nodes))
	order := make([]string, 0, len(b.nodes))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			start := slices.Index(stack, name)
			path := append(slices.Clone(stack[start:]), name)
			return domain.CyclicGraphError{Graph: b.id, Path: path}
		}

		n, ok := b.nodes[name]
		if !ok {
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			return domain.UnknownDependencyError{Graph: b.id, Name: parent, Dependency: name}
		}

		color[name] = gray
		stack = append(stack, name)
		for _, dep := range n.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		order = append(order, name)
		return nil
	}

	for _, name := range b.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
