// Package graph builds sealed deployment graphs.
//
// A graph is declared through a Builder, one node at a time, with every
// dependency declared before its dependents. Seal validates the result and
// returns an immutable Graph carrying a precomputed topological order that
// the executor walks as is.
package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"slices"
)

// Node is one deployable unit of a sealed graph.
type Node struct {
	name        string
	contract    string
	args        []any
	deps        []string
	fingerprint string
}

func (n *Node) Name() string     { return n.name }
func (n *Node) Contract() string { return n.contract }

// Args returns a copy of the constructor arguments, NodeRefs included.
func (n *Node) Args() []any { return slices.Clone(n.args) }

// Dependencies returns a copy of the dependency names in declaration order.
func (n *Node) Dependencies() []string { return slices.Clone(n.deps) }

// Fingerprint is a digest of contract and arguments. A recorded deployment
// whose fingerprint differs does not satisfy this node.
func (n *Node) Fingerprint() string { return n.fingerprint }

// Graph is a sealed, acyclic set of nodes with a fixed execution order.
type Graph struct {
	id         string
	identity   string
	nodes      map[string]*Node
	order      []string
	dependents map[string][]string
}

// ID returns the module id the graph was declared with.
func (g *Graph) ID() string { return g.id }

// Identity returns the module id combined with a digest of every node, so
// two graphs with equal identity deploy the same thing.
func (g *Graph) Identity() string { return g.identity }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Order returns node names in execution order.
func (g *Graph) Order() []string { return slices.Clone(g.order) }

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all nodes in execution order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, name := range g.order {
		out[i] = g.nodes[name]
	}
	return out
}

// Dependents returns the names of nodes that directly depend on name.
func (g *Graph) Dependents(name string) []string {
	return slices.Clone(g.dependents[name])
}

func fingerprintNode(n *Node) string {
	h := sha256.New()
	io.WriteString(h, n.contract)
	for _, arg := range n.args {
		fmt.Fprintf(h, "\x00%T:%v", arg, arg)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func fingerprintGraph(g *Graph) string {
	h := sha256.New()
	for _, name := range g.order {
		n := g.nodes[name]
		fmt.Fprintf(h, "%s\x00%s\x00%v\x00", n.name, n.fingerprint, n.deps)
	}
	return g.id + "-" + hex.EncodeToString(h.Sum(nil))[:12]
}
