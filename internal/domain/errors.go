package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrSealed is returned when a graph builder is used after Seal
	ErrSealed = errors.New("graph already sealed")

	// ErrReconciliationMismatch is returned when a recorded deployment no
	// longer matches the node that claims it (contract or arguments changed)
	ErrReconciliationMismatch = errors.New("recorded deployment does not match node")

	// ErrNoSigner is the cause attached to a ConfigError when a state
	// changing operation is attempted without a credential
	ErrNoSigner = errors.New("no signer credential configured")
)

// ConfigError reports a missing or invalid network/credential setup.
// It is fatal and never retried.
type ConfigError struct {
	Network     string
	Reason      string
	Suggestions []string
	Err         error
}

func (e ConfigError) Error() string {
	var b strings.Builder
	if e.Network != "" {
		fmt.Fprintf(&b, "network '%s': %s", e.Network, e.Reason)
	} else {
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

func (e ConfigError) Unwrap() error { return e.Err }

// DuplicateNameError is returned when a node name is declared twice in one graph.
type DuplicateNameError struct {
	Graph string
	Name  string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("graph '%s': node '%s' is already declared", e.Graph, e.Name)
}

// UnknownDependencyError is returned when a node depends on a name that has
// not been declared before it.
type UnknownDependencyError struct {
	Graph      string
	Name       string
	Dependency string
}

func (e UnknownDependencyError) Error() string {
	if e.Name == e.Dependency {
		return fmt.Sprintf("graph '%s': node '%s' cannot depend on itself", e.Graph, e.Name)
	}
	return fmt.Sprintf("graph '%s': node '%s' depends on undeclared node '%s'", e.Graph, e.Name, e.Dependency)
}

// CyclicGraphError is returned by Seal when the graph contains a cycle.
// Path lists the cycle starting and ending at the same node.
type CyclicGraphError struct {
	Graph string
	Path  []string
}

func (e CyclicGraphError) Error() string {
	return fmt.Sprintf("graph '%s': circular dependency detected: %s", e.Graph, strings.Join(e.Path, " -> "))
}

// DeploymentFailedError is returned when one node's operation fails. The
// executor stops at that node; units deployed before it are returned
// alongside the error.
type DeploymentFailedError struct {
	Graph   string
	Network string
	Node    string
	Err     error
}

func (e DeploymentFailedError) Error() string {
	return fmt.Sprintf("deployment of '%s' in graph '%s' on network '%s' failed: %v", e.Node, e.Graph, e.Network, e.Err)
}

func (e DeploymentFailedError) Unwrap() error { return e.Err }

// NetworkError wraps a transport level failure talking to a network.
type NetworkError struct {
	Network string
	Op      string
	Err     error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network '%s': %s: %v", e.Network, e.Op, e.Err)
}

func (e NetworkError) Unwrap() error { return e.Err }

// ExecutionRevertedError is returned when a deployment transaction was
// mined but reverted.
type ExecutionRevertedError struct {
	Network string
	Node    string
	TxHash  string
	Reason  string
}

func (e ExecutionRevertedError) Error() string {
	msg := fmt.Sprintf("network '%s': deployment of '%s' reverted", e.Network, e.Node)
	if e.TxHash != "" {
		msg += " (tx " + e.TxHash + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// TimeoutError is returned when an operation exceeds the per-operation deadline.
type TimeoutError struct {
	Network string
	Op      string
	Err     error
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("network '%s': %s timed out: %v", e.Network, e.Op, e.Err)
}

func (e TimeoutError) Unwrap() error { return e.Err }
