package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// NodeIdentity identifies a node across executions: the graph it belongs to,
// its name and a fingerprint of what it deploys.
type NodeIdentity struct {
	Graph       string `json:"graph"`
	Node        string `json:"node"`
	Contract    string `json:"contract"`
	Fingerprint string `json:"fingerprint"`
}

// Key returns the stable lookup key, e.g. "AuraModule#Aura".
func (id NodeIdentity) Key() string {
	return id.Graph + "#" + id.Node
}

// DeployRequest is what the executor hands to a network to deploy one node.
// Args already have node references replaced by dependency addresses.
type DeployRequest struct {
	Identity     NodeIdentity
	Contract     string
	Args         []any
	Dependencies []*DeployedUnit
}

// DeployedUnit is the handle produced by deploying (or reconciling) one node.
type DeployedUnit struct {
	Node       string         `json:"node"`
	Contract   string         `json:"contract"`
	Address    common.Address `json:"address"`
	TxHash     common.Hash    `json:"txHash"`
	Network    string         `json:"network"`
	ChainID    uint64         `json:"chainId"`
	DeployedAt time.Time      `json:"deployedAt"`
}

// ResultEntry is one node's outcome within a ResultSet.
type ResultEntry struct {
	Unit       *DeployedUnit
	Reconciled bool // found on the network, not deployed by this execution
}

// ResultSet holds the units of one execution in execution order.
type ResultSet struct {
	Graph   string
	Network string
	entries []ResultEntry
	byName  map[string]int
}

// NewResultSet creates an empty result set for a graph/network pair.
func NewResultSet(graph, network string) *ResultSet {
	return &ResultSet{
		Graph:   graph,
		Network: network,
		byName:  make(map[string]int),
	}
}

// Add records an entry. A second entry for the same node replaces the first.
func (r *ResultSet) Add(entry ResultEntry) {
	if i, ok := r.byName[entry.Unit.Node]; ok {
		r.entries[i] = entry
		return
	}
	r.byName[entry.Unit.Node] = len(r.entries)
	r.entries = append(r.entries, entry)
}

// Get returns the unit recorded for a node.
func (r *ResultSet) Get(name string) (*DeployedUnit, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].Unit, true
}

// Entry returns the full entry recorded for a node.
func (r *ResultSet) Entry(name string) (ResultEntry, bool) {
	i, ok := r.byName[name]
	if !ok {
		return ResultEntry{}, false
	}
	return r.entries[i], true
}

// Len returns the number of recorded nodes.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Names returns node names in execution order.
func (r *ResultSet) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Unit.Node
	}
	return names
}

// Entries returns a copy of all entries in execution order.
func (r *ResultSet) Entries() []ResultEntry {
	out := make([]ResultEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Units returns the recorded units keyed by node name.
func (r *ResultSet) Units() map[string]*DeployedUnit {
	out := make(map[string]*DeployedUnit, len(r.entries))
	for _, e := range r.entries {
		out[e.Unit.Node] = e.Unit
	}
	return out
}

// Deployed returns the names of nodes deployed by this execution.
func (r *ResultSet) Deployed() []string {
	return r.filter(false)
}

// Reconciled returns the names of nodes that already existed.
func (r *ResultSet) Reconciled() []string {
	return r.filter(true)
}

func (r *ResultSet) filter(reconciled bool) []string {
	var names []string
	for _, e := range r.entries {
		if e.Reconciled == reconciled {
			names = append(names, e.Unit.Node)
		}
	}
	return names
}

// JournalEntry is one deployment recorded in a chain's journal.
type JournalEntry struct {
	Identity NodeIdentity  `json:"identity"`
	Unit     *DeployedUnit `json:"unit"`
}
