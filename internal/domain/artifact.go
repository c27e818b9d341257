package domain

import "github.com/ethereum/go-ethereum/accounts/abi"

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	Name       string
	SourceName string
	Path       string
	ABI        *abi.ABI
	Bytecode   []byte
}

// HasConstructorArgs reports whether the constructor takes inputs.
func (a *Artifact) HasConstructorArgs() bool {
	return a.ABI != nil && len(a.ABI.Constructor.Inputs) > 0
}
