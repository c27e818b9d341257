package network

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/executor"
)

// Memory is an in-process simulated chain. Contract addresses follow the
// CREATE rule (sender, nonce) so they match what a fresh dev node would
// assign. State lives for the lifetime of the Memory value only.
type Memory struct {
	artifacts ArtifactSource
	log       *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	chains map[string]*memoryChain
}

type memoryChain struct {
	nonces      map[common.Address]uint64
	code        map[common.Address][]byte
	deployments map[string]*memoryRecord
	submitted   int
}

type memoryRecord struct {
	identity domain.NodeIdentity
	unit     domain.DeployedUnit
}

// NewMemory creates a simulated chain. artifacts may be nil, in which case
// contract names are not resolved and constructor arguments not encoded.
func NewMemory(artifacts ArtifactSource, log *slog.Logger) *Memory {
	if log == nil {
		log = slog.Default()
	}
	return &Memory{
		artifacts: artifacts,
		log:       log,
		now:       time.Now,
		chains:    make(map[string]*memoryChain),
	}
}

// Lookup returns the unit deployed for id on this simulated chain.
func (m *Memory) Lookup(_ context.Context, id domain.NodeIdentity, profile *domain.NetworkProfile) (*domain.DeployedUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.chain(profile).deployments[id.Key()]
	if !ok {
		return nil, nil
	}
	if record.identity.Fingerprint != id.Fingerprint {
		return nil, mismatch(id, record.identity, record.unit.Address)
	}
	unit := record.unit
	return &unit, nil
}

// Submit simulates a CREATE transaction from the profile's signer.
func (m *Memory) Submit(_ context.Context, req domain.DeployRequest, profile *domain.NetworkProfile) (*domain.DeployedUnit, error) {
	signer, ok := profile.Signer()
	if !ok {
		return nil, profile.RequireSigner()
	}

	var code []byte
	if m.artifacts != nil {
		artifact, err := m.artifacts.Get(req.Contract)
		if err != nil {
			return nil, err
		}
		if code, err = EncodeDeployment(artifact, req.Args); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	chain := m.chain(profile)
	nonce := chain.nonces[signer.Address]
	address := crypto.CreateAddress(signer.Address, nonce)
	chain.nonces[signer.Address] = nonce + 1
	chain.code[address] = code
	chain.submitted++

	unit := domain.DeployedUnit{
		Node:       req.Identity.Node,
		Contract:   req.Contract,
		Address:    address,
		TxHash:     crypto.Keccak256Hash(signer.Address.Bytes(), address.Bytes(), code),
		Network:    profile.Name,
		ChainID:    profile.ChainID,
		DeployedAt: m.now().UTC(),
	}
	chain.deployments[req.Identity.Key()] = &memoryRecord{identity: req.Identity, unit: unit}

	m.log.Debug("simulated deployment", "network", profile.Name, "node", req.Identity.Key(), "address", address.Hex(), "nonce", nonce)

	out := unit
	return &out, nil
}

// Code returns the creation code stored at address.
func (m *Memory) Code(profile *domain.NetworkProfile, address common.Address) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chain(profile).code[address]
}

// Submitted returns how many deployments the simulated chain has accepted.
func (m *Memory) Submitted(profile *domain.NetworkProfile) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chain(profile).submitted
}

func (m *Memory) chain(profile *domain.NetworkProfile) *memoryChain {
	key := profile.Identity()
	chain, ok := m.chains[key]
	if !ok {
		chain = &memoryChain{
			nonces:      make(map[common.Address]uint64),
			code:        make(map[common.Address][]byte),
			deployments: make(map[string]*memoryRecord),
		}
		m.chains[key] = chain
	}
	return chain
}

func mismatch(want, recorded domain.NodeIdentity, address common.Address) error {
	return fmt.Errorf("%s was deployed at %s as %s (fingerprint %s) but is now declared as %s (fingerprint %s): %w",
		want.Key(), address.Hex(), recorded.Contract, recorded.Fingerprint, want.Contract, want.Fingerprint,
		domain.ErrReconciliationMismatch)
}

var _ executor.Network = (*Memory)(nil)
