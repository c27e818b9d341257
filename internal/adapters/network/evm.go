package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/executor"
)

// gasBufferPercent is added on top of the node's gas estimate.
const gasBufferPercent = 20

// EVM deploys through a JSON-RPC endpoint. Every deployment is recorded in
// the journal; Lookup trusts a journal entry only while the chain still has
// code at the recorded address.
type EVM struct {
	artifacts ArtifactSource
	journal   Journal
	log       *slog.Logger

	mu      sync.Mutex
	clients map[string]*evmClient
}

type evmClient struct {
	*ethclient.Client
	chainID uint64
}

// NewEVM creates an RPC backed network collaborator.
func NewEVM(artifacts ArtifactSource, journal Journal, log *slog.Logger) *EVM {
	if log == nil {
		log = slog.Default()
	}
	return &EVM{
		artifacts: artifacts,
		journal:   journal,
		log:       log,
		clients:   make(map[string]*evmClient),
	}
}

// Lookup reconciles id against the journal and the live chain.
func (n *EVM) Lookup(ctx context.Context, id domain.NodeIdentity, profile *domain.NetworkProfile) (*domain.DeployedUnit, error) {
	ctx, cancel := withDeadline(ctx, profile.Deadline)
	defer cancel()

	client, err := n.client(ctx, profile)
	if err != nil {
		return nil, err
	}

	entry, err := n.journal.Get(ctx, client.chainID, id.Key())
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	if entry.Identity.Fingerprint != id.Fingerprint {
		return nil, mismatch(id, entry.Identity, entry.Unit.Address)
	}

	code, err := client.CodeAt(ctx, entry.Unit.Address, nil)
	if err != nil {
		return nil, classify(profile.Name, "eth_getCode", err)
	}
	if len(code) == 0 {
		// Typically a restarted dev node.
		n.log.Warn("journal entry has no code on chain, deploying again",
			"network", profile.Name, "node", id.Key(), "address", entry.Unit.Address.Hex())
		return nil, nil
	}

	unit := *entry.Unit
	unit.Network = profile.Name
	return &unit, nil
}

// Submit signs and broadcasts a contract creation transaction and waits
// for it to be mined.
func (n *EVM) Submit(ctx context.Context, req domain.DeployRequest, profile *domain.NetworkProfile) (*domain.DeployedUnit, error) {
	signer, ok := profile.Signer()
	if !ok {
		return nil, profile.RequireSigner()
	}

	artifact, err := n.artifacts.Get(req.Contract)
	if err != nil {
		return nil, err
	}
	data, err := EncodeDeployment(artifact, req.Args)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withDeadline(ctx, profile.Deadline)
	defer cancel()

	client, err := n.client(ctx, profile)
	if err != nil {
		return nil, err
	}
	log := n.log.With("network", profile.Name, "node", req.Identity.Key())

	nonce, err := client.PendingNonceAt(ctx, signer.Address)
	if err != nil {
		return nil, classify(profile.Name, "eth_getTransactionCount", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classify(profile.Name, "eth_gasPrice", err)
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:     signer.Address,
		GasPrice: gasPrice,
		Value:    big.NewInt(0),
		Data:     data,
	})
	if err != nil {
		if isRevert(err) {
			return nil, domain.ExecutionRevertedError{Network: profile.Name, Node: req.Identity.Node, Reason: err.Error()}
		}
		return nil, classify(profile.Name, "eth_estimateGas", err)
	}
	gasLimit = gasLimit * (100 + gasBufferPercent) / 100

	tx := types.NewContractCreation(nonce, big.NewInt(0), gasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(client.chainID)), signer.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	log.Debug("sending deployment transaction",
		"tx", signedTx.Hash().Hex(), "nonce", nonce, "gas_limit", gasLimit, "gas_price", gasPrice.String())

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return nil, classify(profile.Name, "eth_sendRawTransaction", err)
	}

	receipt, err := bind.WaitMined(ctx, client, signedTx)
	if err != nil {
		return nil, classify(profile.Name, "wait for receipt", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, domain.ExecutionRevertedError{
			Network: profile.Name,
			Node:    req.Identity.Node,
			TxHash:  signedTx.Hash().Hex(),
			Reason:  "transaction reverted",
		}
	}

	unit := &domain.DeployedUnit{
		Node:       req.Identity.Node,
		Contract:   req.Contract,
		Address:    receipt.ContractAddress,
		TxHash:     signedTx.Hash(),
		Network:    profile.Name,
		ChainID:    client.chainID,
		DeployedAt: time.Now().UTC(),
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	log.Info("contract deployed", "address", unit.Address.Hex(), "block", block)

	// The contract exists on chain at this point; a journal failure must
	// not turn a successful deployment into a failed one.
	if err := n.journal.Record(context.WithoutCancel(ctx), client.chainID, req.Identity, unit); err != nil {
		log.Error("failed to record deployment in journal", "error", err)
	}

	return unit, nil
}

// ChainID returns the chain id reported by the profile's endpoint.
func (n *EVM) ChainID(ctx context.Context, profile *domain.NetworkProfile) (uint64, error) {
	ctx, cancel := withDeadline(ctx, profile.Deadline)
	defer cancel()

	client, err := n.client(ctx, profile)
	if err != nil {
		return 0, err
	}
	return client.chainID, nil
}

// Close releases all RPC connections.
func (n *EVM) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for url, client := range n.clients {
		client.Close()
		delete(n.clients, url)
	}
}

// client returns a cached connection for the profile and checks the
// configured chain id against it. Profiles sharing a URL may disagree on the
// chain id, so the check runs on every call.
func (n *EVM) client(ctx context.Context, profile *domain.NetworkProfile) (*evmClient, error) {
	client, err := n.connect(ctx, profile)
	if err != nil {
		return nil, err
	}
	if err := checkChainID(profile, client.chainID); err != nil {
		return nil, err
	}
	return client, nil
}

// connect dials on first use. Dialing happens outside the lock so a slow
// endpoint only delays its own network.
func (n *EVM) connect(ctx context.Context, profile *domain.NetworkProfile) (*evmClient, error) {
	n.mu.Lock()
	client, ok := n.clients[profile.URL]
	n.mu.Unlock()
	if ok {
		return client, nil
	}

	rpc, err := ethclient.DialContext(ctx, profile.URL)
	if err != nil {
		return nil, classify(profile.Name, "dial", err)
	}

	chainID, err := rpc.ChainID(ctx)
	if err != nil {
		rpc.Close()
		return nil, classify(profile.Name, "eth_chainId", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if existing, ok := n.clients[profile.URL]; ok {
		rpc.Close()
		return existing, nil
	}
	client = &evmClient{Client: rpc, chainID: chainID.Uint64()}
	n.clients[profile.URL] = client
	return client, nil
}

func checkChainID(profile *domain.NetworkProfile, live uint64) error {
	if profile.ChainID != 0 && profile.ChainID != live {
		return domain.ConfigError{
			Network: profile.Name,
			Reason:  fmt.Sprintf("configured chain_id %d but endpoint reports %d", profile.ChainID, live),
		}
	}
	return nil
}

func withDeadline(ctx context.Context, deadline time.Duration) (context.Context, context.CancelFunc) {
	if deadline <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, deadline)
}

func classify(network, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.TimeoutError{Network: network, Op: op, Err: err}
	}
	return domain.NetworkError{Network: network, Op: op, Err: err}
}

func isRevert(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert")
}

var _ executor.Network = (*EVM)(nil)
