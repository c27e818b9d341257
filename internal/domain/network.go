package domain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// NetworkProfile is the resolved connection setup for one named network.
// Profiles are created once at startup and never mutated.
type NetworkProfile struct {
	Name        string
	URL         string
	ChainID     uint64 // 0 when not configured
	Credentials []Credential
	Deadline    time.Duration // per-operation, 0 means none
}

// Signer returns the single deployment credential, if any.
func (p *NetworkProfile) Signer() (Credential, bool) {
	if p == nil || len(p.Credentials) == 0 {
		return Credential{}, false
	}
	return p.Credentials[0], true
}

// RequireSigner fails with a ConfigError when the profile cannot sign.
func (p *NetworkProfile) RequireSigner() error {
	if _, ok := p.Signer(); !ok {
		return ConfigError{
			Network: p.Name,
			Reason:  "state-changing deployment requires an account",
			Err:     ErrNoSigner,
		}
	}
	return nil
}

// Identity is the key used to tell networks apart in caches and journals.
func (p *NetworkProfile) Identity() string {
	if p.ChainID != 0 {
		return fmt.Sprintf("%s@%d", p.Name, p.ChainID)
	}
	return p.Name
}

// Credential is a signer secret together with its derived address.
type Credential struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// ParseCredential parses a hex encoded secp256k1 private key, with or
// without 0x prefix.
func ParseCredential(secret string) (Credential, error) {
	secret = strings.TrimPrefix(strings.TrimSpace(secret), "0x")
	if secret == "" {
		return Credential{}, ErrNoSigner
	}
	key, err := crypto.HexToECDSA(secret)
	if err != nil {
		return Credential{}, fmt.Errorf("invalid private key: %w", err)
	}
	return Credential{
		PrivateKey: key,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// String never includes the key material.
func (c Credential) String() string {
	return c.Address.Hex()
}

// MemoryScheme prefixes URLs served by the in-process simulated chain.
const MemoryScheme = "memory://"

// InProcess reports whether the profile targets the simulated chain.
func (p *NetworkProfile) InProcess() bool {
	return strings.HasPrefix(p.URL, MemoryScheme)
}
