package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
)

// ProjectFile is the project configuration file that marks the project root.
const ProjectFile = "ignition.toml"

// Built-in networks, available unless ignition.toml overrides them.
const (
	// HardhatNetwork is the in-process simulated chain.
	HardhatNetwork = "hardhat"
	// LocalhostNetwork is a local dev node (anvil / hardhat node).
	LocalhostNetwork = "localhost"

	MemoryURL    = "memory://hardhat"
	LocalhostURL = "http://127.0.0.1:8545"
	DevChainID   = 31337

	// devAccount is the first well-known development account of anvil and
	// hardhat node. It only ever signs on local chains.
	devAccount = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

// projectTOML represents the raw ignition.toml structure
type projectTOML struct {
	Paths    config.PathsConfig              `toml:"paths"`
	Networks map[string]config.NetworkConfig `toml:"networks"`
}

// LoadProjectConfig loads .env files and parses ignition.toml, expanding
// ${VAR} references in network urls and accounts.
func LoadProjectConfig(projectRoot string) (*config.ProjectConfig, error) {
	// Load .env files first for variable expansion
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}

	var raw projectTOML
	projectPath := filepath.Join(projectRoot, ProjectFile)
	if _, err := toml.DecodeFile(projectPath, &raw); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
		}
	}

	cfg := &config.ProjectConfig{
		Paths:    raw.Paths,
		Networks: make(map[string]config.NetworkConfig, len(raw.Networks)+2),
	}
	if cfg.Paths.Artifacts == "" {
		cfg.Paths.Artifacts = "artifacts"
	}
	if cfg.Paths.Modules == "" {
		cfg.Paths.Modules = filepath.Join("ignition", "modules")
	}
	if cfg.Paths.Deployments == "" {
		cfg.Paths.Deployments = filepath.Join("ignition", "deployments")
	}

	cfg.Networks[HardhatNetwork] = config.NetworkConfig{
		URL: MemoryURL, RawURL: MemoryURL, ChainID: DevChainID,
		Accounts: []string{devAccount}, RawAccounts: []string{devAccount},
	}
	cfg.Networks[LocalhostNetwork] = config.NetworkConfig{
		URL: LocalhostURL, RawURL: LocalhostURL, ChainID: DevChainID,
		Accounts: []string{devAccount}, RawAccounts: []string{devAccount},
	}

	for name, network := range raw.Networks {
		network.RawURL = network.URL
		network.URL = os.ExpandEnv(network.URL)
		network.RawAccounts = network.Accounts
		network.Accounts = make([]string, len(network.RawAccounts))
		for i, account := range network.RawAccounts {
			network.Accounts[i] = os.ExpandEnv(account)
		}
		cfg.Networks[name] = network
	}

	return cfg, nil
}
