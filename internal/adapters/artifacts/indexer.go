package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
)

// Indexer discovers compiled contract artifacts under the configured
// artifact directories. Both hardhat (artifacts/<src>/<Name>.json) and forge
// (out/<File>.sol/<Name>.json) layouts are understood.
type Indexer struct {
	roots []string

	mu      sync.RWMutex
	indexed bool
	paths   map[string][]string // contract name -> artifact paths
	loaded  map[string]*domain.Artifact
}

// NewIndexer creates an indexer rooted at the project's artifact directory
// and, when present, forge's out directory.
func NewIndexer(cfg *config.RuntimeConfig) *Indexer {
	roots := []string{filepath.Join(cfg.ProjectRoot, cfg.Project.Paths.Artifacts)}
	if out := filepath.Join(cfg.ProjectRoot, "out"); out != roots[0] {
		roots = append(roots, out)
	}
	return NewIndexerAt(roots...)
}

// NewIndexerAt creates an indexer over explicit directories.
func NewIndexerAt(roots ...string) *Indexer {
	return &Indexer{
		roots:  roots,
		paths:  make(map[string][]string),
		loaded: make(map[string]*domain.Artifact),
	}
}

// Index walks the artifact directories. Missing directories are skipped.
func (i *Indexer) Index() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index()
}

func (i *Indexer) index() error {
	i.paths = make(map[string][]string)
	i.loaded = make(map[string]*domain.Artifact)

	for _, root := range i.roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
				return nil
			}

			name := strings.TrimSuffix(d.Name(), ".json")
			i.paths[name] = append(i.paths[name], path)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to index artifacts in %s: %w", root, err)
		}
	}

	i.indexed = true
	return nil
}

// Get returns the artifact for a contract name. A name that matches more
// than one artifact must be qualified as "Source.sol:Name".
func (i *Indexer) Get(name string) (*domain.Artifact, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.indexed {
		if err := i.index(); err != nil {
			return nil, err
		}
	}
	if artifact, ok := i.loaded[name]; ok {
		return artifact, nil
	}

	source, contract := splitQualified(name)
	candidates := i.paths[contract]
	if source != "" {
		var filtered []string
		for _, path := range candidates {
			if strings.Contains(filepath.ToSlash(path), "/"+source+"/") {
				filtered = append(filtered, path)
			}
		}
		candidates = filtered
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("artifact for contract '%s': %w", name, domain.ErrNotFound)
	case 1:
	default:
		sorted := append([]string(nil), candidates...)
		sort.Strings(sorted)
		return nil, fmt.Errorf("contract name '%s' is ambiguous, qualify it as <Source.sol>:%s (found %s)",
			name, contract, strings.Join(sorted, ", "))
	}

	artifact, err := parseArtifact(candidates[0])
	if err != nil {
		return nil, err
	}
	if artifact.Name == "" {
		artifact.Name = contract
	}
	i.loaded[name] = artifact
	return artifact, nil
}

// Names returns every indexed contract name, sorted.
func (i *Indexer) Names() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	names := make([]string, 0, len(i.paths))
	for name := range i.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func splitQualified(name string) (source, contract string) {
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}

// artifactJSON covers both layouts: hardhat stores bytecode as a hex
// string, forge as {"object": "0x..."}.
type artifactJSON struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

func parseArtifact(path string) (*domain.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	if len(raw.ABI) == 0 {
		return nil, fmt.Errorf("artifact %s has no abi", path)
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi of %s: %w", path, err)
	}

	code, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("artifact %s has no creation bytecode (abstract contract or interface?)", path)
	}

	return &domain.Artifact{
		Name:       raw.ContractName,
		SourceName: raw.SourceName,
		Path:       path,
		ABI:        &parsed,
		Bytecode:   code,
	}, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var hexCode string
	if err := json.Unmarshal(raw, &hexCode); err != nil {
		var forge struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &forge); err != nil {
			return nil, fmt.Errorf("unrecognised bytecode format")
		}
		hexCode = forge.Object
	}

	// Unlinked library placeholders are not valid hex.
	if strings.Contains(hexCode, "__$") {
		return nil, fmt.Errorf("bytecode has unlinked libraries")
	}
	return common.FromHex(hexCode), nil
}
