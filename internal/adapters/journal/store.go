package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

const JournalFile = "journal.json"

type journalFile struct {
	ChainID uint64                          `json:"chainId"`
	Entries map[string]*domain.JournalEntry `json:"entries"`
}

// Store keeps one journal per chain under
// <deployments>/chain-<id>/journal.json.
type Store struct {
	rootDir string

	mu     sync.Mutex
	chains map[uint64]*journalFile
}

// NewStore creates a store under the project's deployments directory.
func NewStore(cfg *config.RuntimeConfig) *Store {
	return NewStoreAt(filepath.Join(cfg.ProjectRoot, cfg.Project.Paths.Deployments))
}

// NewStoreAt creates a store rooted at dir.
func NewStoreAt(dir string) *Store {
	return &Store{
		rootDir: dir,
		chains:  make(map[uint64]*journalFile),
	}
}

// Path returns the journal file of a chain.
func (s *Store) Path(chainID uint64) string {
	return filepath.Join(s.rootDir, fmt.Sprintf("chain-%d", chainID), JournalFile)
}

// Get returns the entry recorded for key ("Graph#Node"), or nil.
func (s *Store) Get(_ context.Context, chainID uint64, key string) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(chainID)
	if err != nil {
		return nil, err
	}
	entry, ok := journal.Entries[key]
	if !ok {
		return nil, nil
	}
	return copyEntry(entry), nil
}

// Record stores a deployed unit under its node identity and persists the
// journal.
func (s *Store) Record(_ context.Context, chainID uint64, id domain.NodeIdentity, unit *domain.DeployedUnit) error {
	if unit == nil {
		return fmt.Errorf("cannot record nil unit for %s", id.Key())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(chainID)
	if err != nil {
		return err
	}

	stored := *unit
	journal.Entries[id.Key()] = &domain.JournalEntry{Identity: id, Unit: &stored}

	if err := s.save(chainID, journal); err != nil {
		delete(journal.Entries, id.Key())
		return err
	}
	return nil
}

// List returns every entry of a chain, ordered by deployment time then key.
func (s *Store) List(_ context.Context, chainID uint64) ([]*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(chainID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.JournalEntry, 0, len(journal.Entries))
	for _, entry := range journal.Entries {
		entries = append(entries, copyEntry(entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Unit.DeployedAt.Equal(b.Unit.DeployedAt) {
			return a.Unit.DeployedAt.Before(b.Unit.DeployedAt)
		}
		return a.Identity.Key() < b.Identity.Key()
	})
	return entries, nil
}

// Chains returns the chain ids that have a journal on disk, sorted.
func (s *Store) Chains() ([]uint64, error) {
	dirs, err := os.ReadDir(s.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read deployments directory: %w", err)
	}

	var ids []uint64
	for _, dir := range dirs {
		var id uint64
		if !dir.IsDir() {
			continue
		}
		if _, err := fmt.Sscanf(dir.Name(), "chain-%d", &id); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.rootDir, dir.Name(), JournalFile)); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// load returns the cached journal of a chain, reading it from disk on first
// use. Callers hold s.mu.
func (s *Store) load(chainID uint64) (*journalFile, error) {
	if journal, ok := s.chains[chainID]; ok {
		return journal, nil
	}

	journal := &journalFile{ChainID: chainID, Entries: make(map[string]*domain.JournalEntry)}

	data, err := os.ReadFile(s.Path(chainID))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read journal: %w", err)
	default:
		if err := json.Unmarshal(data, journal); err != nil {
			return nil, fmt.Errorf("failed to parse journal %s: %w", s.Path(chainID), err)
		}
		if journal.Entries == nil {
			journal.Entries = make(map[string]*domain.JournalEntry)
		}
		for key, entry := range journal.Entries {
			if entry == nil || entry.Unit == nil {
				delete(journal.Entries, key)
			}
		}
	}

	s.chains[chainID] = journal
	return journal, nil
}

func (s *Store) save(chainID uint64, journal *journalFile) error {
	path := s.Path(chainID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	data, err := json.MarshalIndent(journal, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	// Write to temp file first
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

func copyEntry(entry *domain.JournalEntry) *domain.JournalEntry {
	unit := *entry.Unit
	return &domain.JournalEntry{Identity: entry.Identity, Unit: &unit}
}

var _ usecase.DeploymentJournal = (*Store)(nil)
