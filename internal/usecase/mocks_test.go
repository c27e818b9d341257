package usecase_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/graph"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// MockNetworkRegistry is a mock implementation of NetworkRegistry
type MockNetworkRegistry struct {
	mock.Mock
}

func (m *MockNetworkRegistry) Resolve(name string) (*domain.NetworkProfile, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NetworkProfile), args.Error(1)
}

func (m *MockNetworkRegistry) Names() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockNetworkRegistry) ProbeChainID(ctx context.Context, name string) (uint64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(uint64), args.Error(1)
}

// MockModuleLoader is a mock implementation of ModuleLoader
type MockModuleLoader struct {
	mock.Mock
}

func (m *MockModuleLoader) Resolve(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func (m *MockModuleLoader) Load(name string) (*graph.Graph, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.Graph), args.Error(1)
}

func (m *MockModuleLoader) List() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockGraphExecutor is a mock implementation of GraphExecutor
type MockGraphExecutor struct {
	mock.Mock
}

func (m *MockGraphExecutor) Execute(ctx context.Context, g *graph.Graph, profile *domain.NetworkProfile) (*domain.ResultSet, error) {
	args := m.Called(ctx, g, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResultSet), args.Error(1)
}

// MockDeploymentJournal is a mock implementation of DeploymentJournal
type MockDeploymentJournal struct {
	mock.Mock
}

func (m *MockDeploymentJournal) List(ctx context.Context, chainID uint64) ([]*domain.JournalEntry, error) {
	args := m.Called(ctx, chainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JournalEntry), args.Error(1)
}

func (m *MockDeploymentJournal) Path(chainID uint64) string {
	args := m.Called(chainID)
	return args.String(0)
}

// MockNetworkSelector is a mock implementation of NetworkSelector
type MockNetworkSelector struct {
	mock.Mock
}

func (m *MockNetworkSelector) SelectNetwork(ctx context.Context, names []string) (string, error) {
	args := m.Called(ctx, names)
	return args.String(0), args.Error(1)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
	infos  []string
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, message)
}

func (m *MockProgressSink) Error(string) {}

func (m *MockProgressSink) stages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	stages := make([]string, len(m.events))
	for i, e := range m.events {
		stages[i] = e.Stage
	}
	return stages
}
