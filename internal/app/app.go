package app

import (
	"log/slog"

	"github.com/trebuchet-org/treb-ignition/internal/adapters/network"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Logger *slog.Logger

	// Use cases
	DeployModule *usecase.DeployModule
	PlanModule   *usecase.PlanModule
	ListNetworks *usecase.ListNetworks
	ShowJournal  *usecase.ShowJournal

	// Adapters holding connections
	Network *network.Router
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	logger *slog.Logger,
	deployModule *usecase.DeployModule,
	planModule *usecase.PlanModule,
	listNetworks *usecase.ListNetworks,
	showJournal *usecase.ShowJournal,
	router *network.Router,
) (*App, error) {
	return &App{
		Config:       cfg,
		Logger:       logger,
		DeployModule: deployModule,
		PlanModule:   planModule,
		ListNetworks: listNetworks,
		ShowJournal:  showJournal,
		Network:      router,
	}, nil
}

// Close releases network connections held by the app
func (a *App) Close() {
	if a.Network != nil {
		a.Network.Close()
	}
}
