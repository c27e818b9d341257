//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-ignition/internal/adapters"
	"github.com/trebuchet-org/treb-ignition/internal/config"
	"github.com/trebuchet-org/treb-ignition/internal/executor"
	"github.com/trebuchet-org/treb-ignition/internal/fixture"
	"github.com/trebuchet-org/treb-ignition/internal/logging"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Execution
		executor.ExecutorSet,
		wire.Bind(new(usecase.GraphExecutor), new(*executor.Executor)),
		fixture.NewCache,

		// Use cases
		usecase.NewDeployModule,
		usecase.NewPlanModule,
		usecase.NewListNetworks,
		usecase.NewShowJournal,

		// App
		NewApp,
	)
	return nil, nil
}
