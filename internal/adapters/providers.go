package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/treb-ignition/internal/adapters/artifacts"
	"github.com/trebuchet-org/treb-ignition/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-ignition/internal/adapters/journal"
	"github.com/trebuchet-org/treb-ignition/internal/adapters/module"
	"github.com/trebuchet-org/treb-ignition/internal/adapters/network"
	"github.com/trebuchet-org/treb-ignition/internal/config"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	artifacts.NewIndexer,
	wire.Bind(new(network.ArtifactSource), new(*artifacts.Indexer)),

	journal.NewStore,
	wire.Bind(new(network.Journal), new(*journal.Store)),
	wire.Bind(new(usecase.DeploymentJournal), new(*journal.Store)),

	module.NewLoader,
	wire.Bind(new(usecase.ModuleLoader), new(*module.Loader)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.NetworkSelector), new(*interactive.SelectorAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkRegistry,
	wire.Bind(new(usecase.NetworkRegistry), new(*config.NetworkRegistry)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	InteractiveSet,
	ConfigSet,
	network.NetworkSet,
)
