package config

// ProjectConfig is the parsed ignition.toml after env expansion.
type ProjectConfig struct {
	Paths    PathsConfig
	Networks map[string]NetworkConfig
}

// PathsConfig locates project inputs and outputs, relative to the project root.
type PathsConfig struct {
	Artifacts   string `toml:"artifacts"`
	Modules     string `toml:"modules"`
	Deployments string `toml:"deployments"`
}

// NetworkConfig is one [networks.<name>] table.
type NetworkConfig struct {
	URL              string   `toml:"url"`
	ChainID          uint64   `toml:"chain_id"`
	Accounts         []string `toml:"accounts"`
	OptionalAccounts bool     `toml:"optional_accounts"`
	Deadline         string   `toml:"deadline"`

	// RawURL and RawAccounts keep the values before ${VAR} expansion so
	// errors can name the variable that was missing.
	RawURL      string   `toml:"-"`
	RawAccounts []string `toml:"-"`
}
