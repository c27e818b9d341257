package config

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/domain/config"
)

// NetworkRegistry resolves network names to immutable profiles. All
// profiles are built once from the project configuration; a network whose
// setup is invalid keeps its error and reports it on Resolve, so one broken
// entry does not prevent using the others.
type NetworkRegistry struct {
	profiles map[string]*domain.NetworkProfile
	errs     map[string]error
	names    []string
}

// NewNetworkRegistry builds profiles for every configured network.
// defaultDeadline applies to networks without their own deadline.
func NewNetworkRegistry(project *config.ProjectConfig, defaultDeadline time.Duration) *NetworkRegistry {
	r := &NetworkRegistry{
		profiles: make(map[string]*domain.NetworkProfile, len(project.Networks)),
		errs:     make(map[string]error),
	}

	for name, network := range project.Networks {
		profile, err := buildProfile(name, network, defaultDeadline)
		if err != nil {
			r.errs[name] = err
		} else {
			r.profiles[name] = profile
		}
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	return r
}

// ProvideNetworkRegistry builds the registry from the runtime configuration.
func ProvideNetworkRegistry(cfg *config.RuntimeConfig) *NetworkRegistry {
	return NewNetworkRegistry(cfg.Project, cfg.Timeout)
}

// Resolve returns the profile of a named network.
func (r *NetworkRegistry) Resolve(name string) (*domain.NetworkProfile, error) {
	if err, broken := r.errs[name]; broken {
		return nil, err
	}
	profile, ok := r.profiles[name]
	if !ok {
		return nil, domain.ConfigError{
			Network:     name,
			Reason:      fmt.Sprintf("not configured in %s", ProjectFile),
			Suggestions: r.suggest(name),
		}
	}
	return profile, nil
}

// Names returns all configured network names, sorted.
func (r *NetworkRegistry) Names() []string {
	return append([]string(nil), r.names...)
}

// ProbeChainID dials the network and returns the chain id it reports. A
// mismatch with the configured chain id is a ConfigError.
func (r *NetworkRegistry) ProbeChainID(ctx context.Context, name string) (uint64, error) {
	profile, err := r.Resolve(name)
	if err != nil {
		return 0, err
	}
	if IsMemoryURL(profile.URL) {
		return profile.ChainID, nil
	}

	if profile.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, profile.Deadline)
		defer cancel()
	}

	client, err := ethclient.DialContext(ctx, profile.URL)
	if err != nil {
		return 0, domain.NetworkError{Network: name, Op: "dial", Err: err}
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return 0, domain.NetworkError{Network: name, Op: "eth_chainId", Err: err}
	}

	live := chainID.Uint64()
	if profile.ChainID != 0 && profile.ChainID != live {
		return live, domain.ConfigError{
			Network: name,
			Reason:  fmt.Sprintf("configured chain_id %d but endpoint reports %d", profile.ChainID, live),
		}
	}
	return live, nil
}

// IsMemoryURL reports whether url selects the in-process simulated chain.
func IsMemoryURL(url string) bool {
	return strings.HasPrefix(url, domain.MemoryScheme)
}

func (r *NetworkRegistry) suggest(name string) []string {
	matches := fuzzy.Find(name, r.names)
	suggestions := lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

func buildProfile(name string, network config.NetworkConfig, defaultDeadline time.Duration) (*domain.NetworkProfile, error) {
	if network.URL == "" {
		return nil, domain.ConfigError{
			Network: name,
			Reason:  fmt.Sprintf("url is required (e.g. url = \"${%s}\")", GenerateEnvVarName(name)),
		}
	}
	if missing := MissingEnvVars(network.RawURL); len(missing) > 0 {
		return nil, domain.ConfigError{
			Network: name,
			Reason:  fmt.Sprintf("url references unset environment variable %s", strings.Join(missing, ", ")),
		}
	}

	profile := &domain.NetworkProfile{
		Name:     name,
		URL:      network.URL,
		ChainID:  network.ChainID,
		Deadline: defaultDeadline,
	}

	if network.Deadline != "" {
		deadline, err := time.ParseDuration(network.Deadline)
		if err != nil || deadline < 0 {
			return nil, domain.ConfigError{Network: name, Reason: fmt.Sprintf("invalid deadline %q", network.Deadline), Err: err}
		}
		profile.Deadline = deadline
	}

	for i, secret := range network.Accounts {
		if strings.TrimSpace(secret) == "" {
			if network.OptionalAccounts {
				continue
			}
			reason := "account is empty"
			if i < len(network.RawAccounts) {
				if missing := MissingEnvVars(network.RawAccounts[i]); len(missing) > 0 {
					reason = fmt.Sprintf("account references unset environment variable %s", strings.Join(missing, ", "))
				}
			}
			return nil, domain.ConfigError{Network: name, Reason: reason, Err: domain.ErrNoSigner}
		}

		cred, err := domain.ParseCredential(secret)
		if err != nil {
			return nil, domain.ConfigError{Network: name, Reason: "invalid account", Err: err}
		}
		profile.Credentials = append(profile.Credentials, cred)
	}

	if len(profile.Credentials) > 1 {
		return nil, domain.ConfigError{
			Network: name,
			Reason:  fmt.Sprintf("%d accounts configured, only a single signer is supported", len(profile.Credentials)),
		}
	}

	return profile, nil
}
