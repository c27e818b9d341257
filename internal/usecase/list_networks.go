package usecase

import (
	"context"
	"net/url"
	"strings"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	// Probe asks every endpoint for its chain id
	Probe bool
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name      string
	URL       string
	ChainID   uint64
	Signer    string
	InProcess bool
	Probed    bool
	Error     error
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	networks NetworkRegistry
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(networks NetworkRegistry) *ListNetworks {
	return &ListNetworks{
		networks: networks,
	}
}

// Run executes the use case. A network that fails to resolve or probe is
// reported with its error rather than failing the whole listing.
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	names := uc.networks.Names()

	networks := make([]NetworkStatus, 0, len(names))
	for _, name := range names {
		status := NetworkStatus{Name: name}

		profile, err := uc.networks.Resolve(name)
		if err != nil {
			status.Error = err
			networks = append(networks, status)
			continue
		}

		status.URL = redactURL(profile.URL)
		status.ChainID = profile.ChainID
		status.InProcess = profile.InProcess()
		if signer, ok := profile.Signer(); ok {
			status.Signer = signer.String()
		}

		if params.Probe {
			chainID, err := uc.networks.ProbeChainID(ctx, name)
			if err != nil {
				status.Error = err
			} else {
				status.ChainID = chainID
				status.Probed = true
			}
		}

		networks = append(networks, status)
	}

	return &ListNetworksResult{
		Networks: networks,
	}, nil
}

// redactURL hides credentials embedded in RPC URLs, which commonly carry an
// API key in the userinfo, the last path segment or the query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	var b strings.Builder
	b.WriteString(u.Scheme + "://")
	if u.User != nil {
		b.WriteString("***@")
	}
	b.WriteString(u.Host)

	if path := u.EscapedPath(); path != "" {
		idx := strings.LastIndex(path, "/")
		if len(path)-idx-1 >= 16 {
			path = path[:idx+1] + "***"
		}
		b.WriteString(path)
	}
	if u.RawQuery != "" {
		b.WriteString("?***")
	}
	return b.String()
}
