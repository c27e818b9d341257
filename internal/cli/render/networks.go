package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out  io.Writer
	json bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, json bool) *NetworksRenderer {
	return &NetworksRenderer{
		out:  out,
		json: json,
	}
}

type networkJSON struct {
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	ChainID   uint64 `json:"chainId,omitempty"`
	Signer    string `json:"signer,omitempty"`
	InProcess bool   `json:"inProcess,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Render renders the list of networks
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if r.json {
		out := make([]networkJSON, len(result.Networks))
		for i, n := range result.Networks {
			out[i] = networkJSON{Name: n.Name, URL: n.URL, ChainID: n.ChainID, Signer: n.Signer, InProcess: n.InProcess}
			if n.Error != nil {
				out[i].Error = n.Error.Error()
			}
		}
		return renderJSON(r.out, out)
	}

	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := newTable(table.Row{"network", "chain id", "url", "signer"})
	var failures []usecase.NetworkStatus
	for _, network := range result.Networks {
		if network.Error != nil {
			failures = append(failures, network)
			t.AppendRow(table.Row{"❌ " + network.Name, "-", "-", "-"})
			continue
		}

		chainID := "-"
		if network.ChainID != 0 {
			chainID = fmt.Sprintf("%d", network.ChainID)
			if network.Probed {
				chainID += " ✓"
			}
		}
		signer := network.Signer
		if signer == "" {
			signer = faintColor.Sprint("none")
		}
		url := network.URL
		if network.InProcess {
			url = faintColor.Sprint("in-process")
		}
		t.AppendRow(table.Row{"✅ " + nameColor.Sprint(network.Name), chainID, url, signer})
	}
	fmt.Fprintln(r.out, t.Render())

	if len(failures) > 0 {
		fmt.Fprintln(r.out)
		for _, network := range failures {
			fmt.Fprintf(r.out, "  %s: %v\n", network.Name, network.Error)
		}
	}

	return nil
}
