package render

import (
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// DeployRenderer renders the outcome of deploy runs
type DeployRenderer struct {
	out  io.Writer
	json bool
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer, json bool) *DeployRenderer {
	return &DeployRenderer{out: out, json: json}
}

type deployJSON struct {
	Module   string     `json:"module"`
	Network  string     `json:"network"`
	ChainID  uint64     `json:"chainId,omitempty"`
	DryRun   bool       `json:"dryRun,omitempty"`
	Duration string     `json:"duration"`
	Units    []unitJSON `json:"units"`
	Error    string     `json:"error,omitempty"`
}

type unitJSON struct {
	Node     string `json:"node"`
	Contract string `json:"contract"`
	Address  string `json:"address"`
	TxHash   string `json:"txHash,omitempty"`
	Status   string `json:"status"`
}

// Render renders one section per module
func (r *DeployRenderer) Render(results []*usecase.DeployModuleResult) error {
	if r.json {
		out := make([]deployJSON, len(results))
		for i, result := range results {
			out[i] = toDeployJSON(result)
		}
		return renderJSON(r.out, out)
	}

	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		r.renderModule(result)
	}
	return nil
}

func (r *DeployRenderer) renderModule(result *usecase.DeployModuleResult) {
	header := fmt.Sprintf("%s on %s", nameColor.Sprint(result.Graph.ID()), result.Network.Name)
	if result.DryRun {
		header += faintColor.Sprint(" (dry run)")
	}
	fmt.Fprintln(r.out, header)

	entries := entriesOf(result.Results)
	if len(entries) > 0 {
		t := newTable(table.Row{"node", "contract", "address", "status"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Unit.Node, e.Unit.Contract, addressColor.Sprint(e.Unit.Address.Hex()), title(status(e))})
		}
		fmt.Fprintln(r.out, t.Render())
	}

	if result.Err != nil {
		pending := result.Graph.Len() - len(entries)
		fmt.Fprintln(r.out, FormatError(fmt.Sprintf("stopped with %d of %d contracts not deployed", pending, result.Graph.Len())))
		return
	}

	deployed := len(result.Results.Deployed())
	summary := fmt.Sprintf("%d deployed, %d already deployed in %s",
		deployed, len(entries)-deployed, result.Duration.Round(time.Millisecond))
	fmt.Fprintln(r.out, FormatSuccess(summary))
}

func toDeployJSON(result *usecase.DeployModuleResult) deployJSON {
	out := deployJSON{
		Module:   result.Graph.ID(),
		Network:  result.Network.Name,
		ChainID:  result.Network.ChainID,
		DryRun:   result.DryRun,
		Duration: result.Duration.String(),
		Units:    []unitJSON{},
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	for _, e := range entriesOf(result.Results) {
		unit := unitJSON{
			Node:     e.Unit.Node,
			Contract: e.Unit.Contract,
			Address:  e.Unit.Address.Hex(),
			Status:   status(e),
		}
		if e.Unit.TxHash != (common.Hash{}) {
			unit.TxHash = e.Unit.TxHash.Hex()
		}
		if e.Unit.ChainID != 0 {
			out.ChainID = e.Unit.ChainID
		}
		out.Units = append(out.Units, unit)
	}
	return out
}

func entriesOf(rs *domain.ResultSet) []domain.ResultEntry {
	if rs == nil {
		return nil
	}
	return rs.Entries()
}

func status(e domain.ResultEntry) string {
	if e.Reconciled {
		return "reconciled"
	}
	return "deployed"
}
