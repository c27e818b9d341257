package render

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// JournalRenderer renders journal entries
type JournalRenderer struct {
	out  io.Writer
	json bool
}

// NewJournalRenderer creates a new journal renderer
func NewJournalRenderer(out io.Writer, json bool) *JournalRenderer {
	return &JournalRenderer{out: out, json: json}
}

type journalJSON struct {
	Network string                 `json:"network"`
	ChainID uint64                 `json:"chainId"`
	Path    string                 `json:"path"`
	Entries []*domain.JournalEntry `json:"entries"`
}

// Render renders the journal of one chain
func (r *JournalRenderer) Render(result *usecase.ShowJournalResult) error {
	if r.json {
		entries := result.Entries
		if entries == nil {
			entries = []*domain.JournalEntry{}
		}
		return renderJSON(r.out, journalJSON{Network: result.Network, ChainID: result.ChainID, Path: result.Path, Entries: entries})
	}

	fmt.Fprintf(r.out, "%s %s\n", nameColor.Sprintf("%s (chain %d)", result.Network, result.ChainID), faintColor.Sprint(result.Path))

	if len(result.Entries) == 0 {
		fmt.Fprintln(r.out, "No deployments recorded")
		return nil
	}

	t := newTable(table.Row{"node", "contract", "address", "deployed"})
	for _, entry := range result.Entries {
		t.AppendRow(table.Row{
			entry.Identity.Key(),
			entry.Unit.Contract,
			addressColor.Sprint(entry.Unit.Address.Hex()),
			entry.Unit.DeployedAt.Local().Format(time.DateTime),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}
