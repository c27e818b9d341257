package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/trebuchet-org/treb-ignition/internal/domain"
)

// LineProgress prints plain lines, for non-interactive sessions and CI logs.
type LineProgress struct {
	out io.Writer
}

// NewLineProgress creates a plain line progress reporter
func NewLineProgress(out io.Writer) *LineProgress {
	return &LineProgress{out: out}
}

// OnProgress prints one line per node outcome
func (p *LineProgress) OnProgress(ctx context.Context, event domain.ProgressEvent) {
	step := fmt.Sprintf("[%d/%d]", event.Current, event.Total)

	switch event.Stage {
	case domain.StageNodeDeploying:
		fmt.Fprintf(p.out, "%s deploying %s\n", step, event.Message)
	case domain.StageNodeDeployed, domain.StageNodeReconciled:
		verb := "deployed"
		if event.Stage == domain.StageNodeReconciled {
			verb = "already deployed"
		}
		if unit, ok := event.Metadata.(*domain.DeployedUnit); ok {
			fmt.Fprintf(p.out, "%s %s %s at %s\n", step, event.Message, verb, unit.Address.Hex())
		} else {
			fmt.Fprintf(p.out, "%s %s %s\n", step, event.Message, verb)
		}
	case domain.StageNodeFailed:
		fmt.Fprintf(p.out, "%s %s failed\n", step, event.Message)
	}
}

// Info prints an info message
func (p *LineProgress) Info(message string) {
	fmt.Fprintln(p.out, message)
}

// Error prints an error message
func (p *LineProgress) Error(message string) {
	fmt.Fprintln(p.out, "Error: "+message)
}

// Ensure LineProgress implements ProgressSink
var _ domain.ProgressSink = (*LineProgress)(nil)
