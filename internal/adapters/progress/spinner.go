package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
)

// SpinnerProgressReporter shows a spinner while a node is being deployed
// and prints one line per finished node.
type SpinnerProgressReporter struct {
	out       io.Writer
	spinner   *spinner.Spinner
	nodeStart time.Time
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter
func NewSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	if out == nil {
		out = os.Stderr
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = out
	s.HideCursor = false
	_ = s.Color("cyan", "bold")

	return &SpinnerProgressReporter{
		out:     out,
		spinner: s,
	}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event domain.ProgressEvent) {
	step := fmt.Sprintf("[%d/%d]", event.Current, event.Total)

	switch event.Stage {
	case domain.StageNodeDeploying:
		r.nodeStart = time.Now()
		r.spinner.Suffix = fmt.Sprintf(" %s Deploying %s", step, event.Message)
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		return

	case domain.StageNodeDeployed:
		r.stop()
		address := ""
		if unit, ok := event.Metadata.(*domain.DeployedUnit); ok {
			address = unit.Address.Hex()
		}
		fmt.Fprintf(r.out, "%s %s %s %s %s\n",
			color.GreenString("✓"), step, event.Message,
			color.New(color.Faint).Sprint(address),
			color.New(color.Faint).Sprintf("(%s)", time.Since(r.nodeStart).Round(time.Millisecond)))

	case domain.StageNodeReconciled:
		r.stop()
		address := ""
		if unit, ok := event.Metadata.(*domain.DeployedUnit); ok {
			address = unit.Address.Hex()
		}
		fmt.Fprintf(r.out, "%s %s %s %s %s\n",
			color.CyanString("↺"), step, event.Message,
			color.New(color.Faint).Sprint(address),
			color.New(color.Faint).Sprint("(already deployed)"))

	case domain.StageNodeFailed:
		r.stop()
		fmt.Fprintf(r.out, "%s %s %s\n", color.RedString("✗"), step, event.Message)

	default:
		if event.Spinner {
			r.spinner.Suffix = " " + event.Message
			if !r.spinner.Active() {
				r.spinner.Start()
			}
		} else {
			r.stop()
		}
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.withSpinnerPaused(func() {
		color.New(color.FgCyan).Fprintln(r.out, message)
	})
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.withSpinnerPaused(func() {
		color.New(color.FgRed).Fprintln(r.out, message)
	})
}

func (r *SpinnerProgressReporter) stop() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

func (r *SpinnerProgressReporter) withSpinnerPaused(fn func()) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	fn()
	if wasActive {
		r.spinner.Start()
	}
}

// Ensure SpinnerProgressReporter implements ProgressSink
var _ domain.ProgressSink = (*SpinnerProgressReporter)(nil)
