package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// PlanRenderer renders module execution plans
type PlanRenderer struct {
	out  io.Writer
	json bool
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer, json bool) *PlanRenderer {
	return &PlanRenderer{out: out, json: json}
}

type planJSON struct {
	Module   string     `json:"module"`
	Path     string     `json:"path"`
	Identity string     `json:"identity"`
	Steps    []stepJSON `json:"steps"`
}

type stepJSON struct {
	Name         string   `json:"name"`
	Contract     string   `json:"contract"`
	Args         []string `json:"args"`
	Dependencies []string `json:"dependencies"`
	Fingerprint  string   `json:"fingerprint"`
}

// Render renders the plan
func (r *PlanRenderer) Render(result *usecase.PlanModuleResult) error {
	if r.json {
		out := planJSON{Module: result.Module, Path: result.Path, Identity: result.Identity, Steps: []stepJSON{}}
		for _, step := range result.Steps {
			out.Steps = append(out.Steps, stepJSON{
				Name:         step.Name,
				Contract:     step.Contract,
				Args:         nonNil(step.Args),
				Dependencies: nonNil(step.Dependencies),
				Fingerprint:  step.Fingerprint,
			})
		}
		return renderJSON(r.out, out)
	}

	fmt.Fprintf(r.out, "%s %s\n", nameColor.Sprint(result.Module), faintColor.Sprintf("(%s)", result.Path))

	if len(result.Steps) == 0 {
		fmt.Fprintln(r.out, "No contracts declared")
		return nil
	}

	t := newTable(table.Row{"#", "node", "contract", "args", "after"})
	for _, step := range result.Steps {
		after := "-"
		if len(step.Dependencies) > 0 {
			after = strings.Join(step.Dependencies, ", ")
		}
		t.AppendRow(table.Row{step.Index, step.Name, step.Contract, "(" + strings.Join(step.Args, ", ") + ")", after})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
