package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/avelhorn/linkplan/internal/config"
	"github.com/avelhorn/linkplan/internal/graph"
	"github.com/avelhorn/linkplan/internal/manifest"
)

// CategoryProgress is one declared category's rollup.
type CategoryProgress struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count
}

// ModuleProgress is one module's rollup, reported in verbose mode.
type ModuleProgress struct {
	Module int    `json:"module"`
	Name   string `json:"name"`
	Count
}

// Report is the full progress summary for one resolved target.
type Report struct {
	Target     string             `json:"target"`
	Mode       string             `json:"mode"`
	Overall    Count              `json:"overall"`
	Categories []CategoryProgress `json:"categories"`
	Modules    []ModuleProgress   `json:"modules,omitempty"`
	Artifacts  []ArtifactCheck    `json:"artifacts,omitempty"`
}

// Options configure report generation.
type Options struct {
	// PerModule adds a per-module breakdown.
	PerModule bool

	// Manifest, when non-nil, enables artifact checksum verification
	// against the reference.
	Manifest *manifest.Manifest

	// BuildDir is where produced artifacts are looked up for
	// verification.
	BuildDir string
}

// Build computes the progress report for an assembled graph. Categories
// appear in declaration order, modules in ascending ID.
func Build(cfg *config.Config, g *graph.LinkGraph, opts Options) (*Report, error) {
	report := &Report{
		Target:  string(g.Target),
		Mode:    g.Mode.String(),
		Overall: Overall(g),
	}

	counts := Aggregate(g)
	for _, cat := range cfg.Categories {
		report.Categories = append(report.Categories, CategoryProgress{
			Key:   cat.Key,
			Label: cat.Label,
			Count: counts[cat.Key],
		})
	}

	if opts.PerModule {
		perModule := PerModule(g)
		for _, mod := range g.Modules {
			report.Modules = append(report.Modules, ModuleProgress{
				Module: mod.ID,
				Name:   mod.Name,
				Count:  perModule[mod.ID],
			})
		}
	}

	if opts.Manifest != nil {
		checks, err := CheckArtifacts(g, opts.Manifest, opts.BuildDir)
		if err != nil {
			return nil, err
		}
		report.Artifacts = checks
	}

	return report, nil
}

// Render writes the human-readable progress table.
func (r *Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Category", "Matched", "Total", "Percent"})

	for _, cat := range r.Categories {
		t.AppendRow(table.Row{cat.Label, cat.Matching, cat.Total, fmt.Sprintf("%.2f%%", cat.Percent())})
	}
	t.AppendFooter(table.Row{"All", r.Overall.Matching, r.Overall.Total, fmt.Sprintf("%.2f%%", r.Overall.Percent())})
	t.Render()

	if len(r.Modules) > 0 {
		mt := table.NewWriter()
		mt.SetOutputMirror(w)
		mt.SetStyle(table.StyleLight)
		mt.AppendHeader(table.Row{"Module", "Name", "Matched", "Total"})
		for _, mod := range r.Modules {
			mt.AppendRow(table.Row{mod.Module, mod.Name, mod.Matching, mod.Total})
		}
		mt.Render()
	}

	for _, a := range r.Artifacts {
		fmt.Fprintf(w, "%s: %s\n", a.Name, a.State)
	}
}

// WriteJSON writes the machine-readable report atomically.
func WriteJSON(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling progress report: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp report %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp report to %s: %w", path, err)
	}
	return nil
}
