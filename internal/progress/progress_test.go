package progress

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avelhorn/linkplan/internal/config"
	"github.com/avelhorn/linkplan/internal/graph"
	"github.com/avelhorn/linkplan/internal/manifest"
	"github.com/avelhorn/linkplan/internal/match"
	"github.com/avelhorn/linkplan/internal/registry"
)

func testConfig() *config.Config {
	return &config.Config{
		Version: 1,
		Categories: []config.Category{
			{Key: "sdk", Label: "SDK Code"},
			{Key: "egg", Label: "EGG Library Code"},
		},
		Libraries: []config.Library{
			{
				Name:       "LibA",
				Categories: config.StringList{"sdk"},
				Objects: []config.Object{
					{Source: "a.c", Status: config.StatusMatching},
					{Source: "b.c", Status: config.StatusNonMatching},
				},
			},
			{
				Name:       "EGG",
				Categories: config.StringList{"egg", "sdk"},
				Objects: []config.Object{
					{Source: "egg/core/eggDisposer.cpp", Status: config.StatusMatching},
					{Source: "egg/core/eggThread.cpp", Status: config.StatusEquivalent},
				},
			},
		},
	}
}

func assemble(t *testing.T, cfg *config.Config, mode match.Mode) *graph.LinkGraph {
	t.Helper()
	params, err := registry.Resolve(registry.MKW)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Assemble(cfg, params, mode, graph.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestAggregateSingleCategory(t *testing.T) {
	cfg := &config.Config{
		Version:    1,
		Categories: []config.Category{{Key: "sdk", Label: "SDK Code"}},
		Libraries: []config.Library{
			{
				Name:       "LibA",
				Categories: config.StringList{"sdk"},
				Objects: []config.Object{
					{Source: "a.c", Status: config.StatusMatching},
					{Source: "b.c", Status: config.StatusNonMatching},
				},
			},
		},
	}

	counts := Aggregate(assemble(t, cfg, match.Strict))
	got := counts["sdk"]
	if got.Total != 2 || got.Matching != 1 {
		t.Errorf("sdk = %+v, want {Total:2 Matching:1}", got)
	}
}

func TestAggregateFanOut(t *testing.T) {
	counts := Aggregate(assemble(t, testConfig(), match.Strict))

	// EGG is in both egg and sdk: its objects count toward each.
	if got := counts["egg"]; got.Total != 2 || got.Matching != 1 {
		t.Errorf("egg = %+v, want {Total:2 Matching:1}", got)
	}
	if got := counts["sdk"]; got.Total != 4 || got.Matching != 2 {
		t.Errorf("sdk = %+v, want {Total:4 Matching:2}", got)
	}
}

func TestEquivalentNotCountedAsMatching(t *testing.T) {
	// Relaxed mode links equivalents, but they still do not count as
	// matching in the report.
	counts := Aggregate(assemble(t, testConfig(), match.Relaxed))
	if got := counts["egg"]; got.Matching != 1 {
		t.Errorf("egg matching = %d, want 1 (equivalent must not count)", got.Matching)
	}
}

func TestOverallCountsEachObjectOnce(t *testing.T) {
	overall := Overall(assemble(t, testConfig(), match.Strict))
	if overall.Total != 4 || overall.Matching != 2 {
		t.Errorf("overall = %+v, want {Total:4 Matching:2}", overall)
	}
}

func TestPercent(t *testing.T) {
	if got := (Count{Total: 4, Matching: 1}).Percent(); got != 25 {
		t.Errorf("Percent = %v, want 25", got)
	}
	if got := (Count{}).Percent(); got != 0 {
		t.Errorf("Percent of empty count = %v, want 0", got)
	}
}

func TestBuildReportCategoryOrder(t *testing.T) {
	cfg := testConfig()
	report, err := Build(cfg, assemble(t, cfg, match.Strict), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(report.Categories))
	}
	// Declaration order, not map order.
	if report.Categories[0].Key != "sdk" || report.Categories[1].Key != "egg" {
		t.Errorf("category order = [%s %s], want [sdk egg]",
			report.Categories[0].Key, report.Categories[1].Key)
	}
	if report.Categories[1].Label != "EGG Library Code" {
		t.Errorf("label = %q", report.Categories[1].Label)
	}
}

func TestBuildReportPerModule(t *testing.T) {
	cfg := testConfig()
	report, err := Build(cfg, assemble(t, cfg, match.Strict), Options{PerModule: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Modules) != 1 {
		t.Fatalf("modules = %d, want 1", len(report.Modules))
	}
	if report.Modules[0].Name != "main.dol" || report.Modules[0].Total != 4 {
		t.Errorf("module rollup = %+v", report.Modules[0])
	}
}

func TestCheckArtifacts(t *testing.T) {
	dir := t.TempDir()
	content := []byte("produced binary")
	if err := os.WriteFile(filepath.Join(dir, "main.dol"), content, 0644); err != nil {
		t.Fatal(err)
	}

	okSum, err := manifest.FileSHA1(filepath.Join(dir, "main.dol"))
	if err != nil {
		t.Fatal(err)
	}

	ref := manifest.New()
	ref.Set("main.dol", okSum)

	cfg := testConfig()
	g := assemble(t, cfg, match.Strict)

	checks, err := CheckArtifacts(g, ref, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(checks) != 1 {
		t.Fatalf("checks = %d, want 1", len(checks))
	}
	if checks[0].State != ArtifactOK {
		t.Errorf("state = %s, want ok", checks[0].State)
	}

	// Mismatching reference.
	ref.Set("main.dol", strings.Repeat("0", 40))
	checks, err = CheckArtifacts(g, ref, dir)
	if err != nil {
		t.Fatal(err)
	}
	if checks[0].State != ArtifactMismatch {
		t.Errorf("state = %s, want mismatch", checks[0].State)
	}

	// Artifact not produced yet.
	checks, err = CheckArtifacts(g, ref, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if checks[0].State != ArtifactMissing {
		t.Errorf("state = %s, want missing", checks[0].State)
	}

	// No reference entry at all.
	checks, err = CheckArtifacts(g, manifest.New(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if checks[0].State != ArtifactUnverified {
		t.Errorf("state = %s, want unverified", checks[0].State)
	}
}

func TestRenderAndWriteJSON(t *testing.T) {
	cfg := testConfig()
	report, err := Build(cfg, assemble(t, cfg, match.Strict), Options{PerModule: true})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	report.Render(&buf)
	out := buf.String()
	if !strings.Contains(out, "EGG Library Code") || !strings.Contains(out, "main.dol") {
		t.Errorf("render output missing expected rows:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "progress.json")
	if err := WriteJSON(path, report); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Target != "RMCP01" || decoded.Overall.Total != 4 {
		t.Errorf("decoded report = %+v", decoded)
	}
}
