package buildgraph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avelhorn/linkplan/internal/config"
	"github.com/avelhorn/linkplan/internal/graph"
	"github.com/avelhorn/linkplan/internal/match"
	"github.com/avelhorn/linkplan/internal/registry"
	"github.com/avelhorn/linkplan/internal/tools"
)

func testGraph(t *testing.T, mode match.Mode) *graph.LinkGraph {
	t.Helper()
	cfg := &config.Config{
		Version: 1,
		Libraries: []config.Library{
			{
				Name:    "Runtime",
				Profile: "GC/1.2.5n",
				Objects: []config.Object{
					{Source: "runtime/global_destructor_chain.c", Status: config.StatusNonMatching},
					{Source: "egg/core/eggDisposer.cpp", Status: config.StatusMatching},
				},
			},
		},
	}

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

func testOptions(buildDir string) Options {
	return Options{
		BuildDir: buildDir,
		LDFlags:  []string{"-fp hardware", "-nodefaults"},
		Toolset:  &tools.Toolset{CompilersDir: "/opt/mwcc", WrapperPath: "/usr/bin/wibo"},
	}
}

func TestRenderCompilesEverythingLinksEligible(t *testing.T) {
	g := testGraph(t, match.Strict)
	text, err := Render(g, testOptions("build"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Both objects compile.
	if !strings.Contains(text, "build $builddir/obj/runtime/global_destructor_chain.c.o:") {
		t.Error("non-matching object missing a compile statement")
	}
	if !strings.Contains(text, "build $builddir/obj/egg/core/eggDisposer.cpp.o:") {
		t.Error("matching object missing a compile statement")
	}

	// Only the matching object links in strict mode.
	linkLine := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, ": link ") {
			linkLine = line
		}
	}
	if linkLine == "" {
		t.Fatal("no link statement emitted")
	}
	if strings.Contains(linkLine, "global_destructor_chain") {
		t.Errorf("excluded object linked: %s", linkLine)
	}
	if !strings.Contains(linkLine, "eggDisposer.cpp.o") {
		t.Errorf("eligible object not linked: %s", linkLine)
	}
}

func TestRenderRulesAndFlags(t *testing.T) {
	if tools.IsWindows() {
		t.Skip("wrapper prefix is not used on windows")
	}
	g := testGraph(t, match.Relaxed)
	text, err := Render(g, testOptions("build"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(text, "rule cc_GC_1_2_5n\n") {
		t.Error("missing compile rule for GC/1.2.5n")
	}
	// MKW links with the Wii/0x4201_127 profile.
	if !strings.Contains(text, "/opt/mwcc/Wii/0x4201_127/mwldeppc.exe") {
		t.Error("link rule does not use the target's linker profile")
	}
	if !strings.Contains(text, "/usr/bin/wibo /opt/mwcc/GC/1.2.5n/mwcceppc.exe") {
		t.Error("compile rule does not run through the wrapper")
	}
	if !strings.Contains(text, "-fp hardware -nodefaults") {
		t.Error("link flags missing")
	}
}

func TestRenderDisambiguatesCollidingProfiles(t *testing.T) {
	cfg := &config.Config{
		Version: 1,
		Libraries: []config.Library{
			{
				Name:    "LibDot",
				Profile: "GC/1.2.5n",
				Objects: []config.Object{{Source: "a.c", Status: config.StatusMatching}},
			},
			{
				Name:    "LibUnderscore",
				Profile: "GC/1.2_5n",
				Objects: []config.Object{{Source: "b.c", Status: config.StatusMatching}},
			},
		},
	}

	params, err := registry.Resolve(registry.MKW)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Assemble(cfg, params, match.Strict, graph.Options{})
	if err != nil {
		t.Fatal(err)
	}

	text, err := Render(g, testOptions("build"))
	if err != nil {
		t.Fatal(err)
	}

	// Both profiles flatten to GC_1_2_5n; the second must get its own rule.
	if !strings.Contains(text, "rule cc_GC_1_2_5n\n") {
		t.Error("missing rule for the first profile")
	}
	if !strings.Contains(text, "rule cc_GC_1_2_5n_2\n") {
		t.Error("colliding profile did not get a disambiguated rule")
	}
	if !strings.Contains(text, "build $builddir/obj/a.c.o: cc_GC_1_2_5n a.c\n") {
		t.Error("first profile's object does not use its rule")
	}
	if !strings.Contains(text, "build $builddir/obj/b.c.o: cc_GC_1_2_5n_2 b.c\n") {
		t.Error("colliding profile's object does not use the disambiguated rule")
	}
}

func TestRenderRecordsToolTags(t *testing.T) {
	g := testGraph(t, match.Strict)
	opts := testOptions("build")
	opts.Toolset.Tags = tools.DefaultTags()

	text, err := Render(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "dtk v1.3.0") || !strings.Contains(text, "compilers 20240706") {
		t.Error("pinned tool tags missing from the build graph header")
	}
}

func TestRenderDeterministic(t *testing.T) {
	g := testGraph(t, match.Relaxed)
	opts := testOptions("build")

	first, err := Render(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Render(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("two renders of the same graph differ")
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	g := testGraph(t, match.Strict)

	if err := Write(g, testOptions(dir)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	targetDir := filepath.Join(dir, "RMCP01")
	if _, err := os.Stat(filepath.Join(targetDir, "build.ninja")); err != nil {
		t.Errorf("build.ninja not written: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(targetDir, "objects.json"))
	if err != nil {
		t.Fatalf("objects.json not written: %v", err)
	}

	var m ObjectManifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("objects.json is not valid JSON: %v", err)
	}
	if m.Target != "RMCP01" || m.Mode != "strict" {
		t.Errorf("manifest header = %s/%s", m.Target, m.Mode)
	}
	if len(m.Objects) != 2 {
		t.Fatalf("manifest objects = %d, want 2", len(m.Objects))
	}
	for _, rec := range m.Objects {
		if !rec.Compiled {
			t.Errorf("%s: not marked compiled", rec.Source)
		}
	}
	if m.Objects[0].Linked {
		t.Error("non-matching object marked linked in strict mode")
	}
	if !m.Objects[1].Linked {
		t.Error("matching object not marked linked")
	}
}

func TestObjectManifestStatusStrings(t *testing.T) {
	m := BuildObjectManifest(testGraph(t, match.Strict))
	if m.Objects[0].Status != "non_matching" || m.Objects[0].Resolved != "non_matching" {
		t.Errorf("record = %+v", m.Objects[0])
	}
	if m.Objects[1].Status != "matching" {
		t.Errorf("record = %+v", m.Objects[1])
	}
}
