package cmd

import (
	"path/filepath"
	"testing"

	"github.com/avelhorn/linkplan/internal/registry"
)

func TestDefaultManifestPath(t *testing.T) {
	got := defaultManifestPath(registry.MKW)
	want := filepath.Join("config", "RMCP01", "build.sha1")
	if got != want {
		t.Errorf("defaultManifestPath = %q, want %q", got, want)
	}
}

func TestRootHasSubcommands(t *testing.T) {
	for _, name := range []string{"configure", "progress", "targets", "version"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
