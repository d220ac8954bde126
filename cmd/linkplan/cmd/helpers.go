package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/avelhorn/linkplan/internal/registry"
	"github.com/avelhorn/linkplan/pkg/linkplan"
)

// newClient builds a client from the global flags. Target validation
// happens here, before any resolution begins.
func newClient() (*linkplan.Client, error) {
	return linkplan.New(linkplan.Options{
		ConfigPath:   configPath,
		Target:       targetCode,
		NonMatching:  nonMatching,
		Debug:        debug,
		MapFile:      mapFile,
		BuildDir:     buildDir,
		CompilersDir: compilersDir,
		WrapperPath:  wrapperPath,
	})
}

// defaultManifestPath is where a target's reference checksums live.
func defaultManifestPath(target registry.Target) string {
	return filepath.Join("config", string(target), "build.sha1")
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
