// Package tools locates the external toolchain: per-profile compiler
// binaries, the Windows-binary wrapper on non-Windows hosts, and the
// pinned tool versions downloaded into the content-addressed cache.
package tools

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Tags pin the external tool versions a build uses.
type Tags struct {
	Binutils  string
	Compilers string
	Dtk       string
	Objdiff   string
	Sjiswrap  string
	Wibo      string
}

// DefaultTags returns the pinned tool versions.
func DefaultTags() Tags {
	return Tags{
		Binutils:  "2.42-1",
		Compilers: "20240706",
		Dtk:       "v1.3.0",
		Objdiff:   "v2.4.0",
		Sjiswrap:  "v1.2.0",
		Wibo:      "0.6.11",
	}
}

// Toolset resolves compiler profiles to executable invocations.
type Toolset struct {
	// CompilersDir holds one subdirectory per Metrowerks version, e.g.
	// <CompilersDir>/GC/1.2.5n/mwcceppc.exe.
	CompilersDir string

	// WrapperPath is the wibo or wine binary used to run the Windows
	// compiler executables on non-Windows hosts. Ignored on Windows.
	WrapperPath string

	Tags Tags
}

// IsWindows reports whether the host runs the compiler binaries natively.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// CompilerDir returns the directory holding a profile's binaries.
func (ts *Toolset) CompilerDir(profile string) (string, error) {
	if ts.CompilersDir == "" {
		return "", fmt.Errorf("compilers directory is not configured")
	}
	if profile == "" {
		return "", fmt.Errorf("empty compiler profile")
	}
	return filepath.Join(ts.CompilersDir, filepath.FromSlash(profile)), nil
}

// CompilerCommand returns the argv prefix for invoking a profile's C/C++
// compiler, including the wrapper on non-Windows hosts.
func (ts *Toolset) CompilerCommand(profile string) ([]string, error) {
	return ts.command(profile, "mwcceppc.exe")
}

// LinkerCommand returns the argv prefix for invoking a profile's linker.
func (ts *Toolset) LinkerCommand(profile string) ([]string, error) {
	return ts.command(profile, "mwldeppc.exe")
}

func (ts *Toolset) command(profile, exe string) ([]string, error) {
	dir, err := ts.CompilerDir(profile)
	if err != nil {
		return nil, err
	}
	bin := filepath.Join(dir, exe)

	if IsWindows() || ts.WrapperPath == "" {
		return []string{bin}, nil
	}
	return []string{ts.WrapperPath, bin}, nil
}
