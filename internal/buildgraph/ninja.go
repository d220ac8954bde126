// Package buildgraph translates an assembled link graph into an
// executable build description: a Ninja file with compile rules per
// object and a link rule per module, plus an object manifest recording
// which objects are compiled, linked, or excluded.
//
// Every declared object compiles (excluded objects still feed static
// analysis and diffing) but only link-eligible objects appear in a
// module's link statement, in exactly the assembler's order.
package buildgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avelhorn/linkplan/internal/graph"
	"github.com/avelhorn/linkplan/internal/tools"
)

// Options configure build graph generation.
type Options struct {
	// BuildDir is the root output directory; per-target files land in
	// <BuildDir>/<target>/.
	BuildDir string

	// LDFlags are passed to every module link, including any map-file or
	// debug-info additions.
	LDFlags []string

	Toolset *tools.Toolset
}

// Render produces the Ninja build description for an assembled graph.
func Render(g *graph.LinkGraph, opts Options) (string, error) {
	var b strings.Builder

	targetDir := filepath.ToSlash(filepath.Join(opts.BuildDir, string(g.Target)))
	fmt.Fprintf(&b, "# build graph for %s (%s mode)\n", g.Target, g.Mode)
	if tags := opts.Toolset.Tags; tags != (tools.Tags{}) {
		fmt.Fprintf(&b, "# tools: compilers %s binutils %s dtk %s objdiff %s sjiswrap %s wibo %s\n",
			tags.Compilers, tags.Binutils, tags.Dtk, tags.Objdiff, tags.Sjiswrap, tags.Wibo)
	}
	fmt.Fprintf(&b, "builddir = %s\n\n", escape(targetDir))

	// One compile rule per compiler profile, in first-use order.
	var profiles []string
	seen := make(map[string]bool)
	for _, obj := range g.Objects {
		if !seen[obj.Profile] {
			seen[obj.Profile] = true
			profiles = append(profiles, obj.Profile)
		}
	}
	linkProfile := g.Params.LinkerProfile
	if !seen[linkProfile] {
		profiles = append(profiles, linkProfile)
	}

	// Flattening profiles to Ninja identifiers can collide; suffix later
	// claimants with a first-use index.
	names := make(map[string]string, len(profiles))
	used := make(map[string]bool, len(profiles))
	for _, profile := range profiles {
		name := ruleName(profile)
		for i := 2; used[name]; i++ {
			name = fmt.Sprintf("%s_%d", ruleName(profile), i)
		}
		used[name] = true
		names[profile] = name
	}

	for _, profile := range profiles {
		cc, err := opts.Toolset.CompilerCommand(profile)
		if err != nil {
			return "", fmt.Errorf("profile %s: %w", profile, err)
		}
		fmt.Fprintf(&b, "rule cc_%s\n", names[profile])
		fmt.Fprintf(&b, "  command = %s $cflags -c $in -o $out\n", strings.Join(cc, " "))
		fmt.Fprintf(&b, "  description = CC $out\n\n")
	}

	ld, err := opts.Toolset.LinkerCommand(linkProfile)
	if err != nil {
		return "", fmt.Errorf("linker profile %s: %w", linkProfile, err)
	}
	fmt.Fprintf(&b, "rule link\n")
	fmt.Fprintf(&b, "  command = %s %s -o $out $in\n", strings.Join(ld, " "), strings.Join(opts.LDFlags, " "))
	fmt.Fprintf(&b, "  description = LINK $out\n\n")

	// Compile statements, declaration order.
	for _, obj := range g.Objects {
		fmt.Fprintf(&b, "build $builddir/obj/%s.o: cc_%s %s\n",
			escape(obj.Source), names[obj.Profile], escape(obj.Source))
		fmt.Fprintf(&b, "  cflags = %s\n", strings.Join(obj.Flags, " "))
	}
	b.WriteString("\n")

	// Link statements, ascending module ID, assembler order preserved.
	for _, mod := range g.Modules {
		inputs := make([]string, len(mod.Order))
		for i, source := range mod.Order {
			inputs[i] = "$builddir/obj/" + escape(source) + ".o"
		}
		fmt.Fprintf(&b, "build $builddir/%s: link %s\n", escape(mod.Name), strings.Join(inputs, " "))
	}

	return b.String(), nil
}

// Write renders the Ninja file and the object manifest into the target's
// build directory.
func Write(g *graph.LinkGraph, opts Options) error {
	text, err := Render(g, opts)
	if err != nil {
		return err
	}

	targetDir := filepath.Join(opts.BuildDir, string(g.Target))
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("creating build directory %s: %w", targetDir, err)
	}

	if err := writeAtomic(filepath.Join(targetDir, "build.ninja"), []byte(text)); err != nil {
		return err
	}
	return writeObjectManifest(filepath.Join(targetDir, "objects.json"), g)
}

// ruleName flattens a compiler profile into a Ninja identifier.
func ruleName(profile string) string {
	r := strings.NewReplacer("/", "_", ".", "_", " ", "_")
	return r.Replace(profile)
}

// escape quotes the characters Ninja treats specially in paths.
func escape(s string) string {
	r := strings.NewReplacer("$", "$$", " ", "$ ", ":", "$:")
	return r.Replace(s)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}
