// Package linkplan provides the public Go library API for linkplan.
//
// linkplan resolves a declarative per-target build description into an
// ordered link graph and a matching-progress report. This package exposes
// constructors for embedding the resolver in other Go programs; the
// command-line tool is a thin layer over it.
//
// # Basic Usage
//
//	client, err := linkplan.New(linkplan.Options{
//	    ConfigPath: "linkplan.yaml",
//	    Target:     "RMCP01",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Resolve the link orders and write the Ninja build graph
//	g, err := client.Configure(ctx)
//
//	// Compute matching progress
//	report, err := client.Progress(g, linkplan.ProgressOptions{})
package linkplan

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/avelhorn/linkplan/internal/buildgraph"
	"github.com/avelhorn/linkplan/internal/cache"
	"github.com/avelhorn/linkplan/internal/config"
	"github.com/avelhorn/linkplan/internal/graph"
	"github.com/avelhorn/linkplan/internal/manifest"
	"github.com/avelhorn/linkplan/internal/match"
	"github.com/avelhorn/linkplan/internal/progress"
	"github.com/avelhorn/linkplan/internal/registry"
	"github.com/avelhorn/linkplan/internal/tools"
)

// Options configure a Client.
type Options struct {
	// ConfigPath is the project file. Defaults to "linkplan.yaml".
	ConfigPath string

	// Target is the product code to resolve for, case-insensitive.
	// Defaults to the registry's default target.
	Target string

	// NonMatching enables relaxed mode: non-matching and equivalent
	// objects become link-eligible.
	NonMatching bool

	// Debug builds with debug info (and implies a non-matching binary).
	Debug bool

	// MapFile asks the linker for a map file.
	MapFile bool

	// BuildDir is the output root. Defaults to "build".
	BuildDir string

	// Reorder optionally adjusts per-module link orders.
	Reorder graph.ReorderPolicy

	// CompilersDir and WrapperPath locate the external toolchain.
	CompilersDir string
	WrapperPath  string
}

// ProgressOptions configure progress reporting.
type ProgressOptions struct {
	// ManifestPath points at the reference build.sha1. Empty skips
	// artifact verification.
	ManifestPath string

	// PerModule adds a per-module breakdown.
	PerModule bool
}

// Client is a resolved, immutable configuration snapshot: project file,
// target parameters, and build mode, fixed at construction.
type Client struct {
	cfg    *config.Config
	params registry.Params
	mode   match.Mode
	opts   Options
}

// New validates the registry, resolves the target, and loads the project
// file. Any failure here is a configuration defect; no partial client is
// returned.
func New(opts Options) (*Client, error) {
	if err := registry.Verify(); err != nil {
		return nil, err
	}

	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath
	}
	if opts.BuildDir == "" {
		opts.BuildDir = "build"
	}

	target := registry.DefaultTarget
	if opts.Target != "" {
		var err error
		target, err = registry.Normalize(opts.Target)
		if err != nil {
			return nil, err
		}
	}

	params, err := registry.Resolve(target)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	mode := match.Strict
	if opts.NonMatching || opts.Debug {
		mode = match.Relaxed
	}

	return &Client{cfg: cfg, params: params, mode: mode, opts: opts}, nil
}

// Config returns the loaded project file.
func (c *Client) Config() *config.Config { return c.cfg }

// Params returns the resolved target parameters.
func (c *Client) Params() registry.Params { return c.params }

// Mode returns the build mode for this run.
func (c *Client) Mode() match.Mode { return c.mode }

// Resolve assembles the per-module link orders for this client's target
// and mode.
func (c *Client) Resolve() (*graph.LinkGraph, error) {
	return graph.Assemble(c.cfg, c.params, c.mode, graph.Options{
		Reorder:    c.opts.Reorder,
		ExtraFlags: c.extraCompilerFlags(),
	})
}

// Configure resolves the graph, provisions the toolchain, writes the
// Ninja build description and object manifest into the build directory,
// and returns the graph it wrote.
func (c *Client) Configure(ctx context.Context) (*graph.LinkGraph, error) {
	g, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	ts, err := c.ProvisionTools(ctx)
	if err != nil {
		return nil, err
	}
	err = buildgraph.Write(g, buildgraph.Options{
		BuildDir: c.opts.BuildDir,
		LDFlags:  c.linkerFlags(),
		Toolset:  ts,
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ProvisionTools returns the toolchain for this run. An explicit
// compilers directory is used as given; otherwise the pinned tools are
// downloaded through the content-addressed cache into <BuildDir>/tools.
func (c *Client) ProvisionTools(ctx context.Context) (*tools.Toolset, error) {
	if c.opts.CompilersDir != "" {
		return c.Toolset(), nil
	}

	store, err := cache.New(cache.DefaultDir())
	if err != nil {
		return nil, err
	}
	d := &tools.Downloader{Cache: store}

	ts, err := tools.Provision(ctx, d, filepath.Join(c.opts.BuildDir, "tools"), tools.DefaultTags())
	if err != nil {
		return nil, err
	}
	if c.opts.WrapperPath != "" {
		ts.WrapperPath = c.opts.WrapperPath
	}
	return ts, nil
}

// Progress computes the matching-progress report for an assembled graph.
func (c *Client) Progress(g *graph.LinkGraph, opts ProgressOptions) (*progress.Report, error) {
	buildOpts := progress.Options{
		PerModule: opts.PerModule,
		BuildDir:  c.targetBuildDir(),
	}

	if opts.ManifestPath != "" {
		ref, err := manifest.Load(opts.ManifestPath)
		if err != nil {
			// A missing reference manifest only disables verification.
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		} else {
			buildOpts.Manifest = ref
		}
	}

	return progress.Build(c.cfg, g, buildOpts)
}

// Toolset returns the external toolchain locations for this run.
func (c *Client) Toolset() *tools.Toolset {
	return &tools.Toolset{
		CompilersDir: c.opts.CompilersDir,
		WrapperPath:  c.opts.WrapperPath,
		Tags:         tools.DefaultTags(),
	}
}

func (c *Client) targetBuildDir() string {
	return filepath.Join(c.opts.BuildDir, string(c.params.Target))
}

// extraCompilerFlags are the debug/release additions applied to every
// object.
func (c *Client) extraCompilerFlags() []string {
	if c.opts.Debug {
		return []string{"-sym on", "-DDEBUG=1"}
	}
	return []string{"-DNDEBUG=1"}
}

// linkerFlags are the project link flags plus map/debug additions.
func (c *Client) linkerFlags() []string {
	flags := append([]string(nil), c.cfg.LinkFlags...)
	if c.opts.Debug {
		flags = append(flags, "-gdwarf-2")
	}
	if c.opts.MapFile {
		flags = append(flags, "-listclosure")
	}
	return flags
}
