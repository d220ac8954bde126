// Package graph assembles the per-module link orders from the project
// configuration: library declaration order concatenated, filtered by
// matching eligibility, then optionally reshaped by an injected reorder
// policy.
//
// Assembly is deterministic. Identical inputs produce byte-identical
// output lists: libraries and objects are walked in declaration order and
// modules are emitted in ascending ID, so no map iteration order can leak
// into the result.
package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/avelhorn/linkplan/internal/config"
	"github.com/avelhorn/linkplan/internal/match"
	"github.com/avelhorn/linkplan/internal/registry"
)

// ReorderPolicy adjusts a module's link order. It is called once per
// module with the module ID and the current order, and may append, remove,
// or permute entries. Any entry it introduces must be declared
// link-eligible for the active build mode.
type ReorderPolicy func(moduleID int, order []string) []string

// Options configure an assembly run.
type Options struct {
	// Reorder, when non-nil, is applied to every module's link order
	// after eligibility filtering.
	Reorder ReorderPolicy

	// ExtraFlags are appended to every object's compiler flags
	// (debug/NDEBUG toggles and the like).
	ExtraFlags []string
}

// ObjectPlan is the fully resolved classification of one translation
// unit: what it compiles with, where it links, and why (or why not).
type ObjectPlan struct {
	Source     string
	Library    string
	Module     int
	Status     match.Status // as declared, conditionals unresolved
	Resolved   match.Status // collapsed against the active target
	Linked     bool         // present in the module's final link order
	Profile    string       // Metrowerks compiler version
	Flags      []string     // fully expanded compiler flags
	Categories []string
}

// ModulePlan is one linked unit and its final link order.
type ModulePlan struct {
	ID    int
	Name  string
	Order []string
}

// LinkGraph is the assembled result: the sole artifact the build graph
// generator consumes.
type LinkGraph struct {
	Target  registry.Target
	Params  registry.Params
	Mode    match.Mode
	Modules []ModulePlan // ascending ID
	Objects []ObjectPlan // declaration order
}

// Module returns the plan for a module ID, or nil if the graph has none.
func (g *LinkGraph) Module(id int) *ModulePlan {
	for i := range g.Modules {
		if g.Modules[i].ID == id {
			return &g.Modules[i]
		}
	}
	return nil
}

// Assemble resolves the project configuration into a link graph for the
// target described by params. It fails on ambiguous object declarations
// and on reorder policies that smuggle in ineligible entries; on any
// error no partial graph is returned.
func Assemble(cfg *config.Config, params registry.Params, mode match.Mode, opts Options) (*LinkGraph, error) {
	g := &LinkGraph{
		Target: params.Target,
		Params: params,
		Mode:   mode,
	}

	expand := placeholderReplacer(params)

	// Eligibility across the whole graph, for validating reorder output.
	eligible := make(map[string]bool)

	// Per-module concatenation in library declaration order. Module 0
	// always exists; declared modules exist even when empty.
	orders := map[int][]string{0: nil}
	for _, m := range cfg.Modules {
		orders[m.ID] = nil
	}

	declaredBy := make(map[string]string)

	for _, lib := range cfg.Libraries {
		libFlags, err := libraryFlags(cfg, lib, params, opts.ExtraFlags)
		if err != nil {
			return nil, fmt.Errorf("library '%s': %w", lib.Name, err)
		}

		profile := lib.Profile
		if profile == "" {
			profile = params.LinkerProfile
		}

		for _, obj := range lib.Objects {
			if prev, ok := declaredBy[obj.Source]; ok {
				return nil, &AmbiguousObjectError{
					Source:    obj.Source,
					Libraries: [2]string{prev, lib.Name},
				}
			}
			declaredBy[obj.Source] = lib.Name

			status, err := obj.MatchStatus()
			if err != nil {
				return nil, fmt.Errorf("library '%s': %w", lib.Name, err)
			}

			flags := append([]string(nil), libFlags...)
			flags = append(flags, obj.Flags...)
			flags = append(flags, obj.TargetFlags[string(params.Target)]...)
			for i, f := range flags {
				flags[i] = expand.Replace(f)
			}

			linked := status.Eligible(params.Target, mode)
			if linked {
				eligible[obj.Source] = true
				orders[lib.Module] = append(orders[lib.Module], obj.Source)
			}

			g.Objects = append(g.Objects, ObjectPlan{
				Source:     obj.Source,
				Library:    lib.Name,
				Module:     lib.Module,
				Status:     status,
				Resolved:   status.ResolveFor(params.Target),
				Linked:     linked,
				Profile:    profile,
				Flags:      flags,
				Categories: append([]string(nil), lib.Categories...),
			})
		}
	}

	ids := make([]int, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		order := orders[id]

		if opts.Reorder != nil {
			order = opts.Reorder(id, append([]string(nil), order...))
			for _, source := range order {
				if !eligible[source] {
					return nil, &IneligibleLinkEntryError{Module: id, Source: source, Mode: mode}
				}
			}
			markReordered(g, order, id)
		}

		g.Modules = append(g.Modules, ModulePlan{
			ID:    id,
			Name:  cfg.ModuleName(id),
			Order: order,
		})
	}

	return g, nil
}

// markReordered reconciles Linked flags after a policy removed entries
// from a module's order.
func markReordered(g *LinkGraph, order []string, moduleID int) {
	kept := make(map[string]bool, len(order))
	for _, s := range order {
		kept[s] = true
	}
	for i := range g.Objects {
		if g.Objects[i].Module == moduleID && g.Objects[i].Linked {
			g.Objects[i].Linked = kept[g.Objects[i].Source]
		}
	}
}

// libraryFlags expands the library's flag set reference, its own flags,
// the build-wide extras, and last the per-target compiler flag
// additions, so target-specific flags always override the base set.
func libraryFlags(cfg *config.Config, lib config.Library, params registry.Params, extra []string) ([]string, error) {
	var flags []string
	if lib.FlagSet != "" {
		expanded, err := cfg.ResolveFlagSet(lib.FlagSet)
		if err != nil {
			return nil, err
		}
		flags = append(flags, expanded...)
	}
	flags = append(flags, lib.Flags...)
	flags = append(flags, extra...)
	flags = append(flags, params.CompilerFlags...)
	return flags, nil
}

// placeholderReplacer substitutes the per-target tokens usable in flag
// strings.
func placeholderReplacer(params registry.Params) *strings.Replacer {
	return strings.NewReplacer(
		"{target}", string(params.Target),
		"{ordinal}", strconv.Itoa(params.Ordinal),
		"{identity}", params.IdentityConstant,
	)
}
