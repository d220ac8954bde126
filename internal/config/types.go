package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/avelhorn/linkplan/internal/match"
	"github.com/avelhorn/linkplan/internal/registry"
)

// DefaultPath is the project file name looked up when no --spec flag is
// given.
const DefaultPath = "linkplan.yaml"

// Config represents the linkplan.yaml project file: the declarative build
// description resolved once per run. It is immutable after Load.
type Config struct {
	Version    int                `yaml:"version"`
	FlagSets   map[string]FlagSet `yaml:"flag_sets,omitempty"`
	LinkFlags  []string           `yaml:"link_flags,omitempty"`
	Categories []Category         `yaml:"categories,omitempty"`
	Modules    []Module           `yaml:"modules,omitempty"`
	Libraries  []Library          `yaml:"libraries"`
}

// FlagSet is a named, reusable compiler flag list. Extends prepends
// another set's expansion, mirroring how flag variants layer on a common
// base.
type FlagSet struct {
	Extends string   `yaml:"extends,omitempty"`
	Flags   []string `yaml:"flags"`
}

// Category declares a progress reporting group.
type Category struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// Module declares a relocatable module (ID >= 1) and its output name.
// Module 0 is the main executable and always exists implicitly.
type Module struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// Library groups objects built with one compiler profile and flag set.
// A library exclusively owns its objects; declaration order is the
// default link order.
type Library struct {
	Name string `yaml:"name"`

	// Profile is the Metrowerks compiler version, e.g. "GC/1.2.5n".
	// Empty means "use the active target's linker profile".
	Profile string `yaml:"profile,omitempty"`

	// FlagSet names the flag set the library compiles with.
	FlagSet string `yaml:"flag_set,omitempty"`

	// Flags are appended after the flag set expansion.
	Flags []string `yaml:"flags,omitempty"`

	// Categories are the progress categories this library reports under.
	// Accepts a scalar or a list in YAML.
	Categories StringList `yaml:"categories,omitempty"`

	// Module is the linked unit this library belongs to (0 = main).
	Module int `yaml:"module,omitempty"`

	Objects []Object `yaml:"objects"`
}

// Object statuses accepted in the project file.
const (
	StatusMatching    = "matching"
	StatusNonMatching = "non_matching"
	StatusEquivalent  = "equivalent"
	StatusMatchingFor = "matching_for"
)

// Object is a single translation unit and its declared matching status.
type Object struct {
	Source string `yaml:"source"`
	Status string `yaml:"status"`

	// Targets is the allowed-target set for status matching_for.
	Targets []string `yaml:"targets,omitempty"`

	// Flags are appended after the owning library's flags.
	Flags []string `yaml:"flags,omitempty"`

	// TargetFlags are appended only when building the keyed target.
	TargetFlags map[string][]string `yaml:"target_flags,omitempty"`
}

// MatchStatus converts the declared status into the matching model's
// representation. Validation has already checked the status string and
// target codes, so errors here indicate an unvalidated Config.
func (o Object) MatchStatus() (match.Status, error) {
	switch o.Status {
	case StatusMatching:
		return match.Matching, nil
	case StatusNonMatching:
		return match.NonMatching, nil
	case StatusEquivalent:
		return match.Equivalent, nil
	case StatusMatchingFor:
		targets := make([]registry.Target, 0, len(o.Targets))
		for _, s := range o.Targets {
			t, err := registry.Normalize(s)
			if err != nil {
				return match.Status{}, fmt.Errorf("object %s: %w", o.Source, err)
			}
			targets = append(targets, t)
		}
		return match.MatchingFor(targets...), nil
	}
	return match.Status{}, fmt.Errorf("object %s: invalid status %q", o.Source, o.Status)
}

// StringList unmarshals from either a YAML scalar or a sequence, so a
// library can declare `categories: sdk` or `categories: [sdk, runtime]`.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := value.Decode(&ss); err != nil {
			return err
		}
		*l = StringList(ss)
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
}

// ModuleName returns the output artifact name for a module ID: the
// declared name, or "main.dol" for the implicit module 0.
func (c *Config) ModuleName(id int) string {
	for _, m := range c.Modules {
		if m.ID == id {
			return m.Name
		}
	}
	if id == 0 {
		return "main.dol"
	}
	return fmt.Sprintf("module%d.rel", id)
}

// ResolveFlagSet expands a named flag set, following extends chains.
// Fails on undefined names and cyclic extends.
func (c *Config) ResolveFlagSet(name string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	var walk func(n string) error
	walk = func(n string) error {
		if seen[n] {
			return fmt.Errorf("flag set %q: cyclic extends", n)
		}
		seen[n] = true

		fs, ok := c.FlagSets[n]
		if !ok {
			return fmt.Errorf("flag set %q is not defined", n)
		}
		if fs.Extends != "" {
			if err := walk(fs.Extends); err != nil {
				return err
			}
		}
		out = append(out, fs.Flags...)
		return nil
	}

	if err := walk(name); err != nil {
		return nil, err
	}
	return out, nil
}
