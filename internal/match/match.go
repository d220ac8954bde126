// Package match classifies compiled objects against the reference binary
// and decides whether they may be linked under the current build mode.
//
// A Status is a static fact declared in the project file: it records what
// is known about an object at authoring time, not what a build produced.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avelhorn/linkplan/internal/registry"
)

// Mode selects how divergent objects are treated during link assembly.
type Mode int

const (
	// Strict links only byte-matching objects; the produced binary must
	// reproduce the reference.
	Strict Mode = iota

	// Relaxed additionally links non-matching and equivalent objects,
	// enabling builds that compile but need not byte-match.
	Relaxed
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Relaxed:
		return "relaxed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type kind int

const (
	kindMatching kind = iota
	kindNonMatching
	kindEquivalent
	kindConditional
)

// Status records an object's relationship to the reference binary.
// It is a comparable value type: two statuses are equal when they carry
// the same kind and, for conditional matches, the same allowed set.
type Status struct {
	kind    kind
	allowed string // kindConditional only: sorted comma-joined target codes
}

var (
	// Matching objects are byte-identical to the reference and always
	// link-eligible.
	Matching = Status{kind: kindMatching}

	// NonMatching objects are known-divergent and link only in relaxed
	// mode.
	NonMatching = Status{kind: kindNonMatching}

	// Equivalent objects behave like the reference but differ in bytes.
	// Eligibility is identical to NonMatching today; the tag is kept
	// distinct for reporting.
	Equivalent = Status{kind: kindEquivalent}
)

// MatchingFor returns a conditional status: Matching when the active
// target is one of targets, NonMatching otherwise. It must be resolved
// against a target before eligibility is decided.
func MatchingFor(targets ...registry.Target) Status {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	sort.Strings(names)
	return Status{kind: kindConditional, allowed: strings.Join(names, ",")}
}

// AllowedTargets returns the allowed set of a conditional status, empty
// for plain statuses.
func (s Status) AllowedTargets() []registry.Target {
	if s.kind != kindConditional || s.allowed == "" {
		return nil
	}
	parts := strings.Split(s.allowed, ",")
	targets := make([]registry.Target, len(parts))
	for i, p := range parts {
		targets[i] = registry.Target(p)
	}
	return targets
}

// ResolveFor collapses a conditional status against the active target.
// Plain statuses resolve to themselves.
func (s Status) ResolveFor(target registry.Target) Status {
	if s.kind != kindConditional {
		return s
	}
	for _, t := range s.AllowedTargets() {
		if t == target {
			return Matching
		}
	}
	return NonMatching
}

// Eligible reports whether an object with this status may be linked for
// target under mode. Pure: identical arguments always yield the same
// answer.
func (s Status) Eligible(target registry.Target, mode Mode) bool {
	switch s.ResolveFor(target).kind {
	case kindMatching:
		return true
	default:
		return mode == Relaxed
	}
}

// IsMatching reports whether the status resolves to Matching for target.
func (s Status) IsMatching(target registry.Target) bool {
	return s.ResolveFor(target).kind == kindMatching
}

// Conditional reports whether the status depends on the active target.
func (s Status) Conditional() bool {
	return s.kind == kindConditional
}

func (s Status) String() string {
	switch s.kind {
	case kindMatching:
		return "matching"
	case kindNonMatching:
		return "non_matching"
	case kindEquivalent:
		return "equivalent"
	case kindConditional:
		return "matching_for(" + s.allowed + ")"
	default:
		return fmt.Sprintf("Status(%d)", int(s.kind))
	}
}
