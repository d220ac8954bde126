// Package registry defines the fixed set of supported build targets and
// derives the per-target build parameters (identity constant, linker
// profile, compiler flag additions).
//
// The registry is closed: adding a target means adding a row to every
// derivation table in params.go. Verify asserts that coverage at startup,
// so a partial table aborts configuration instead of silently falling back
// to a default.
package registry

import (
	"fmt"
	"strings"
)

// Target identifies a build variant by its product code.
type Target string

const (
	OGWS    Target = "RSPE01" // Wii Sports (USA, Rev 1)
	WP      Target = "RHAE01" // Wii Play (USA, Rev 1)
	BBAWD   Target = "RYWE01" // Big Brain Academy: Wii Degree (USA)
	MKW     Target = "RMCP01" // Mario Kart Wii (PAL)
	WF      Target = "RFNE01" // Wii Fit (USA, Rev 1)
	WM      Target = "R64E01" // Wii Music (USA)
	ACCF    Target = "RUUE01" // Animal Crossing: City Folk (USA, Rev 0)
	Pikmin1 Target = "R9IE01" // Pikmin (USA)
	WFP     Target = "RFPE01" // Wii Fit Plus (USA)
	NSMBW   Target = "SMNP01" // New Super Mario Bros. Wii (PAL, Rev 1)
	WSR     Target = "RZTE01" // Wii Sports Resort (USA, Rev 1)
	LOZSS   Target = "SOUE01" // The Legend of Zelda: Skyward Sword (USA, Rev 0)
)

// Targets lists every supported target in registry order. The slice index
// is the target's ordinal, which feeds derived constants (BUILD_VERSION)
// and is otherwise meaningless; it does not order the targets in any
// semantic way.
var Targets = []Target{
	OGWS,
	WP,
	BBAWD,
	MKW,
	WF,
	WM,
	ACCF,
	Pikmin1,
	WFP,
	NSMBW,
	WSR,
	LOZSS,
}

// DefaultTarget is BBA: Wii Degree, the primary target, since it ships a
// debug linker map.
const DefaultTarget = BBAWD

// UnknownTargetError reports a target that is not in the registry, or a
// registered target with no row in a derivation table. Both are
// configuration defects: nothing proceeds past them.
type UnknownTargetError struct {
	Target Target
	Table  string // derivation table name; empty when the target itself is unregistered
}

func (e *UnknownTargetError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("target %s: missing entry in %s table", e.Target, e.Table)
	}
	return fmt.Sprintf("unknown target %s (valid targets: %s)", e.Target, strings.Join(Names(), ", "))
}

// Ordinal returns t's index in the registry.
func Ordinal(t Target) (int, error) {
	for i, reg := range Targets {
		if reg == t {
			return i, nil
		}
	}
	return 0, &UnknownTargetError{Target: t}
}

// Known reports whether t is a registered target.
func Known(t Target) bool {
	_, err := Ordinal(t)
	return err == nil
}

// Normalize upper-cases a user-supplied target code and validates it
// against the registry.
func Normalize(s string) (Target, error) {
	t := Target(strings.ToUpper(strings.TrimSpace(s)))
	if !Known(t) {
		return "", &UnknownTargetError{Target: t}
	}
	return t, nil
}

// Names returns the registry as plain strings, for CLI enumeration.
func Names() []string {
	names := make([]string, len(Targets))
	for i, t := range Targets {
		names[i] = string(t)
	}
	return names
}
