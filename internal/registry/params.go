package registry

// Params are the derived, per-target build parameters. One Params value
// exists per registered target; derivation is total or it fails.
type Params struct {
	Target  Target
	Ordinal int

	// IdentityConstant is the year/month library version constant baked
	// into the build (EGG_VERSION), e.g. "200804L".
	IdentityConstant string

	// LinkerProfile is the Metrowerks linker version the target's binary
	// was linked with, e.g. "Wii/1.1".
	LinkerProfile string

	// CompilerFlags are target-specific additions to the base compiler
	// flag set. Empty for most targets.
	CompilerFlags []string
}

// identityConstants specifies the year/month identity constant per target.
var identityConstants = map[Target]string{
	OGWS:    "200611L",
	WP:      "200702L",
	BBAWD:   "200704L",
	MKW:     "200804L",
	WF:      "200805L",
	WM:      "200810L",
	ACCF:    "200811L",
	Pikmin1: "200903L",
	WFP:     "200910L",
	NSMBW:   "200911L",
	WSR:     "201006L",
	LOZSS:   "201111L",
}

// linkerProfiles specifies the linker version per target.
// ACCF and WF's linker version isn't known; guessed from build strings.
var linkerProfiles = map[Target]string{
	OGWS:    "GC/3.0a5.2",
	WP:      "GC/3.0a5.2",
	BBAWD:   "GC/3.0a5.2",
	MKW:     "Wii/0x4201_127",
	WF:      "GC/3.0a5.2",
	WM:      "Wii/1.1",
	ACCF:    "GC/3.0a5.2",
	Pikmin1: "GC/3.0a5.2",
	WFP:     "Wii/1.1",
	NSMBW:   "Wii/1.1",
	WSR:     "Wii/1.1",
	LOZSS:   "Wii/1.5",
}

// compilerFlags specifies target-specific compiler flag additions. Every
// target has a row even when it adds nothing, so a missing row always
// means a registry/table mismatch and never "no extra flags".
var compilerFlags = map[Target][]string{
	OGWS:    nil,
	WP:      nil,
	BBAWD:   nil,
	MKW:     {"-func_align=4"},
	WF:      nil,
	WM:      nil,
	ACCF:    {"-RTTI on"},
	Pikmin1: nil,
	WFP:     nil,
	NSMBW:   nil,
	WSR:     nil,
	LOZSS:   nil,
}

// derivationTables names every table Resolve consults, in the order
// Verify checks them.
var derivationTables = []struct {
	name   string
	covers func(Target) bool
}{
	{"identity constant", func(t Target) bool { _, ok := identityConstants[t]; return ok }},
	{"linker profile", func(t Target) bool { _, ok := linkerProfiles[t]; return ok }},
	{"compiler flags", func(t Target) bool { _, ok := compilerFlags[t]; return ok }},
}

// Resolve derives the build parameters for t. It fails with
// UnknownTargetError if t is unregistered or any derivation table has no
// row for it. There is deliberately no default row.
func Resolve(t Target) (Params, error) {
	ordinal, err := Ordinal(t)
	if err != nil {
		return Params{}, err
	}

	identity, ok := identityConstants[t]
	if !ok {
		return Params{}, &UnknownTargetError{Target: t, Table: "identity constant"}
	}

	profile, ok := linkerProfiles[t]
	if !ok {
		return Params{}, &UnknownTargetError{Target: t, Table: "linker profile"}
	}

	flags, ok := compilerFlags[t]
	if !ok {
		return Params{}, &UnknownTargetError{Target: t, Table: "compiler flags"}
	}

	return Params{
		Target:           t,
		Ordinal:          ordinal,
		IdentityConstant: identity,
		LinkerProfile:    profile,
		CompilerFlags:    append([]string(nil), flags...),
	}, nil
}

// Verify asserts that every derivation table has a row for every
// registered target. Callers run it once before any resolution; a failure
// is a programming error in this package, not a runtime condition.
func Verify() error {
	for _, t := range Targets {
		for _, table := range derivationTables {
			if !table.covers(t) {
				return &UnknownTargetError{Target: t, Table: table.name}
			}
		}
	}
	return nil
}
