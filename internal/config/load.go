package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/avelhorn/linkplan/internal/registry"
)

// Load reads and validates a linkplan.yaml project file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing project file %s: %w", path, err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("project file validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d: only version 1 is supported", cfg.Version))
	}

	// Flag sets: every set (and every extends chain) must expand. Sort
	// names so failures report in a stable order.
	setNames := make([]string, 0, len(cfg.FlagSets))
	for name := range cfg.FlagSets {
		setNames = append(setNames, name)
	}
	sort.Strings(setNames)
	for _, name := range setNames {
		if _, err := cfg.ResolveFlagSet(name); err != nil {
			errs = append(errs, err.Error())
		}
	}

	// Categories.
	categoryKeys := make(map[string]bool)
	for i, cat := range cfg.Categories {
		prefix := fmt.Sprintf("category[%d]", i)
		if cat.Key != "" {
			prefix = fmt.Sprintf("category '%s'", cat.Key)
		}

		if cat.Key == "" {
			errs = append(errs, fmt.Sprintf("%s: 'key' is required", prefix))
		} else if categoryKeys[cat.Key] {
			errs = append(errs, fmt.Sprintf("%s: duplicate category key '%s'", prefix, cat.Key))
		} else {
			categoryKeys[cat.Key] = true
		}

		if cat.Label == "" {
			errs = append(errs, fmt.Sprintf("%s: 'label' is required", prefix))
		}
	}

	// Modules. Module 0 is the implicit main executable; declared modules
	// name the relocatable units.
	moduleIDs := map[int]bool{0: true}
	for i, mod := range cfg.Modules {
		prefix := fmt.Sprintf("module[%d]", i)

		if mod.ID < 1 {
			errs = append(errs, fmt.Sprintf("%s: 'id' must be >= 1 (module 0 is the main executable)", prefix))
		} else if moduleIDs[mod.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate module id %d", prefix, mod.ID))
		} else {
			moduleIDs[mod.ID] = true
		}

		if mod.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		}
	}

	// Libraries.
	if len(cfg.Libraries) == 0 {
		errs = append(errs, "at least one library is required")
	}

	libNames := make(map[string]bool)
	for i, lib := range cfg.Libraries {
		prefix := fmt.Sprintf("library[%d]", i)
		if lib.Name != "" {
			prefix = fmt.Sprintf("library '%s'", lib.Name)
		}

		if lib.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		} else if libNames[lib.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate library name '%s'", prefix, lib.Name))
		} else {
			libNames[lib.Name] = true
		}

		if lib.FlagSet != "" {
			if _, ok := cfg.FlagSets[lib.FlagSet]; !ok {
				errs = append(errs, fmt.Sprintf("%s: flag set %q is not defined", prefix, lib.FlagSet))
			}
		}

		if lib.Module != 0 && !moduleIDs[lib.Module] {
			errs = append(errs, fmt.Sprintf("%s: module %d is not declared", prefix, lib.Module))
		}
		if lib.Module < 0 {
			errs = append(errs, fmt.Sprintf("%s: module must be >= 0", prefix))
		}

		for _, key := range lib.Categories {
			if !categoryKeys[key] {
				errs = append(errs, fmt.Sprintf("%s: progress category %q is not declared", prefix, key))
			}
		}

		if len(lib.Objects) == 0 {
			errs = append(errs, fmt.Sprintf("%s: at least one object is required", prefix))
		}
		for j, obj := range lib.Objects {
			errs = append(errs, validateObject(obj, fmt.Sprintf("%s object[%d]", prefix, j))...)
		}
	}

	return errs
}

func validateObject(obj Object, prefix string) []string {
	var errs []string

	if obj.Source != "" {
		prefix = fmt.Sprintf("%s (%s)", prefix, obj.Source)
	} else {
		errs = append(errs, fmt.Sprintf("%s: 'source' is required", prefix))
	}

	switch obj.Status {
	case StatusMatching, StatusNonMatching, StatusEquivalent:
		if len(obj.Targets) > 0 {
			errs = append(errs, fmt.Sprintf("%s: 'targets' is only valid with status matching_for", prefix))
		}
	case StatusMatchingFor:
		if len(obj.Targets) == 0 {
			errs = append(errs, fmt.Sprintf("%s: status matching_for requires at least one target", prefix))
		}
		for _, t := range obj.Targets {
			if _, err := registry.Normalize(t); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
			}
		}
	case "":
		errs = append(errs, fmt.Sprintf("%s: 'status' is required", prefix))
	default:
		errs = append(errs, fmt.Sprintf("%s: invalid status %q, want one of matching, non_matching, equivalent, matching_for", prefix, obj.Status))
	}

	for t := range obj.TargetFlags {
		if _, err := registry.Normalize(t); err != nil {
			errs = append(errs, fmt.Sprintf("%s: target_flags: %v", prefix, err))
		}
	}

	return errs
}
