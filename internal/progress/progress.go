// Package progress rolls up object matching status into per-category and
// per-module counts, and checks produced artifacts against the reference
// checksum manifest.
//
// The aggregator is a read-only view over the assembled link graph; it
// never re-resolves matching status. A library declared under several
// categories contributes its objects to each of them; the same work is
// intentionally rolled up under multiple labels.
package progress

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/avelhorn/linkplan/internal/graph"
	"github.com/avelhorn/linkplan/internal/manifest"
	"github.com/avelhorn/linkplan/internal/match"
)

// Count holds matched-vs-total object counts.
type Count struct {
	Total    int `json:"total"`
	Matching int `json:"matching"`
}

// Percent returns the matching share, 0 for an empty count.
func (c Count) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Matching) / float64(c.Total) * 100
}

// Aggregate counts objects per category key. Equivalent objects count
// toward the total but not toward matching; the distinct tag is reported,
// not re-weighted here.
func Aggregate(g *graph.LinkGraph) map[string]Count {
	counts := make(map[string]Count)
	for _, obj := range g.Objects {
		for _, key := range obj.Categories {
			c := counts[key]
			c.Total++
			if obj.Resolved == match.Matching {
				c.Matching++
			}
			counts[key] = c
		}
	}
	return counts
}

// Overall counts every object in the graph once, regardless of category
// membership.
func Overall(g *graph.LinkGraph) Count {
	var c Count
	for _, obj := range g.Objects {
		c.Total++
		if obj.Resolved == match.Matching {
			c.Matching++
		}
	}
	return c
}

// PerModule counts objects per module ID.
func PerModule(g *graph.LinkGraph) map[int]Count {
	counts := make(map[int]Count)
	for _, obj := range g.Objects {
		c := counts[obj.Module]
		c.Total++
		if obj.Resolved == match.Matching {
			c.Matching++
		}
		counts[obj.Module] = c
	}
	return counts
}

// Artifact check states.
const (
	ArtifactOK         = "ok"         // produced artifact matches the reference checksum
	ArtifactMismatch   = "mismatch"   // produced artifact differs from the reference
	ArtifactMissing    = "missing"    // reference lists the artifact but none was produced
	ArtifactUnverified = "unverified" // reference manifest has no entry for it
)

// ArtifactCheck is the checksum comparison result for one module output.
type ArtifactCheck struct {
	Module int    `json:"module"`
	Name   string `json:"name"`
	SHA1   string `json:"sha1,omitempty"`
	State  string `json:"state"`
}

// CheckArtifacts compares each module's output under buildDir against the
// reference manifest, keyed by artifact name.
func CheckArtifacts(g *graph.LinkGraph, ref *manifest.Manifest, buildDir string) ([]ArtifactCheck, error) {
	checks := make([]ArtifactCheck, 0, len(g.Modules))
	for _, mod := range g.Modules {
		check := ArtifactCheck{Module: mod.ID, Name: mod.Name}

		want, ok := ref.Lookup(mod.Name)
		if !ok {
			check.State = ArtifactUnverified
			checks = append(checks, check)
			continue
		}
		check.SHA1 = want

		got, err := manifest.FileSHA1(filepath.Join(buildDir, mod.Name))
		if os.IsNotExist(err) {
			check.State = ArtifactMissing
			checks = append(checks, check)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("checking artifact %s: %w", mod.Name, err)
		}

		if got == want {
			check.State = ArtifactOK
		} else {
			check.State = ArtifactMismatch
		}
		checks = append(checks, check)
	}
	return checks, nil
}
