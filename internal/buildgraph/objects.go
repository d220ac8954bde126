package buildgraph

import (
	"encoding/json"
	"fmt"

	"github.com/avelhorn/linkplan/internal/graph"
)

// ObjectRecord is one object's build classification in the manifest.
type ObjectRecord struct {
	Source   string `json:"source"`
	Library  string `json:"library"`
	Module   int    `json:"module"`
	Status   string `json:"status"`
	Resolved string `json:"resolved"`
	Compiled bool   `json:"compiled"`
	Linked   bool   `json:"linked"`
}

// ObjectManifest records, per object, whether it is compiled, linked, or
// excluded. That is enough for downstream tooling to reconstruct the
// classification without re-running resolution.
type ObjectManifest struct {
	Target  string         `json:"target"`
	Mode    string         `json:"mode"`
	Objects []ObjectRecord `json:"objects"`
}

// BuildObjectManifest derives the manifest from an assembled graph.
func BuildObjectManifest(g *graph.LinkGraph) *ObjectManifest {
	m := &ObjectManifest{
		Target: string(g.Target),
		Mode:   g.Mode.String(),
	}
	for _, obj := range g.Objects {
		m.Objects = append(m.Objects, ObjectRecord{
			Source:   obj.Source,
			Library:  obj.Library,
			Module:   obj.Module,
			Status:   obj.Status.String(),
			Resolved: obj.Resolved.String(),
			Compiled: true,
			Linked:   obj.Linked,
		})
	}
	return m
}

func writeObjectManifest(path string, g *graph.LinkGraph) error {
	data, err := json.MarshalIndent(BuildObjectManifest(g), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling object manifest: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}
