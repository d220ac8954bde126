package linkplan

import (
	"github.com/avelhorn/linkplan/internal/graph"
	"github.com/avelhorn/linkplan/internal/progress"
	"github.com/avelhorn/linkplan/internal/registry"
)

// Type aliases re-export the resolver's result types as the public API.
// Users import "github.com/avelhorn/linkplan/pkg/linkplan" and use
// linkplan.LinkGraph, linkplan.Report, etc.

type Target = registry.Target
type Params = registry.Params
type LinkGraph = graph.LinkGraph
type ModulePlan = graph.ModulePlan
type ObjectPlan = graph.ObjectPlan
type ReorderPolicy = graph.ReorderPolicy
type Report = progress.Report
type Count = progress.Count
