package graph

import (
	"fmt"

	"github.com/avelhorn/linkplan/internal/match"
)

// AmbiguousObjectError reports a source path declared by more than one
// library. Last-write-wins would make the link graph depend on
// declaration accidents, so assembly rejects it outright.
type AmbiguousObjectError struct {
	Source    string
	Libraries [2]string
}

func (e *AmbiguousObjectError) Error() string {
	return fmt.Sprintf("object %s declared in both library '%s' and library '%s'",
		e.Source, e.Libraries[0], e.Libraries[1])
}

// IneligibleLinkEntryError reports a reorder policy introducing a link
// entry that is not link-eligible under the current build mode. The
// affected module's link order is not published.
type IneligibleLinkEntryError struct {
	Module int
	Source string
	Mode   match.Mode
}

func (e *IneligibleLinkEntryError) Error() string {
	return fmt.Sprintf("module %d: reorder policy introduced %s, which is not link-eligible in %s mode",
		e.Module, e.Source, e.Mode)
}
