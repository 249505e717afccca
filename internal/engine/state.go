// Package engine reconciles the stream of partial answer fragments into a
// single accumulated response state and selects the terminal presentation.
//
// Merge and Finalize are pure value transformations; all rendering and
// ledger side effects live at the conversation/TUI boundary. That split is
// what keeps the reconciliation logic testable without a terminal.
package engine

import (
	"github.com/mcosta/helpchat/internal/schema"
)

// ResponseState is the running accumulation of a single answer stream.
type ResponseState struct {
	// Content is the last non-empty content seen, never a concatenation:
	// the model emits the full text-so-far on every tick.
	Content string

	// Side-objects, last-write-wins per key. The upstream contract says
	// they are mutually exclusive, but the accumulator does not enforce
	// that; whichever keys arrived are kept independently and the
	// finalizer's priority order resolves them.
	Links      *schema.LinksObj
	NeedsHelp  bool
	IsProspect bool

	FollowUpQuestions []string
}

// Merge folds one fragment into the prior state. It is total and
// side-effect free: malformed or absent fields are "no update", nothing
// here can fail.
func Merge(prior ResponseState, frag schema.Fragment) ResponseState {
	next := prior

	if frag.HasContent() {
		next.Content = *frag.Content
	}

	if frag.Links != nil {
		next.Links = frag.Links
	}
	if frag.NeedsHelp {
		next.NeedsHelp = true
	}
	if frag.IsProspect {
		next.IsProspect = true
	}

	if len(frag.FollowUpQuestions) > 0 {
		next.FollowUpQuestions = frag.FollowUpQuestions
	}

	return next
}

// HasLinks reports whether the state carries a non-empty links object.
func (s ResponseState) HasLinks() bool {
	return s.Links != nil && len(s.Links.Links) > 0
}
