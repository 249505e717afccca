package engine

import (
	"github.com/mcosta/helpchat/internal/schema"
)

// FallbackContent replaces an empty terminal answer. An empty response is
// treated as a hard failure of the model, so the user always sees this
// fixed text plus a support affordance, never a raw error.
const FallbackContent = "Sorry, I am unable to provide a response at this time. Try again, or contact support for assistance."

// CardKind identifies the supplemental card attached to a finalized view.
// At most one card is ever shown.
type CardKind int

const (
	CardNone CardKind = iota
	// CardSupport points the user at support contact.
	CardSupport
	// CardDemo invites a sales prospect to schedule a demo or see pricing.
	CardDemo
)

func (c CardKind) String() string {
	switch c {
	case CardSupport:
		return "support"
	case CardDemo:
		return "demo"
	default:
		return "none"
	}
}

// View is the resolved, renderable shape of a turn's final output.
type View struct {
	Content           string
	Card              CardKind
	Links             []schema.Link
	FollowUpQuestions []string

	// Fallback is set when the terminal content was empty and Content
	// holds FallbackContent instead of model output.
	Fallback bool
}

// Finalize selects the one terminal presentation from the frozen state.
// Pure, invoked exactly once per turn after the fragment stream ends.
//
// Priority, first match wins: empty content dominates everything, then
// needsHelp strictly dominates isProspect, which strictly dominates links.
func Finalize(state ResponseState) View {
	if state.Content == "" {
		// Hard failure: no follow-ups and no links regardless of what the
		// stream collected.
		return View{
			Content:  FallbackContent,
			Card:     CardSupport,
			Fallback: true,
		}
	}

	if state.NeedsHelp {
		return View{
			Content:           state.Content,
			Card:              CardSupport,
			FollowUpQuestions: state.FollowUpQuestions,
		}
	}

	if state.IsProspect {
		return View{
			Content:           state.Content,
			Card:              CardDemo,
			FollowUpQuestions: state.FollowUpQuestions,
		}
	}

	if state.HasLinks() {
		return View{
			Content:           state.Content,
			Links:             state.Links.Links,
			FollowUpQuestions: state.FollowUpQuestions,
		}
	}

	return View{
		Content:           state.Content,
		FollowUpQuestions: state.FollowUpQuestions,
	}
}
