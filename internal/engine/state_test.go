package engine

import (
	"testing"

	"github.com/mcosta/helpchat/internal/schema"
)

func str(s string) *string { return &s }

// ============================================================================
// Merge Tests
// ============================================================================

func TestMerge_ContentReplacesNotAppends(t *testing.T) {
	state := ResponseState{}
	state = Merge(state, schema.Fragment{Content: str("Hi")})
	state = Merge(state, schema.Fragment{Content: str("Hi there")})

	if state.Content != "Hi there" {
		t.Errorf("Content = %q, want %q (replace, not append)", state.Content, "Hi there")
	}
}

func TestMerge_EmptyContentIsNoUpdate(t *testing.T) {
	state := ResponseState{Content: "Hello"}
	state = Merge(state, schema.Fragment{Content: str("")})

	if state.Content != "Hello" {
		t.Errorf("Content = %q, want prior value preserved", state.Content)
	}
}

func TestMerge_NilContentIsNoUpdate(t *testing.T) {
	state := ResponseState{Content: "Hello"}
	state = Merge(state, schema.Fragment{NeedsHelp: true})

	if state.Content != "Hello" {
		t.Errorf("Content = %q, want prior value preserved", state.Content)
	}
}

// Merge monotonicity: the final content equals the last non-empty content
// in the sequence; if none is non-empty, content stays "".
func TestMerge_Monotonicity(t *testing.T) {
	tests := []struct {
		name     string
		contents []*string
		want     string
	}{
		{"all empty", []*string{nil, str(""), nil}, ""},
		{"single", []*string{str("a")}, "a"},
		{"growing", []*string{str("a"), str("ab"), str("abc")}, "abc"},
		{"late empty ignored", []*string{str("abc"), str(""), nil}, "abc"},
		{"shrinking still replaces", []*string{str("abc"), str("xy")}, "xy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var state ResponseState
			for _, c := range tt.contents {
				state = Merge(state, schema.Fragment{Content: c})
			}
			if state.Content != tt.want {
				t.Errorf("Content = %q, want %q", state.Content, tt.want)
			}
		})
	}
}

// Side-object last-write-wins: different keys accumulate independently and
// are never mutually overwritten.
func TestMerge_SideObjectsIndependent(t *testing.T) {
	var state ResponseState
	state = Merge(state, schema.Fragment{NeedsHelp: true})
	state = Merge(state, schema.Fragment{IsProspect: true})

	if !state.NeedsHelp {
		t.Error("NeedsHelp should survive a later fragment that omits it")
	}
	if !state.IsProspect {
		t.Error("IsProspect should be set by the later fragment")
	}
}

func TestMerge_LinksLastWriteWins(t *testing.T) {
	first := &schema.LinksObj{Links: []schema.Link{{Label: "Old", URL: "https://old"}}}
	second := &schema.LinksObj{Links: []schema.Link{{Label: "New", URL: "https://new"}}}

	var state ResponseState
	state = Merge(state, schema.Fragment{Links: first})
	state = Merge(state, schema.Fragment{Links: second})

	if state.Links != second {
		t.Error("Expected the last links object to win")
	}

	// A fragment without links leaves the prior value untouched.
	state = Merge(state, schema.Fragment{Content: str("hi")})
	if state.Links != second {
		t.Error("Fragment without links must not clear prior links")
	}
}

func TestMerge_FollowUpsOnlyReplacedWhenNonEmpty(t *testing.T) {
	var state ResponseState
	state = Merge(state, schema.Fragment{FollowUpQuestions: []string{"Q1?", "Q2?"}})
	state = Merge(state, schema.Fragment{Content: str("hi")})

	if len(state.FollowUpQuestions) != 2 {
		t.Fatalf("len(FollowUpQuestions) = %d, want 2", len(state.FollowUpQuestions))
	}

	state = Merge(state, schema.Fragment{FollowUpQuestions: []string{"Q3?"}})
	if len(state.FollowUpQuestions) != 1 || state.FollowUpQuestions[0] != "Q3?" {
		t.Errorf("FollowUpQuestions = %v, want [Q3?]", state.FollowUpQuestions)
	}

	state = Merge(state, schema.Fragment{FollowUpQuestions: []string{}})
	if len(state.FollowUpQuestions) != 1 {
		t.Error("Empty follow-up list must not clear the prior list")
	}
}

func TestMerge_PriorStateUntouched(t *testing.T) {
	prior := ResponseState{Content: "before"}
	_ = Merge(prior, schema.Fragment{Content: str("after"), NeedsHelp: true})

	if prior.Content != "before" || prior.NeedsHelp {
		t.Error("Merge must not mutate the prior state")
	}
}

func TestResponseState_HasLinks(t *testing.T) {
	if (ResponseState{}).HasLinks() {
		t.Error("Zero state should have no links")
	}
	if (ResponseState{Links: &schema.LinksObj{}}).HasLinks() {
		t.Error("Empty links object should not count")
	}
	withLinks := ResponseState{Links: &schema.LinksObj{Links: []schema.Link{{Label: "x", URL: "https://x"}}}}
	if !withLinks.HasLinks() {
		t.Error("State with links should report HasLinks")
	}
}
