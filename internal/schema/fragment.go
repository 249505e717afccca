// Package schema defines the structured answer contract and decodes
// partial answer objects emitted by the assistant model.
package schema

import (
	"github.com/tidwall/gjson"
)

// Link is a single reference link attached to an answer.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// LinksObj is the links side-object of an answer.
type LinksObj struct {
	Links []Link `json:"links"`
}

// Fragment is one partial snapshot of the evolving answer object.
// Any prefix of the stream may omit any field, so everything is optional:
// Content is nil when the fragment carried no content key, and the
// side-object flags are false unless the object was present.
type Fragment struct {
	Content           *string
	Links             *LinksObj
	NeedsHelp         bool
	IsProspect        bool
	FollowUpQuestions []string
}

// HasContent reports whether the fragment carries a non-empty content value.
func (f Fragment) HasContent() bool {
	return f.Content != nil && *f.Content != ""
}

// IsEmpty reports whether the fragment carries no update at all.
func (f Fragment) IsEmpty() bool {
	return f.Content == nil && f.Links == nil && !f.NeedsHelp &&
		!f.IsProspect && len(f.FollowUpQuestions) == 0
}

// ParseFragment extracts a Fragment from a raw JSON document.
// Decoding is tolerant: a malformed or absent field is treated as
// "no update" for that field and never produces an error, so a bad
// optional field can never abort a turn.
func ParseFragment(raw string) Fragment {
	var f Fragment

	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return f
	}

	if c := doc.Get("content"); c.Type == gjson.String {
		s := c.String()
		f.Content = &s
	}

	if l := doc.Get("linksObj"); l.IsObject() {
		f.Links = parseLinksObj(l)
	}

	// Presence is the signal for these two; their internal shape carries
	// no decision-relevant fields.
	if doc.Get("needsHelpObj").IsObject() {
		f.NeedsHelp = true
	}
	if doc.Get("isProspectObj").IsObject() {
		f.IsProspect = true
	}

	if q := doc.Get("followUpQuestions"); q.IsArray() {
		f.FollowUpQuestions = parseQuestions(q)
	}

	return f
}

// parseLinksObj normalizes a linksObj value, skipping entries that are
// not objects with string label and url fields.
func parseLinksObj(obj gjson.Result) *LinksObj {
	out := &LinksObj{}

	links := obj.Get("links")
	if !links.IsArray() {
		return out
	}

	links.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		label := entry.Get("label")
		url := entry.Get("url")
		if label.Type != gjson.String || url.Type != gjson.String || url.String() == "" {
			return true
		}
		out.Links = append(out.Links, Link{Label: label.String(), URL: url.String()})
		return true
	})

	return out
}

// parseQuestions filters the follow-up array down to its string entries,
// dropping nulls and other junk the model may emit mid-stream.
func parseQuestions(arr gjson.Result) []string {
	var out []string
	arr.ForEach(func(_, entry gjson.Result) bool {
		if entry.Type == gjson.String && entry.String() != "" {
			out = append(out, entry.String())
		}
		return true
	})
	return out
}
