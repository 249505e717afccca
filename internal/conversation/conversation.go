// Package conversation maintains the two ledgers of a chat: the durable
// message history replayed to the model, and the ephemeral list of
// renderable entries shown to the user.
package conversation

import (
	"github.com/google/uuid"

	"github.com/mcosta/helpchat/internal/engine"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one durable history entry. Immutable once appended; this is
// the only state replayed back to the model as context. Side-objects and
// follow-up questions are presentation-only and never persist here.
type Message struct {
	ID      string
	Role    Role
	Content string
}

// Entry is one renderable UI entry. An assistant entry is mutated in
// place (by ID) while its turn is in flight and frozen at turn end.
type Entry struct {
	ID   string
	Role Role
	View engine.View

	// InProgress marks an assistant entry whose stream is still running.
	InProgress bool
	// Failed marks the "no display" terminal state of a failed turn,
	// distinct from the fallback-text view of an empty answer.
	Failed bool
}

// Conversation owns both ledgers. It is not safe for concurrent use on
// its own; the Synchronizer is its sole mutator.
type Conversation struct {
	messages []Message
	entries  []Entry
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Messages returns a copy of the durable history.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Entries returns a copy of the renderable entries.
func (c *Conversation) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of durable messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

func (c *Conversation) appendMessage(role Role, content string) Message {
	msg := Message{ID: newID(), Role: role, Content: content}
	c.messages = append(c.messages, msg)
	return msg
}

func (c *Conversation) appendEntry(e Entry) {
	c.entries = append(c.entries, e)
}

// entryByID returns a pointer into the ledger, or nil.
func (c *Conversation) entryByID(id string) *Entry {
	for i := range c.entries {
		if c.entries[i].ID == id {
			return &c.entries[i]
		}
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}
