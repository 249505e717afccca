package conversation

import (
	"context"
	"log"
	"sync"

	"github.com/mcosta/helpchat/internal/engine"
	apierrors "github.com/mcosta/helpchat/internal/errors"
	"github.com/mcosta/helpchat/internal/schema"
)

// Producer supplies the asynchronous fragment stream for one turn. The
// fragment channel closing signals normal exhaustion; a value on the
// error channel signals abnormal termination. Fragments arrive in order.
type Producer interface {
	StreamAnswer(ctx context.Context, history []Message) (<-chan schema.Fragment, <-chan error)
}

// Listener receives the streaming lifecycle events of a turn. TurnStarted
// fires synchronously inside SubmitTurn; the rest fire on the consumer
// goroutine, snapshots strictly in consumption order, then exactly one of
// TurnCompleted or TurnFailed.
type Listener interface {
	TurnStarted(entryID string)
	SnapshotUpdated(entryID string, snap engine.Snapshot)
	TurnCompleted(entryID string, view engine.View)
	TurnFailed(entryID string, err error)
}

// Turn is the handle returned by SubmitTurn while the stream runs.
type Turn struct {
	// UserEntryID and EntryID identify the optimistic user entry and the
	// in-progress assistant entry in the UI ledger.
	UserEntryID string
	EntryID     string

	done chan struct{}
	err  error
}

// Wait blocks until the turn reaches a terminal state and returns the
// stream error, if any. A fallback-text answer is a success, not an error.
func (t *Turn) Wait() error {
	<-t.done
	return t.err
}

// Synchronizer drives the turn lifecycle: it appends to both ledgers,
// feeds the engine, and commits terminal state. It is the sole mutator of
// its Conversation.
type Synchronizer struct {
	mu       sync.Mutex
	producer Producer
	listener Listener
	conv     *Conversation
	inFlight bool
}

// NewSynchronizer creates a synchronizer over a fresh conversation.
func NewSynchronizer(producer Producer, listener Listener) *Synchronizer {
	return &Synchronizer{
		producer: producer,
		listener: listener,
		conv:     NewConversation(),
	}
}

// Conversation exposes the ledgers for rendering and persistence.
func (s *Synchronizer) Conversation() *Conversation {
	return s.conv
}

// Messages returns a copy of the durable history.
func (s *Synchronizer) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Messages()
}

// Entries returns a copy of the renderable entries.
func (s *Synchronizer) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Entries()
}

// InFlight reports whether a turn is currently being streamed.
func (s *Synchronizer) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// SubmitTurn appends a user message to history, allocates an in-progress
// assistant entry, and starts fragment consumption asynchronously. It
// returns immediately with the turn handle so the caller can render a
// loading state without blocking.
//
// At most one turn may be in flight; a second submission returns
// ErrTurnInFlight and leaves both ledgers untouched.
func (s *Synchronizer) SubmitTurn(userText string) (*Turn, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, apierrors.ErrTurnInFlight
	}

	userMsg := s.conv.appendMessage(RoleUser, userText)
	s.conv.appendEntry(Entry{
		ID:   userMsg.ID,
		Role: RoleUser,
		View: engine.View{Content: userText},
	})

	entryID := newID()
	s.conv.appendEntry(Entry{
		ID:         entryID,
		Role:       RoleAssistant,
		InProgress: true,
	})

	s.inFlight = true
	history := s.conv.Messages()
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.TurnStarted(entryID)
	}

	turn := &Turn{
		UserEntryID: userMsg.ID,
		EntryID:     entryID,
		done:        make(chan struct{}),
	}
	go s.consume(turn, history)

	return turn, nil
}

// DispatchFollowUp turns a selected follow-up question back into a new
// user turn. The user entry is on the ledger before this returns, so the
// question renders independent of stream latency.
func (s *Synchronizer) DispatchFollowUp(question string) (*Turn, error) {
	return s.SubmitTurn(question)
}

// consume runs on its own goroutine and owns the turn until terminal state.
func (s *Synchronizer) consume(turn *Turn, history []Message) {
	defer close(turn.done)

	fragments, errs := s.producer.StreamAnswer(context.Background(), history)

	state, err := engine.Consume(context.Background(), fragments, errs, func(snap engine.Snapshot) {
		s.publishSnapshot(turn.EntryID, snap)
	})

	if err != nil {
		// Fatal to this turn only: the entry becomes "no display" and
		// history keeps the unanswered user message.
		log.Printf("turn %s failed: %v", turn.EntryID, err)
		turn.err = err

		s.mu.Lock()
		if e := s.conv.entryByID(turn.EntryID); e != nil {
			e.InProgress = false
			e.Failed = true
			e.View = engine.View{}
		}
		s.inFlight = false
		s.mu.Unlock()

		if s.listener != nil {
			s.listener.TurnFailed(turn.EntryID, err)
		}
		return
	}

	view := engine.Finalize(state)

	// Terminal entry and assistant message commit together under the
	// same critical section.
	s.mu.Lock()
	if e := s.conv.entryByID(turn.EntryID); e != nil {
		e.InProgress = false
		e.View = view
	}
	s.conv.appendMessage(RoleAssistant, view.Content)
	s.inFlight = false
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.TurnCompleted(turn.EntryID, view)
	}
}

// publishSnapshot updates the in-flight entry in place; a new entry is
// never inserted mid-turn.
func (s *Synchronizer) publishSnapshot(entryID string, snap engine.Snapshot) {
	s.mu.Lock()
	if e := s.conv.entryByID(entryID); e != nil && e.InProgress {
		e.View.Content = snap.Content
	}
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.SnapshotUpdated(entryID, snap)
	}
}
