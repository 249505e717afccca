package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mcosta/helpchat/internal/engine"
	apierrors "github.com/mcosta/helpchat/internal/errors"
	"github.com/mcosta/helpchat/internal/schema"
)

func str(s string) *string { return &s }

// scriptedProducer plays back a fixed fragment sequence, optionally
// failing at the end instead of completing.
type scriptedProducer struct {
	fragments []schema.Fragment
	failWith  error

	mu        sync.Mutex
	histories [][]Message
	onCall    func(history []Message)
}

func (p *scriptedProducer) StreamAnswer(_ context.Context, history []Message) (<-chan schema.Fragment, <-chan error) {
	p.mu.Lock()
	snapshot := make([]Message, len(history))
	copy(snapshot, history)
	p.histories = append(p.histories, snapshot)
	p.mu.Unlock()

	if p.onCall != nil {
		p.onCall(history)
	}

	fragCh := make(chan schema.Fragment)
	errCh := make(chan error, 1)
	go func() {
		for _, f := range p.fragments {
			fragCh <- f
		}
		if p.failWith != nil {
			errCh <- p.failWith
			return
		}
		close(fragCh)
		close(errCh)
	}()
	return fragCh, errCh
}

func (p *scriptedProducer) callHistories() [][]Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.histories
}

// recordingListener captures lifecycle events in order.
type recordingListener struct {
	mu        sync.Mutex
	started   []string
	snapshots []engine.Snapshot
	completed []engine.View
	failed    []error
}

func (l *recordingListener) TurnStarted(entryID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, entryID)
}

func (l *recordingListener) SnapshotUpdated(_ string, snap engine.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshots = append(l.snapshots, snap)
}

func (l *recordingListener) TurnCompleted(_ string, view engine.View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed = append(l.completed, view)
}

func (l *recordingListener) TurnFailed(_ string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = append(l.failed, err)
}

// ============================================================================
// SubmitTurn Tests
// ============================================================================

func TestSubmitTurn_OptimisticLedgerAppends(t *testing.T) {
	// Block the producer until we have inspected the ledgers.
	release := make(chan struct{})
	producer := &scriptedProducer{
		fragments: []schema.Fragment{{Content: str("done")}},
		onCall:    func([]Message) { <-release },
	}
	syn := NewSynchronizer(producer, nil)

	turn, err := syn.SubmitTurn("What is helpchat?")
	if err != nil {
		t.Fatalf("SubmitTurn() error = %v", err)
	}

	// Before any fragment arrives: one user message in history, two
	// entries on the UI ledger, the assistant one in progress.
	msgs := syn.Messages()
	if len(msgs) != 1 || msgs[0].Role != RoleUser || msgs[0].Content != "What is helpchat?" {
		t.Fatalf("Messages = %+v, want one user message", msgs)
	}

	entries := syn.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].View.Content != "What is helpchat?" {
		t.Errorf("entries[0] = %+v, want rendered user entry", entries[0])
	}
	if entries[1].Role != RoleAssistant || !entries[1].InProgress {
		t.Errorf("entries[1] = %+v, want in-progress assistant entry", entries[1])
	}
	if entries[1].ID != turn.EntryID {
		t.Errorf("turn.EntryID = %s does not match ledger entry %s", turn.EntryID, entries[1].ID)
	}

	close(release)
	if err := turn.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestSubmitTurn_SingleInFlight(t *testing.T) {
	release := make(chan struct{})
	producer := &scriptedProducer{
		fragments: []schema.Fragment{{Content: str("ok")}},
		onCall:    func([]Message) { <-release },
	}
	syn := NewSynchronizer(producer, nil)

	turn, err := syn.SubmitTurn("first")
	if err != nil {
		t.Fatalf("SubmitTurn() error = %v", err)
	}

	if _, err := syn.SubmitTurn("second"); !errors.Is(err, apierrors.ErrTurnInFlight) {
		t.Errorf("second SubmitTurn() error = %v, want ErrTurnInFlight", err)
	}

	// The rejected submission must not touch the ledgers.
	if len(syn.Messages()) != 1 {
		t.Errorf("rejected turn leaked into history: %+v", syn.Messages())
	}

	close(release)
	if err := turn.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	// After the first turn settles, new submissions are accepted.
	turn2, err := syn.SubmitTurn("second again")
	if err != nil {
		t.Fatalf("SubmitTurn() after completion error = %v", err)
	}
	turn2.Wait()
}

func TestSubmitTurn_HistoryFidelity(t *testing.T) {
	producer := &scriptedProducer{fragments: []schema.Fragment{
		{Content: str("Hi")},
		{Content: str("Hi there")},
	}}
	syn := NewSynchronizer(producer, nil)

	turn, err := syn.SubmitTurn("hello")
	if err != nil {
		t.Fatalf("SubmitTurn() error = %v", err)
	}
	if err := turn.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	msgs := syn.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len(Messages) = %d, want exactly user + assistant", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Errorf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].Content != "Hi there" {
		t.Errorf("assistant content = %q, want the finalized display text", msgs[1].Content)
	}

	entries := syn.Entries()
	final := entries[len(entries)-1]
	if final.InProgress || final.Failed {
		t.Errorf("final entry not terminal: %+v", final)
	}
	if final.View.Content != "Hi there" {
		t.Errorf("final view content = %q", final.View.Content)
	}
}

func TestSubmitTurn_EmptyAnswerPersistsFallbackText(t *testing.T) {
	// Stream exhausts without any content: rule 1 replaces the display
	// text, and that replacement is what history records.
	producer := &scriptedProducer{fragments: []schema.Fragment{
		{NeedsHelp: true},
	}}
	syn := NewSynchronizer(producer, nil)

	turn, _ := syn.SubmitTurn("anyone there?")
	if err := turn.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	msgs := syn.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(msgs))
	}
	if msgs[1].Content != engine.FallbackContent {
		t.Errorf("assistant content = %q, want the fallback string", msgs[1].Content)
	}

	final := syn.Entries()[1]
	if !final.View.Fallback || final.View.Card != engine.CardSupport {
		t.Errorf("final view = %+v, want fallback with support card", final.View)
	}
}

func TestSubmitTurn_FailureIsolation(t *testing.T) {
	listener := &recordingListener{}
	producer := &scriptedProducer{failWith: errors.New("connection reset")}
	syn := NewSynchronizer(producer, listener)

	turn, err := syn.SubmitTurn("doomed question")
	if err != nil {
		t.Fatalf("SubmitTurn() error = %v", err)
	}
	if err := turn.Wait(); err == nil {
		t.Fatal("Wait() should surface the stream failure")
	}

	// Exactly one new user message, zero assistant messages.
	msgs := syn.Messages()
	if len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Fatalf("Messages = %+v, want only the user message", msgs)
	}

	// The entry is the explicit "no display" terminal state.
	entry := syn.Entries()[1]
	if !entry.Failed || entry.InProgress {
		t.Errorf("entry = %+v, want failed terminal state", entry)
	}
	if entry.View.Content != "" {
		t.Errorf("failed entry should have no display, got %q", entry.View.Content)
	}

	if len(listener.failed) != 1 || len(listener.completed) != 0 {
		t.Errorf("listener: failed=%d completed=%d, want 1/0", len(listener.failed), len(listener.completed))
	}

	// A subsequent successful turn still replays the unanswered question.
	producer.failWith = nil
	producer.fragments = []schema.Fragment{{Content: str("recovered")}}

	turn2, err := syn.SubmitTurn("try again")
	if err != nil {
		t.Fatalf("SubmitTurn() after failure error = %v", err)
	}
	if err := turn2.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	histories := producer.callHistories()
	last := histories[len(histories)-1]
	if len(last) != 2 {
		t.Fatalf("model context = %d messages, want doomed question + retry", len(last))
	}
	if last[0].Content != "doomed question" || last[1].Content != "try again" {
		t.Errorf("model context = %+v", last)
	}
}

func TestSubmitTurn_SnapshotsUpdateEntryInPlace(t *testing.T) {
	listener := &recordingListener{}
	producer := &scriptedProducer{fragments: []schema.Fragment{
		{Content: str("Hi")},
		{Content: str("Hi there")},
		{FollowUpQuestions: []string{"Q?"}},
	}}
	syn := NewSynchronizer(producer, listener)

	turn, _ := syn.SubmitTurn("hello")
	if err := turn.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	// One snapshot per fragment, in order, monotonic content.
	if len(listener.snapshots) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(listener.snapshots))
	}
	want := []string{"Hi", "Hi there", "Hi there"}
	for i, w := range want {
		if listener.snapshots[i].Content != w {
			t.Errorf("snapshot[%d] = %q, want %q", i, listener.snapshots[i].Content, w)
		}
	}

	// Mid-turn updates never inserted a new entry.
	if len(syn.Entries()) != 2 {
		t.Errorf("len(Entries) = %d, want 2", len(syn.Entries()))
	}

	if len(listener.started) != 1 || len(listener.completed) != 1 {
		t.Errorf("listener: started=%d completed=%d", len(listener.started), len(listener.completed))
	}
	if len(listener.completed) == 1 && len(listener.completed[0].FollowUpQuestions) != 1 {
		t.Errorf("completed view follow-ups = %v", listener.completed[0].FollowUpQuestions)
	}
}

// ============================================================================
// Follow-up Dispatch Tests
// ============================================================================

func TestDispatchFollowUp_RoundTrip(t *testing.T) {
	producer := &scriptedProducer{fragments: []schema.Fragment{
		{Content: str("answer")},
	}}
	syn := NewSynchronizer(producer, nil)

	turn, _ := syn.SubmitTurn("original question")
	turn.Wait()

	// Verify the user entry is on the ledger before the producer is even
	// consulted for the follow-up turn.
	producer.onCall = func([]Message) {
		entries := syn.Entries()
		userEntry := entries[len(entries)-2]
		if userEntry.Role != RoleUser || userEntry.View.Content != "How do I start?" {
			t.Errorf("follow-up user entry not rendered before stream: %+v", userEntry)
		}
	}

	followUp, err := syn.DispatchFollowUp("How do I start?")
	if err != nil {
		t.Fatalf("DispatchFollowUp() error = %v", err)
	}
	if err := followUp.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	msgs := syn.Messages()
	if msgs[2].Role != RoleUser || msgs[2].Content != "How do I start?" {
		t.Errorf("follow-up message = %+v, want the literal question text", msgs[2])
	}

	histories := producer.callHistories()
	last := histories[len(histories)-1]
	if last[len(last)-1].Content != "How do I start?" {
		t.Errorf("model context tail = %q, want the follow-up question", last[len(last)-1].Content)
	}
}
