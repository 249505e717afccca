package api

import (
	"context"
	"sync"

	"github.com/mcosta/helpchat/internal/conversation"
	"github.com/mcosta/helpchat/internal/schema"
)

// MockClient is a scripted stand-in for Client used in tests and demos.
// Each call replays the configured fragments and optional terminal
// error, and records the history it was handed.
type MockClient struct {
	mu sync.Mutex

	// Fragments to replay per call.
	Fragments []schema.Fragment
	// Err, when set, is sent after the fragments.
	Err error
	// OnCall, when set, runs before the replay starts.
	OnCall func(call int)

	calls     int
	histories [][]conversation.Message
}

var _ conversation.Producer = (*MockClient)(nil)

// StreamAnswer implements conversation.Producer.
func (m *MockClient) StreamAnswer(ctx context.Context, history []conversation.Message) (<-chan schema.Fragment, <-chan error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	copied := make([]conversation.Message, len(history))
	copy(copied, history)
	m.histories = append(m.histories, copied)
	fragments := append([]schema.Fragment(nil), m.Fragments...)
	replayErr := m.Err
	onCall := m.OnCall
	m.mu.Unlock()

	out := make(chan schema.Fragment)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		if onCall != nil {
			onCall(call)
		}
		for _, frag := range fragments {
			select {
			case out <- frag:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		if replayErr != nil {
			errs <- replayErr
		}
	}()

	return out, errs
}

// Calls reports how many times StreamAnswer has run.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Histories returns the history slice captured for each call.
func (m *MockClient) Histories() [][]conversation.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]conversation.Message, len(m.histories))
	copy(out, m.histories)
	return out
}
