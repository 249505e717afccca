package engine

import (
	"context"
	"errors"
	"testing"

	apierrors "github.com/mcosta/helpchat/internal/errors"
	"github.com/mcosta/helpchat/internal/schema"
)

// ============================================================================
// Consume Tests
// ============================================================================

func feedFragments(frags ...schema.Fragment) (<-chan schema.Fragment, <-chan error) {
	fragCh := make(chan schema.Fragment, len(frags))
	errCh := make(chan error)
	for _, f := range frags {
		fragCh <- f
	}
	close(fragCh)
	close(errCh)
	return fragCh, errCh
}

func TestConsume_PublishesSnapshotPerFragment(t *testing.T) {
	frags, errs := feedFragments(
		schema.Fragment{Content: str("Hi")},
		schema.Fragment{Content: str("Hi there")},
		schema.Fragment{FollowUpQuestions: []string{"Q?"}},
	)

	var snapshots []Snapshot
	state, err := Consume(context.Background(), frags, errs, func(s Snapshot) {
		snapshots = append(snapshots, s)
	})
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	if len(snapshots) != 3 {
		t.Fatalf("len(snapshots) = %d, want one per fragment", len(snapshots))
	}

	// Snapshots arrive strictly in consumption order.
	want := []string{"Hi", "Hi there", "Hi there"}
	for i, w := range want {
		if snapshots[i].Content != w {
			t.Errorf("snapshots[%d].Content = %q, want %q", i, snapshots[i].Content, w)
		}
	}

	if state.Content != "Hi there" {
		t.Errorf("terminal Content = %q, want %q", state.Content, "Hi there")
	}
	if len(state.FollowUpQuestions) != 1 {
		t.Errorf("terminal follow-ups = %v", state.FollowUpQuestions)
	}
}

func TestConsume_EmptyStream(t *testing.T) {
	frags, errs := feedFragments()

	published := 0
	state, err := Consume(context.Background(), frags, errs, func(Snapshot) { published++ })
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if published != 0 {
		t.Errorf("published = %d snapshots for an empty stream", published)
	}
	if state.Content != "" {
		t.Errorf("Content = %q, want empty", state.Content)
	}
}

func TestConsume_NilPublisher(t *testing.T) {
	frags, errs := feedFragments(schema.Fragment{Content: str("Hi")})

	state, err := Consume(context.Background(), frags, errs, nil)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if state.Content != "Hi" {
		t.Errorf("Content = %q, want Hi", state.Content)
	}
}

func TestConsume_ProducerError(t *testing.T) {
	fragCh := make(chan schema.Fragment, 1)
	errCh := make(chan error, 1)

	fragCh <- schema.Fragment{Content: str("partial")}
	cause := errors.New("connection reset")

	var snapshots []Snapshot
	done := make(chan struct{})
	var state ResponseState
	var err error
	go func() {
		defer close(done)
		state, err = Consume(context.Background(), fragCh, errCh, func(s Snapshot) {
			snapshots = append(snapshots, s)
			if len(snapshots) == 1 {
				errCh <- cause
			}
		})
	}()
	<-done

	if err == nil {
		t.Fatal("Expected an error from a failed producer")
	}
	if !apierrors.IsStreamError(err) {
		t.Errorf("error = %v, want a stream error", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error should wrap the producer cause, got %v", err)
	}

	// The state accumulated before the failure is still returned so the
	// caller can decide what to do with it.
	if state.Content != "partial" {
		t.Errorf("Content = %q, want the pre-failure accumulation", state.Content)
	}
}

func TestConsume_ContextCancelled(t *testing.T) {
	fragCh := make(chan schema.Fragment)
	errCh := make(chan error)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Consume(ctx, fragCh, errCh, nil)
	if err == nil {
		t.Fatal("Expected an error after cancellation")
	}
	if !apierrors.IsStreamError(err) {
		t.Errorf("error = %v, want a stream error", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got %v", err)
	}
}

func TestConsume_ErrChannelClosedEarly(t *testing.T) {
	fragCh := make(chan schema.Fragment, 2)
	errCh := make(chan error)
	close(errCh)

	fragCh <- schema.Fragment{Content: str("a")}
	fragCh <- schema.Fragment{Content: str("ab")}
	close(fragCh)

	state, err := Consume(context.Background(), fragCh, errCh, nil)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if state.Content != "ab" {
		t.Errorf("Content = %q, want ab", state.Content)
	}
}
