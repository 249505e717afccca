package engine

import (
	"context"

	apierrors "github.com/mcosta/helpchat/internal/errors"
	"github.com/mcosta/helpchat/internal/schema"
)

// Snapshot is the live view of the accumulated answer text. Side-objects
// never appear mid-stream; only the text is live-rendered.
type Snapshot struct {
	Content string
}

// Publisher receives one snapshot per consumed fragment, strictly in
// consumption order.
type Publisher func(Snapshot)

// Consume folds a fragment stream into its terminal state, publishing a
// snapshot after every fragment. Fragments are processed strictly in
// arrival order; there is no batching, since content replacement depends
// on monotonic recency.
//
// The stream ends when the fragment channel closes (normal exhaustion) or
// when an error arrives on errs (fatal to this turn only). The returned
// state is the frozen accumulation at that point.
func Consume(ctx context.Context, fragments <-chan schema.Fragment, errs <-chan error, publish Publisher) (ResponseState, error) {
	var state ResponseState

	for {
		select {
		case <-ctx.Done():
			return state, apierrors.NewStreamError("consumption cancelled", ctx.Err())

		case err, ok := <-errs:
			if !ok {
				// Producer closed the error channel without an error;
				// keep draining fragments until they are exhausted too.
				errs = nil
				continue
			}
			if err != nil {
				return state, apierrors.NewStreamError("producer failed", err)
			}

		case frag, ok := <-fragments:
			if !ok {
				return state, nil
			}
			state = Merge(state, frag)
			if publish != nil {
				publish(Snapshot{Content: state.Content})
			}
		}
	}
}
