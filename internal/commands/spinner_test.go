package commands

import (
	"testing"
	"time"
)

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	s := newSpinner("Waiting")
	s.start()
	time.Sleep(50 * time.Millisecond)
	s.stopWithSuccess("done")
}

func TestSpinnerLifecycle_StopWithError(t *testing.T) {
	s := newSpinner("Waiting")
	s.start()
	time.Sleep(30 * time.Millisecond)
	s.stopWithError()
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinner("Waiting")
	s.start()
	s.setMessage("Receiving answer (42 chars)")
	time.Sleep(30 * time.Millisecond)
	s.stopOnce()
}

func TestSpinnerStopOnceIdempotent(t *testing.T) {
	s := newSpinner("Waiting")
	s.start()
	s.stopOnce()
	// Second stop must not panic or deadlock
	s.stopOnce()
	s.stopWithError()
}
