package attack

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

var errSentinel = errors.New("sentinel")

func TestFailure_KindAndUnwrap(t *testing.T) {
	f := Precondition("demo", errSentinel, "value %d is bad", 7)

	if f.Kind != KindPrecondition {
		t.Fatalf("Expected precondition kind, got %s", f.Kind)
	}
	if f.Error() != "demo: precondition violation: value 7 is bad: sentinel" {
		t.Errorf("Unexpected message: %q", f.Error())
	}

	wrapped := errors.Wrap(f, "outer")
	if !errors.Is(wrapped, errSentinel) {
		t.Error("errors.Is should see the sentinel through the failure")
	}
	if KindOf(wrapped) != KindPrecondition {
		t.Errorf("KindOf through wrap: got %s", KindOf(wrapped))
	}
	if !IsKind(wrapped, KindPrecondition) {
		t.Error("IsKind should match")
	}
	if IsKind(wrapped, KindSearchExhausted) {
		t.Error("IsKind should not match another kind")
	}
}

func TestKindOf_PlainErrors(t *testing.T) {
	if KindOf(nil) != KindNone {
		t.Error("nil error should be KindNone")
	}
	if KindOf(errors.New("plain")) != KindNone {
		t.Error("plain error should be KindNone")
	}
	if IsKind(nil, KindNone) {
		t.Error("IsKind(nil, ...) should be false")
	}
}

func TestBudget_Allow(t *testing.T) {
	b := Budget{Max: 3}
	for i := 0; i < 3; i++ {
		if !b.Allow(i) {
			t.Fatalf("iteration %d should be allowed", i)
		}
	}
	if b.Allow(3) {
		t.Error("iteration 3 should exceed the cap")
	}

	unbounded := Budget{}
	if !unbounded.Allow(1 << 30) {
		t.Error("zero Max should not cap")
	}
}

func TestBudget_Stop(t *testing.T) {
	polls := 0
	b := Budget{
		CheckEvery: 10,
		Stop: func() bool {
			polls++
			return polls > 2
		},
	}

	stoppedAt := -1
	for i := 0; i < 100; i++ {
		if !b.Allow(i) {
			stoppedAt = i
			break
		}
	}
	if stoppedAt != 20 {
		t.Errorf("Expected stop at iteration 20, got %d", stoppedAt)
	}
}

func TestStopOnDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := StopOnDone(ctx)
	if stop() {
		t.Fatal("should not stop before cancel")
	}
	cancel()
	if !stop() {
		t.Error("should stop after cancel")
	}
}
