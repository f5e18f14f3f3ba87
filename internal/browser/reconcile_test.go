package browser

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeSink struct {
	mu      sync.Mutex
	pending bool
	clicks  int
}

func (s *fakeSink) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *fakeSink) OnSubmitClick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks++
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks
}

type stateBox struct {
	mu sync.Mutex
	v  string
}

func (b *stateBox) set(v string) {
	b.mu.Lock()
	b.v = v
	b.mu.Unlock()
}

func (b *stateBox) get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.v
}

func startReconciler(t *testing.T, sink *fakeSink, btn *stateBox, sidebar func() bool, wait time.Duration) *Reconciler {
	t.Helper()
	r := newReconciler(sink, 2*time.Millisecond, btn.get, sidebar)
	r.Start(context.Background(), wait)
	t.Cleanup(r.Stop)
	return r
}

func TestReconcilerCatchesMissedSubmission(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	sink := &fakeSink{}
	btn := &stateBox{v: "enabled"}
	startReconciler(t, sink, btn, func() bool { return true }, time.Second)

	time.Sleep(20 * time.Millisecond) // let the loop see the enabled state
	btn.set("disabled")
	require.Eventually(t, func() bool { return sink.count() == 1 },
		time.Second, 2*time.Millisecond)

	// The same disabled state must not fire again.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, sink.count())

	// A fresh enabled-to-disabled edge is a new submission.
	btn.set("enabled")
	time.Sleep(20 * time.Millisecond)
	btn.set("disabled")
	require.Eventually(t, func() bool { return sink.count() == 2 },
		time.Second, 2*time.Millisecond)
}

func TestReconcilerIgnoresEdgeDuringAttempt(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	sink := &fakeSink{pending: true}
	btn := &stateBox{v: "enabled"}
	startReconciler(t, sink, btn, func() bool { return true }, time.Second)

	time.Sleep(20 * time.Millisecond)
	btn.set("disabled")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, sink.count(), "listener-driven attempts must not be doubled")
}

func TestReconcilerAbsentButtonIsNotAnEdge(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	sink := &fakeSink{}
	btn := &stateBox{v: "absent"}
	startReconciler(t, sink, btn, func() bool { return true }, time.Second)

	time.Sleep(20 * time.Millisecond)
	btn.set("disabled") // button appeared already disabled: no submission edge
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, sink.count())
}

func TestReconcilerDisabledWithoutSidebar(t *testing.T) {
	defer goleak.VerifyNone(t)
	sink := &fakeSink{}
	btn := &stateBox{v: "enabled"}
	r := newReconciler(sink, 2*time.Millisecond, btn.get, func() bool { return false })
	r.Start(context.Background(), 10*time.Millisecond)

	// The loop gives up once the sidebar wait expires; edges after that
	// are ignored and Stop does not hang.
	time.Sleep(20 * time.Millisecond)
	btn.set("disabled")
	time.Sleep(20 * time.Millisecond)
	r.Stop()
	assert.Equal(t, 0, sink.count())
}
