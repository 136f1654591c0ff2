package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/starford/notegraph/internal/testutil"
)

type frameRecorder struct {
	mu     sync.Mutex
	frames []Snapshot
}

func (r *frameRecorder) PublishFrame(s Snapshot) {
	r.mu.Lock()
	r.frames = append(r.frames, s)
	r.mu.Unlock()
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *frameRecorder) last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func TestDriverRunsUntilSettledThenIdles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.Seed = 3
	cfg.Layout.AlphaDecay = 0.3
	v := New(cfg)
	if err := v.Update(testutil.Notes()); err != nil {
		t.Fatal(err)
	}
	rec := &frameRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- NewDriver(v, rec, 500, testutil.Logger()).Run(ctx) }()

	testutil.Eventually(t, 5*time.Second, 10*time.Millisecond, func() bool {
		return rec.count() > 0 && rec.last().Settled
	}, "driver never published a settled frame")

	n := rec.count()
	time.Sleep(50 * time.Millisecond)
	if rec.count() != n {
		t.Errorf("frames published while settled: %d -> %d", n, rec.count())
	}

	v.Restart()
	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return rec.count() > n
	}, "driver did not resume after restart")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}
}

func TestFrameSinkFunc(t *testing.T) {
	var got string
	FrameSinkFunc(func(s Snapshot) { got = s.View }).PublishFrame(Snapshot{View: "v"})
	if got != "v" {
		t.Errorf("got %q", got)
	}
}
