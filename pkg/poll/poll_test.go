package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestRunnerImmediateFirstTick(t *testing.T) {
	var calls int32
	r := NewRunner("test", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 },
		"first fetch did not run immediately")
}

func TestRunnerSkipsWhileInFlight(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	r := NewRunner("slow", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		<-release
		return nil
	})
	r.Start(context.Background())

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, "fetch never started")

	// ticks arriving while a fetch is running are dropped, not queued
	r.Kick()
	r.Kick()
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("fetch ran %d times with one still in flight", got)
	}

	close(release)
	r.Stop()
}

func TestRunnerKickAfterFetchRunsAgain(t *testing.T) {
	var calls int32
	r := NewRunner("kick", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, "fetch never started")
	r.Kick()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, "kick did not trigger a fetch")
}

func TestRunnerResumeFiresImmediateTick(t *testing.T) {
	var calls int32
	r := NewRunner("vis", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, "fetch never started")

	r.Suspend()
	if !r.Suspended() {
		t.Fatal("Suspended() = false after Suspend")
	}
	r.Resume()
	if r.Suspended() {
		t.Fatal("Suspended() = true after Resume")
	}
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, "resume did not tick")
}

func TestRunnerKickIgnoredWhileSuspended(t *testing.T) {
	var calls int32
	r := NewRunner("hidden", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, "fetch never started")

	r.Suspend()
	r.Kick()
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("kick ran a fetch while suspended: calls = %d", got)
	}

	r.Resume()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, "resume did not tick")
}

func TestRunnerStopWaitsForFetch(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})
	release := make(chan struct{})
	r := NewRunner("stop", time.Hour, func(ctx context.Context) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	})
	r.Start(context.Background())
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	r.Stop()
	if !finished.Load() {
		t.Fatal("Stop returned before the in-flight fetch finished")
	}
}

func TestRunnerStartIdempotent(t *testing.T) {
	var calls int32
	r := NewRunner("idem", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	ctx := context.Background()
	r.Start(ctx)
	r.Start(ctx)
	defer r.Stop()

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, "fetch never started")
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("double Start produced %d fetches, want 1", got)
	}
}

func TestGroupLifecycle(t *testing.T) {
	var a, b int32
	var g Group
	ra := NewRunner("a", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&a, 1)
		return nil
	})
	rb := NewRunner("b", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&b, 1)
		return nil
	})
	g.Add(ra)
	g.Add(rb)
	g.Start(context.Background())
	defer g.Stop()

	waitFor(t, func() bool { return atomic.LoadInt32(&a) >= 1 && atomic.LoadInt32(&b) >= 1 },
		"group runners did not start")

	g.Suspend()
	if !ra.Suspended() || !rb.Suspended() {
		t.Fatal("group Suspend did not reach all runners")
	}
	g.Resume()
	waitFor(t, func() bool { return atomic.LoadInt32(&a) >= 2 && atomic.LoadInt32(&b) >= 2 },
		"group Resume did not tick all runners")
}
