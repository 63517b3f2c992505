package session

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestGuardOncePerName(t *testing.T) {
	g := NewGuard()
	if !g.Try("reload") {
		t.Fatal("first Try returned false")
	}
	if g.Try("reload") {
		t.Fatal("second Try returned true")
	}
	if !g.Try("other") {
		t.Fatal("independent guard name was blocked")
	}

	g.Reset("reload")
	if !g.Try("reload") {
		t.Fatal("Try after Reset returned false")
	}
}

func TestVisibilityTransitions(t *testing.T) {
	v := NewVisibility()
	var hides, shows int
	v.OnHide(func() { hides++ })
	v.OnShow(func() { shows++ })

	if v.Hidden() {
		t.Fatal("fresh visibility reports hidden")
	}

	// setting the current state again must not fire callbacks
	v.Set(false)
	if hides != 0 || shows != 0 {
		t.Fatalf("no-op Set fired callbacks: hides=%d shows=%d", hides, shows)
	}

	v.Set(true)
	if !v.Hidden() || hides != 1 {
		t.Fatalf("hide transition: hidden=%v hides=%d", v.Hidden(), hides)
	}
	v.Set(true)
	if hides != 1 {
		t.Fatalf("repeated hide fired again: hides=%d", hides)
	}

	v.Set(false)
	if v.Hidden() || shows != 1 {
		t.Fatalf("show transition: hidden=%v shows=%d", v.Hidden(), shows)
	}
}

func TestVisibilityBindSignals(t *testing.T) {
	v := NewVisibility()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v.BindSignals(ctx)

	waitState := func(hidden bool, msg string) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if v.Hidden() == hidden {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Fatal(msg)
	}

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("send SIGUSR1: %v", err)
	}
	waitState(true, "SIGUSR1 did not hide the session")

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("send SIGUSR2: %v", err)
	}
	waitState(false, "SIGUSR2 did not show the session")
}

func TestVisibilityMultipleListeners(t *testing.T) {
	v := NewVisibility()
	var a, b bool
	v.OnHide(func() { a = true })
	v.OnHide(func() { b = true })
	v.Set(true)
	if !a || !b {
		t.Fatalf("not all listeners fired: a=%v b=%v", a, b)
	}
}
