package loop

import (
	"context"
	"testing"
	"time"
)

func TestManualFlushOrder(t *testing.T) {
	m := NewManual()
	var got []int

	m.Post(func() {
		got = append(got, 1)
		m.Post(func() { got = append(got, 3) })
	})
	m.Post(func() { got = append(got, 2) })

	if len(got) != 0 {
		t.Fatal("Post ran callback before Flush")
	}
	m.Flush()

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestManualAdvance(t *testing.T) {
	m := NewManual()
	var fired []string

	m.AfterFunc(900*time.Millisecond, func() { fired = append(fired, "flash") })
	m.AfterFunc(1200*time.Millisecond, func() { fired = append(fired, "revert") })
	stopped := m.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "stale") })

	if !stopped.Stop() {
		t.Error("Stop() on pending timer = false")
	}
	if stopped.Stop() {
		t.Error("second Stop() = true")
	}

	m.Advance(899 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("fired early: %v", fired)
	}
	if m.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", m.Pending())
	}

	m.Advance(time.Millisecond)
	if len(fired) != 1 || fired[0] != "flash" {
		t.Fatalf("fired = %v, want [flash]", fired)
	}

	m.Advance(time.Second)
	if len(fired) != 2 || fired[1] != "revert" {
		t.Errorf("fired = %v, want [flash revert]", fired)
	}
	if m.Now() != 1900*time.Millisecond {
		t.Errorf("Now() = %v", m.Now())
	}
}

func TestManualTimerScheduledFromTimer(t *testing.T) {
	m := NewManual()
	count := 0

	m.AfterFunc(10*time.Millisecond, func() {
		count++
		m.AfterFunc(10*time.Millisecond, func() { count++ })
	})

	m.Advance(20 * time.Millisecond)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestLoopRunsPostedAndTimers(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go l.Run(ctx)

	fired := make(chan struct{})
	if err := l.Do(ctx, func() {
		l.AfterFunc(5*time.Millisecond, func() { close(fired) })
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	select {
	case <-fired:
	case <-ctx.Done():
		t.Fatal("timer did not fire")
	}
}

func TestLoopStopBeforeFire(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go l.Run(ctx)

	ran := false
	var timer Timer
	if err := l.Do(ctx, func() {
		timer = l.AfterFunc(20*time.Millisecond, func() { ran = true })
		timer.Stop()
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	var seen bool
	if err := l.Do(ctx, func() { seen = ran }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if seen {
		t.Error("stopped timer ran")
	}
}
