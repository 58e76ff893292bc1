package retention

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/raaihank/scandidate/internal/clock"
	"github.com/raaihank/scandidate/internal/store"
)

var start = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type harness struct {
	clock  *clock.Fake
	kv     *store.Memory
	sched  *Scheduler
	purges []string
	ticks  []time.Duration
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock: clock.NewFake(start),
		kv:    store.NewMemory(),
	}
	h.sched = New(Options{
		Clock:        h.clock,
		Store:        h.kv,
		Window:       24 * time.Hour,
		TickInterval: time.Second,
		OnPurge:      func(reason string) { h.purges = append(h.purges, reason) },
		OnTick:       func(d time.Duration) { h.ticks = append(h.ticks, d) },
	})
	return h
}

func (h *harness) storedDeadline(t *testing.T) (time.Time, bool) {
	t.Helper()
	raw, ok, err := h.kv.Get(context.Background(), store.KeyDeleteDeadline)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		t.Fatalf("Stored deadline is not epoch millis: %q", raw)
	}
	return time.UnixMilli(ms), true
}

func TestArm(t *testing.T) {
	ctx := context.Background()

	t.Run("DeadlineIsEditPlusWindow", func(t *testing.T) {
		h := newHarness(t)
		h.sched.Arm(ctx)

		if h.sched.State() != Armed {
			t.Fatalf("Expected armed, got %s", h.sched.State())
		}
		stored, ok := h.storedDeadline(t)
		if !ok {
			t.Fatal("Deadline was not persisted")
		}
		if !stored.Equal(start.Add(24 * time.Hour)) {
			t.Errorf("Expected deadline %s, got %s", start.Add(24*time.Hour), stored)
		}
	})

	t.Run("EditResetsWindow", func(t *testing.T) {
		h := newHarness(t)
		h.sched.Arm(ctx)
		h.clock.Advance(time.Hour)
		h.sched.Arm(ctx)

		want := start.Add(time.Hour).Add(24 * time.Hour)
		stored, _ := h.storedDeadline(t)
		if !stored.Equal(want) {
			t.Errorf("Expected deadline %s, got %s", want, stored)
		}
		if d, _ := h.sched.Deadline(); !d.Equal(want) {
			t.Errorf("Expected in-memory deadline %s, got %s", want, d)
		}

		// The first deadline passes without a purge.
		h.clock.Set(start.Add(24*time.Hour + time.Second))
		if len(h.purges) != 0 {
			t.Fatalf("Purged at the replaced deadline: %v", h.purges)
		}

		h.clock.Set(want)
		if len(h.purges) != 1 || h.purges[0] != "expired" {
			t.Fatalf("Expected one expiry purge, got %v", h.purges)
		}
	})
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.sched.Arm(ctx)

	h.clock.Advance(24*time.Hour + time.Minute)

	if h.sched.State() != Purged {
		t.Fatalf("Expected purged, got %s", h.sched.State())
	}
	if len(h.purges) != 1 {
		t.Fatalf("Expected exactly one purge, got %d", len(h.purges))
	}
	if _, ok := h.storedDeadline(t); ok {
		t.Error("Stored deadline survived the purge")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", h.clock.Pending())
	}
	if _, ok := h.sched.Remaining(); ok {
		t.Error("Purged scheduler still reports a countdown")
	}

	// Purged -> edit -> Armed again
	h.sched.Arm(ctx)
	if h.sched.State() != Armed {
		t.Errorf("Expected re-armed after purge, got %s", h.sched.State())
	}
}

func TestTicks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.sched.Arm(ctx)

	h.clock.Advance(3 * time.Second)

	if len(h.ticks) != 3 {
		t.Fatalf("Expected 3 ticks, got %d", len(h.ticks))
	}
	if h.ticks[2] != 24*time.Hour-3*time.Second {
		t.Errorf("Unexpected remaining on third tick: %s", h.ticks[2])
	}
	if remaining, _ := h.sched.Remaining(); remaining != 24*time.Hour-3*time.Second {
		t.Errorf("Unexpected remaining: %s", remaining)
	}
}

func TestPurgeCancelsPending(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.sched.Arm(ctx)
	h.clock.Advance(time.Minute)

	h.sched.Purge(ctx)

	if len(h.purges) != 1 || h.purges[0] != "cleared" {
		t.Fatalf("Expected one explicit purge, got %v", h.purges)
	}
	if _, ok := h.storedDeadline(t); ok {
		t.Error("Explicit purge left the stored deadline")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("Explicit purge left %d pending timers", h.clock.Pending())
	}

	h.clock.Advance(48 * time.Hour)
	if len(h.purges) != 1 {
		t.Errorf("Cancelled purge fired later: %v", h.purges)
	}
}

func TestDisarm(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.sched.Arm(ctx)
	h.clock.Advance(2 * time.Hour)

	h.sched.Disarm(ctx)

	if h.sched.State() != Idle {
		t.Fatalf("Expected idle after disarm, got %s", h.sched.State())
	}
	if _, ok := h.storedDeadline(t); ok {
		t.Error("Disarm left the stored deadline")
	}

	h.clock.Advance(48 * time.Hour)
	if len(h.purges) != 0 {
		t.Fatalf("Disarmed scheduler purged content: %v", h.purges)
	}

	// Re-enabling arms from the current moment, not the original edit.
	h.sched.Arm(ctx)
	want := start.Add(50 * time.Hour).Add(24 * time.Hour)
	if d, _ := h.sched.Deadline(); !d.Equal(want) {
		t.Errorf("Expected fresh deadline %s, got %s", want, d)
	}
}

func TestStaleCallbackIgnored(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	var queued []func()
	h.sched.post = func(f func()) { queued = append(queued, f) }

	h.sched.Arm(ctx)
	h.clock.Advance(24 * time.Hour)
	if len(queued) == 0 {
		t.Fatal("Expected queued callbacks")
	}

	// An edit lands before the queued expiry callbacks get to run.
	h.sched.Arm(ctx)
	for _, f := range queued {
		f()
	}

	if len(h.purges) != 0 {
		t.Errorf("Stale callback purged fresh content: %v", h.purges)
	}
	if h.sched.State() != Armed {
		t.Errorf("Expected armed, got %s", h.sched.State())
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("NoDeadline", func(t *testing.T) {
		h := newHarness(t)
		if state := h.sched.Restore(ctx); state != Idle {
			t.Errorf("Expected idle, got %s", state)
		}
	})

	t.Run("PastDeadlinePurgesImmediately", func(t *testing.T) {
		h := newHarness(t)
		past := start.Add(-time.Minute).UnixMilli()
		_ = h.kv.Set(ctx, store.KeyDeleteDeadline, strconv.FormatInt(past, 10))

		if state := h.sched.Restore(ctx); state != Purged {
			t.Fatalf("Expected purged, got %s", state)
		}
		if len(h.purges) != 1 {
			t.Errorf("Expected immediate purge, got %v", h.purges)
		}
		if _, ok := h.storedDeadline(t); ok {
			t.Error("Expired deadline left in store")
		}
	})

	t.Run("FutureDeadlineResumes", func(t *testing.T) {
		h := newHarness(t)
		deadline := start.Add(90 * time.Minute)
		_ = h.kv.Set(ctx, store.KeyDeleteDeadline, strconv.FormatInt(deadline.UnixMilli(), 10))

		if state := h.sched.Restore(ctx); state != Armed {
			t.Fatalf("Expected armed, got %s", state)
		}
		if remaining, _ := h.sched.Remaining(); remaining != 90*time.Minute {
			t.Errorf("Expected 90m remaining, got %s", remaining)
		}

		h.clock.Advance(90 * time.Minute)
		if len(h.purges) != 1 {
			t.Errorf("Expected purge at restored deadline, got %v", h.purges)
		}
	})

	t.Run("MalformedDeadlineDiscarded", func(t *testing.T) {
		h := newHarness(t)
		_ = h.kv.Set(ctx, store.KeyDeleteDeadline, "tomorrow")

		if state := h.sched.Restore(ctx); state != Idle {
			t.Errorf("Expected idle, got %s", state)
		}
		if _, ok, _ := h.kv.Get(ctx, store.KeyDeleteDeadline); ok {
			t.Error("Malformed deadline kept")
		}
	})
}

type failingKV struct {
	*store.Memory
}

var errStoreDown = errors.New("store down")

func (failingKV) Set(context.Context, string, string) error { return errStoreDown }
func (failingKV) Delete(context.Context, ...string) error   { return errStoreDown }

func TestStoreFailureDoesNotBlockPurge(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(start)
	var purged int

	sched := New(Options{
		Clock:        fake,
		Store:        failingKV{store.NewMemory()},
		Window:       time.Hour,
		TickInterval: time.Second,
		OnPurge:      func(string) { purged++ },
	})

	sched.Arm(ctx)
	fake.Advance(time.Hour)

	if purged != 1 {
		t.Fatalf("Expected in-memory purge despite store failure, got %d", purged)
	}
	if sched.State() != Purged {
		t.Errorf("Expected purged, got %s", sched.State())
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := map[time.Duration]string{
		24 * time.Hour: "24j 0m 0d",
		23*time.Hour + 59*time.Minute + 59*time.Second + 900*time.Millisecond: "23j 59m 59d",
		61 * time.Second: "0j 1m 1d",
		-time.Second:     "0j 0m 0d",
	}
	for d, want := range cases {
		if got := FormatRemaining(d); got != want {
			t.Errorf("FormatRemaining(%s) = %q, want %q", d, got, want)
		}
	}
}
