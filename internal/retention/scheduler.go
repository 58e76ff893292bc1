// Package retention enforces that privacy-session content is destroyed a
// fixed window after its most recent edit.
package retention

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/raaihank/scandidate/internal/clock"
	"github.com/raaihank/scandidate/internal/store"
	"go.uber.org/zap"
)

// State is the scheduler's lifecycle state
type State int

const (
	// Idle means no deadline is armed
	Idle State = iota
	// Armed means content will be purged at the deadline
	Armed
	// Purged means content was destroyed and nothing is pending
	Purged
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Purged:
		return "purged"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Scheduler
type Options struct {
	Clock        clock.Clock
	Store        store.KV
	Window       time.Duration
	TickInterval time.Duration
	// Post runs timer callbacks serialized with the owner's other calls.
	// When nil, callbacks run directly on the timer goroutine.
	Post func(func())
	// OnPurge destroys the owner's in-memory content.
	OnPurge func(reason string)
	// OnTick receives the remaining time on every tick while armed.
	OnTick func(remaining time.Duration)
	Logger *zap.Logger
}

// Scheduler is the auto-delete state machine of one privacy session.
//
// A Scheduler is not safe for concurrent use: its owner must serialize
// calls, and must pass the same serialization as Options.Post so timer
// callbacks never interleave with those calls. Every arm, disarm and purge
// starts a new generation; callbacks from an older generation do nothing.
type Scheduler struct {
	clock   clock.Clock
	store   store.KV
	window  time.Duration
	tick    time.Duration
	post    func(func())
	onPurge func(string)
	onTick  func(time.Duration)
	logger  *zap.Logger

	state      State
	deadline   time.Time
	gen        uint64
	purgeTimer clock.Timer
	tickTimer  clock.Timer
}

// New creates an idle scheduler
func New(opts Options) *Scheduler {
	s := &Scheduler{
		clock:   opts.Clock,
		store:   opts.Store,
		window:  opts.Window,
		tick:    opts.TickInterval,
		post:    opts.Post,
		onPurge: opts.OnPurge,
		onTick:  opts.OnTick,
		logger:  opts.Logger,
		state:   Idle,
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.post == nil {
		s.post = func(f func()) { f() }
	}
	if s.onPurge == nil {
		s.onPurge = func(string) {}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// State returns the current state
func (s *Scheduler) State() State {
	return s.state
}

// Deadline returns the armed deadline
func (s *Scheduler) Deadline() (time.Time, bool) {
	if s.state != Armed {
		return time.Time{}, false
	}
	return s.deadline, true
}

// Remaining returns the time left before the purge, clamped at zero
func (s *Scheduler) Remaining() (time.Duration, bool) {
	if s.state != Armed {
		return 0, false
	}
	remaining := s.deadline.Sub(s.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Restore re-validates a deadline persisted by an earlier process. A
// deadline already in the past purges immediately.
func (s *Scheduler) Restore(ctx context.Context) State {
	raw, ok, err := s.store.Get(ctx, store.KeyDeleteDeadline)
	if err != nil {
		s.logger.Warn("Failed to read stored deadline", zap.Error(err))
		return s.state
	}
	if !ok {
		return s.state
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("Discarding malformed stored deadline", zap.Error(err))
		s.deleteDeadline(ctx)
		return s.state
	}

	deadline := time.UnixMilli(ms)
	now := s.clock.Now()
	if !deadline.After(now) {
		s.logger.Info("Stored deadline already passed, purging",
			zap.Time("deadline", deadline),
		)
		s.purge(ctx, "expired")
		return s.state
	}

	s.cancelTimers()
	s.gen++
	s.state = Armed
	s.deadline = deadline
	s.schedule(s.gen, deadline.Sub(now))

	s.logger.Debug("Restored retention deadline",
		zap.Time("deadline", deadline),
		zap.Duration("remaining", deadline.Sub(now)),
	)
	return s.state
}

// Arm starts a fresh retention window from now, replacing any pending one
func (s *Scheduler) Arm(ctx context.Context) {
	s.cancelTimers()
	s.gen++
	s.state = Armed
	s.deadline = s.clock.Now().Add(s.window)

	if err := s.store.Set(ctx, store.KeyDeleteDeadline, strconv.FormatInt(s.deadline.UnixMilli(), 10)); err != nil {
		s.logger.Warn("Failed to persist deadline", zap.Error(err))
	}

	s.schedule(s.gen, s.window)
}

// Disarm cancels the pending purge without destroying content
func (s *Scheduler) Disarm(ctx context.Context) {
	s.cancelTimers()
	s.gen++
	if s.state == Armed {
		s.state = Idle
	}
	s.deadline = time.Time{}
	s.deleteDeadline(ctx)
}

// Purge destroys content now and cancels anything pending
func (s *Scheduler) Purge(ctx context.Context) {
	s.purge(ctx, "cleared")
}

// Stop cancels timers and leaves the persisted deadline in place so a
// later Restore can pick it up.
func (s *Scheduler) Stop() {
	s.cancelTimers()
	s.gen++
}

func (s *Scheduler) purge(ctx context.Context, reason string) {
	s.cancelTimers()
	s.gen++
	s.state = Purged
	s.deadline = time.Time{}

	// In-memory destruction first; durable cleanup is best effort.
	s.onPurge(reason)
	s.deleteDeadline(ctx)
}

func (s *Scheduler) deleteDeadline(ctx context.Context) {
	if err := s.store.Delete(ctx, store.KeyDeleteDeadline); err != nil {
		s.logger.Warn("Failed to remove stored deadline", zap.Error(err))
	}
}

func (s *Scheduler) schedule(gen uint64, after time.Duration) {
	s.purgeTimer = s.clock.AfterFunc(after, func() {
		s.post(func() { s.expire(gen) })
	})
	s.scheduleTick(gen)
}

func (s *Scheduler) scheduleTick(gen uint64) {
	if s.tick <= 0 {
		return
	}
	s.tickTimer = s.clock.AfterFunc(s.tick, func() {
		s.post(func() { s.tickFired(gen) })
	})
}

func (s *Scheduler) tickFired(gen uint64) {
	if gen != s.gen || s.state != Armed {
		return
	}

	remaining, _ := s.Remaining()
	if s.onTick != nil {
		s.onTick(remaining)
	}

	if remaining <= 0 {
		s.expire(gen)
		return
	}
	s.scheduleTick(gen)
}

func (s *Scheduler) expire(gen uint64) {
	if gen != s.gen || s.state != Armed {
		return
	}
	s.logger.Info("Retention window elapsed, purging content")
	s.purge(context.Background(), "expired")
}

func (s *Scheduler) cancelTimers() {
	if s.purgeTimer != nil {
		s.purgeTimer.Stop()
		s.purgeTimer = nil
	}
	if s.tickTimer != nil {
		s.tickTimer.Stop()
		s.tickTimer = nil
	}
}

// FormatRemaining renders a countdown as "<hours>j <minutes>m <seconds>d"
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%dj %dm %dd", seconds/3600, (seconds%3600)/60, seconds%60)
}
