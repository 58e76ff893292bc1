// Package session holds privacy-mode session state: the raw CV text, its
// masked projection, the reveal/hide toggle and the auto-delete schedule.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/raaihank/scandidate/internal/clock"
	"github.com/raaihank/scandidate/internal/privacy"
	"github.com/raaihank/scandidate/internal/retention"
	"github.com/raaihank/scandidate/internal/store"
	"go.uber.org/zap"
)

// ErrNoContent is returned when downloading an empty session
var ErrNoContent = errors.New("session has no content")

const redactionWarning = "Sensitive data could not be masked; showing original content"

// Redactor masks sensitive data in a text
type Redactor interface {
	Redact(text string) (privacy.Result, error)
}

// Events receives session notifications. Callbacks run while the session
// is locked and must not call back into it.
type Events struct {
	OnTick      func(id string, remaining time.Duration)
	OnPurge     func(id, reason string)
	OnDetection func(id string, report privacy.Report)
}

// Options configures a Session
type Options struct {
	ID           string
	Redactor     Redactor
	Store        store.KV
	Clock        clock.Clock
	Window       time.Duration
	TickInterval time.Duration
	AutoDelete   bool
	Events       Events
	Logger       *zap.Logger
}

// Session is one user's privacy-mode workspace. All methods are safe for
// concurrent use; each runs to completion before the next is accepted,
// and scheduler callbacks are serialized with them.
type Session struct {
	id       string
	redactor Redactor
	kv       store.KV
	clock    clock.Clock
	events   Events
	logger   *zap.Logger
	sched    *retention.Scheduler

	mu          sync.Mutex
	raw         string
	masked      string
	report      privacy.Report
	redactErr   error
	privacyMode bool
	autoDelete  bool
	reveal      bool
	lastActive  time.Time
}

// Open creates a session and rehydrates it from the durable store. A
// stored deadline that already passed purges the content immediately.
func Open(ctx context.Context, opts Options) *Session {
	s := &Session{
		id:         opts.ID,
		redactor:   opts.Redactor,
		kv:         opts.Store,
		clock:      opts.Clock,
		events:     opts.Events,
		logger:     opts.Logger,
		autoDelete: opts.AutoDelete,
		report:     privacy.Report{},
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))

	s.sched = retention.New(retention.Options{
		Clock:        s.clock,
		Store:        s.kv,
		Window:       opts.Window,
		TickInterval: opts.TickInterval,
		Post:         s.locked,
		OnPurge:      s.destroy,
		OnTick:       s.tick,
		Logger:       s.logger,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = s.clock.Now()

	if content, ok := s.get(ctx, store.KeyContent); ok {
		s.raw = content
	}
	if mode, ok := s.get(ctx, store.KeyPrivacyMode); ok && mode == "true" {
		s.privacyMode = true
	}
	s.recompute()

	s.sched.Restore(ctx)
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Edit replaces the raw content. The masked projection is recomputed and,
// with auto-delete on, the retention window restarts from now.
func (s *Session) Edit(ctx context.Context, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw = content
	s.lastActive = s.clock.Now()
	s.recompute()

	if s.autoDelete && strings.TrimSpace(content) != "" {
		s.sched.Arm(ctx)
	}

	s.set(ctx, store.KeyContent, content)

	if s.events.OnDetection != nil && len(s.report) > 0 {
		s.events.OnDetection(s.id, s.report)
	}

	s.logger.Debug("Session content updated",
		zap.Int("length", len(content)),
		zap.Int("findings", s.report.Total()),
	)
}

// SetPrivacyMode turns privacy mode on or off. Turning it on recomputes
// the masked content; turning it off hides the original again.
func (s *Session) SetPrivacyMode(ctx context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.privacyMode = enabled
	s.lastActive = s.clock.Now()

	if enabled {
		s.recompute()
		s.set(ctx, store.KeyPrivacyMode, "true")
	} else {
		s.reveal = false
		s.del(ctx, store.KeyPrivacyMode)
	}
}

// SetAutoDelete turns auto-delete on or off. Disabling cancels the pending
// purge and keeps the content; enabling starts a fresh window from now.
func (s *Session) SetAutoDelete(ctx context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoDelete = enabled
	s.lastActive = s.clock.Now()

	if !enabled {
		s.sched.Disarm(ctx)
		return
	}
	if strings.TrimSpace(s.raw) != "" {
		s.sched.Arm(ctx)
	}
}

// ToggleReveal flips between masked and original display. It has no
// effect while privacy mode is off and returns the new reveal flag.
func (s *Session) ToggleReveal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.privacyMode {
		s.reveal = !s.reveal
	}
	s.lastActive = s.clock.Now()
	return s.reveal
}

// ClearAll destroys the content and every durable key, and cancels any
// pending purge.
func (s *Session) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = s.clock.Now()
	s.sched.Purge(ctx)
}

// DisplayedText returns the masked content while privacy mode is on and
// the original is hidden, and the raw content otherwise.
func (s *Session) DisplayedText() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, _ := s.displayed()
	return text
}

// Report returns the detection report of the current raw content
func (s *Session) Report() privacy.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append(privacy.Report{}, s.report...)
}

// Remaining returns the time left before auto-delete
func (s *Session) Remaining() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sched.Remaining()
}

// View returns a snapshot of what the privacy page shows
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, protected := s.displayed()
	v := View{
		ID:             s.id,
		DisplayedText:  text,
		Protected:      protected,
		HasContent:     s.raw != "",
		PrivacyMode:    s.privacyMode,
		AutoDelete:     s.autoDelete,
		RevealOriginal: s.reveal,
		Findings:       s.report.Lines(),
		Retention:      s.sched.State().String(),
	}
	if s.privacyMode && s.redactErr != nil {
		v.Warning = redactionWarning
	}
	if deadline, ok := s.sched.Deadline(); ok {
		remaining, _ := s.sched.Remaining()
		v.Deadline = &deadline
		v.Remaining = retention.FormatRemaining(remaining)
	}
	return v
}

// Download exports the displayed representation as a text file
func (s *Session) Download() (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raw == "" {
		return Artifact{}, ErrNoContent
	}

	text, protected := s.displayed()
	status := "Original"
	if protected {
		status = "Protected"
	}

	return Artifact{
		Filename:    "CV_" + status + "_" + s.clock.Now().UTC().Format("2006-01-02") + ".txt",
		ContentType: "text/plain; charset=utf-8",
		Content:     []byte(text),
	}, nil
}

// Stop cancels timers without touching content or durable state
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sched.Stop()
}

// idle reports whether the session holds nothing worth keeping and was
// last used before cutoff.
func (s *Session) idle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.raw == "" && s.sched.State() != retention.Armed && s.lastActive.Before(cutoff)
}

func (s *Session) displayed() (string, bool) {
	if s.privacyMode && !s.reveal && s.redactErr == nil {
		return s.masked, true
	}
	return s.raw, false
}

func (s *Session) recompute() {
	result, err := s.redactor.Redact(s.raw)
	if err != nil {
		s.logger.Warn("Redaction failed, original content will be shown", zap.Error(err))
		s.masked = ""
		s.report = privacy.Report{}
		s.redactErr = err
		return
	}
	s.masked = result.MaskedText
	s.report = result.Report
	s.redactErr = nil
}

// destroy is the scheduler's purge callback; the lock is already held.
func (s *Session) destroy(reason string) {
	s.raw = ""
	s.masked = ""
	s.report = privacy.Report{}
	s.redactErr = nil
	s.reveal = false

	s.del(context.Background(), store.KeyContent, store.KeyPrivacyMode)

	if s.events.OnPurge != nil {
		s.events.OnPurge(s.id, reason)
	}
	s.logger.Info("Session content purged", zap.String("reason", reason))
}

func (s *Session) tick(remaining time.Duration) {
	if s.events.OnTick != nil {
		s.events.OnTick(s.id, remaining)
	}
}

func (s *Session) locked(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f()
}

func (s *Session) get(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to read session state", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, ok
}

func (s *Session) set(ctx context.Context, key, value string) {
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.logger.Warn("Failed to persist session state", zap.String("key", key), zap.Error(err))
	}
}

func (s *Session) del(ctx context.Context, keys ...string) {
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to remove session state", zap.Strings("keys", keys), zap.Error(err))
	}
}
