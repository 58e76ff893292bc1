package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raaihank/scandidate/internal/clock"
	"github.com/raaihank/scandidate/internal/config"
	"github.com/raaihank/scandidate/internal/store"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown session IDs
var ErrNotFound = errors.New("session not found")

// ManagerOptions configures a Manager
type ManagerOptions struct {
	Redactor  Redactor
	Store     store.KV
	KeyPrefix string
	Clock     clock.Clock
	Retention config.RetentionConfig
	Events    Events
	Logger    *zap.Logger
}

// Manager owns every live session. Each session's durable keys live
// under "<prefix>:<id>:".
type Manager struct {
	redactor  Redactor
	kv        store.KV
	prefix    string
	clock     clock.Clock
	retention config.RetentionConfig
	events    Events
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		redactor:  opts.Redactor,
		kv:        opts.Store,
		prefix:    opts.KeyPrefix,
		clock:     opts.Clock,
		retention: opts.Retention,
		events:    opts.Events,
		logger:    opts.Logger,
		sessions:  make(map[string]*Session),
	}
	if m.clock == nil {
		m.clock = clock.Real()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.prefix == "" {
		m.prefix = "scandidate"
	}
	return m
}

// Create opens a new empty session
func (m *Manager) Create(ctx context.Context) *Session {
	id := uuid.NewString()
	s := m.open(ctx, id)

	m.logger.Info("Session created", zap.String("session_id", id))
	return s
}

// Get returns a live session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Restore reopens every session found in the durable store. Sessions whose
// deadline passed while the process was down are purged as they open.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	keys, err := m.kv.Scan(ctx, m.prefix+":")
	if err != nil {
		return 0, fmt.Errorf("failed to scan stored sessions: %w", err)
	}

	seen := make(map[string]bool)
	for _, key := range keys {
		rest := strings.TrimPrefix(key, m.prefix+":")
		id, _, ok := strings.Cut(rest, ":")
		if !ok || id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if _, err := m.Get(id); err == nil {
			continue
		}
		m.open(ctx, id)
	}

	m.logger.Info("Restored stored sessions", zap.Int("count", len(seen)))
	return len(seen), nil
}

// Evict drops sessions that hold no content, have nothing scheduled and
// were idle for the eviction interval. Returns the number evicted.
func (m *Manager) Evict(ctx context.Context) int {
	cutoff := m.clock.Now().Add(-m.retention.EvictionInterval)

	m.mu.Lock()
	var evicted []*Session
	for id, s := range m.sessions {
		if s.idle(cutoff) {
			evicted = append(evicted, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range evicted {
		s.Stop()
		if err := s.kv.Delete(ctx, store.SessionKeys...); err != nil {
			m.logger.Warn("Failed to remove evicted session state",
				zap.String("session_id", s.id),
				zap.Error(err),
			)
		}
	}

	if len(evicted) > 0 {
		m.logger.Debug("Evicted idle sessions", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run evicts idle sessions periodically until ctx is cancelled
func (m *Manager) Run(ctx context.Context) {
	if m.retention.EvictionInterval <= 0 {
		return
	}

	ticker := time.NewTicker(m.retention.EvictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Evict(ctx)
		}
	}
}

// Close stops every session's timers. Durable deadlines are kept so the
// next process can restore them.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		s.Stop()
	}
	m.logger.Info("Session manager closed", zap.Int("sessions", len(m.sessions)))
}

func (m *Manager) open(ctx context.Context, id string) *Session {
	s := Open(ctx, Options{
		ID:           id,
		Redactor:     m.redactor,
		Store:        store.Scoped(m.kv, m.prefix+":"+id),
		Clock:        m.clock,
		Window:       m.retention.Window,
		TickInterval: m.retention.TickInterval,
		AutoDelete:   m.retention.AutoDelete,
		Events:       m.events,
		Logger:       m.logger.With(zap.String("session_id", id)),
	})

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}
