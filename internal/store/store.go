// Package store provides the durable key-value state behind privacy
// sessions. Writes are last-write-wins with no schema versioning.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/raaihank/scandidate/internal/config"
	"go.uber.org/zap"
)

// Durable keys of a privacy session
const (
	KeyContent        = "cv_temp_content"
	KeyPrivacyMode    = "privacy_mode_enabled"
	KeyDeleteDeadline = "delete_deadline"
)

// SessionKeys lists every durable key a privacy session writes
var SessionKeys = []string{KeyContent, KeyPrivacyMode, KeyDeleteDeadline}

// KV is a string key-value store
type KV interface {
	// Get returns the value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the keys; missing keys are ignored
	Delete(ctx context.Context, keys ...string) error
	// Scan returns every key starting with prefix, sorted
	Scan(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Open creates the backend selected by the configuration
func Open(cfg config.StoreConfig, logger *zap.Logger) (KV, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(cfg.RedisURL, logger)
	case "sqlite":
		return NewSQLite(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

// scoped prefixes every key with a namespace
type scoped struct {
	KV
	prefix string
}

// Scoped returns a view of kv where every key lives under prefix + ":".
// Closing the view does not close the underlying store.
func Scoped(kv KV, prefix string) KV {
	return &scoped{KV: kv, prefix: prefix + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.KV.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.KV.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.prefix + key
	}
	return s.KV.Delete(ctx, full...)
}

func (s *scoped) Scan(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.KV.Scan(ctx, s.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		keys[i] = strings.TrimPrefix(key, s.prefix)
	}
	return keys, nil
}

func (s *scoped) Close() error { return nil }
