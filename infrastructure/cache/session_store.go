package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"social-connect/domain/model"
	"social-connect/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps browser-session keys in redis.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *SessionStore) key(k string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, k)
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrSessionKeyAbsent
		}
		return "", fmt.Errorf("failed to get session key: %w", err)
	}
	return v, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session key: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete session key: %w", err)
	}
	return nil
}

// Take uses GETDEL so two instances cannot both consume the same key.
func (s *SessionStore) Take(ctx context.Context, key string) (string, error) {
	v, err := s.client.GetDel(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrSessionKeyAbsent
		}
		return "", fmt.Errorf("failed to take session key: %w", err)
	}
	return v, nil
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemorySessionStore is a process-local session store.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemorySessionStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || (!e.expiresAt.IsZero() && s.now().After(e.expiresAt)) {
		return "", model.ErrSessionKeyAbsent
	}
	return e.value, nil
}

func (s *MemorySessionStore) Set(_ context.Context, key, value string) error {
	e := memoryEntry{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Take(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	delete(s.entries, key)
	if !ok || (!e.expiresAt.IsZero() && s.now().After(e.expiresAt)) {
		return "", model.ErrSessionKeyAbsent
	}
	return e.value, nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemorySessionStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweeper removes expired entries every interval until ctx is done.
func (s *MemorySessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					logger.GetLogger().WithField("removed", n).Debug("Swept expired session keys")
				}
			}
		}
	}()
}

// FallbackSessionStore writes through to redis while it is healthy and always
// keeps a local copy. The local copy is only read when redis cannot answer;
// a key redis reports absent stays absent even if this process still holds it.
type FallbackSessionStore struct {
	remote      *SessionStore
	local       *MemorySessionStore
	healthCheck func() bool
}

func NewFallbackSessionStore(remote *SessionStore, local *MemorySessionStore, healthCheck func() bool) *FallbackSessionStore {
	return &FallbackSessionStore{remote: remote, local: local, healthCheck: healthCheck}
}

func (s *FallbackSessionStore) remoteUsable() bool {
	return s.remote != nil && s.healthCheck != nil && s.healthCheck()
}

func (s *FallbackSessionStore) Get(ctx context.Context, key string) (string, error) {
	if s.remoteUsable() {
		v, err := s.remote.Get(ctx, key)
		switch {
		case err == nil:
			_ = s.local.Set(ctx, key, v)
			return v, nil
		case errors.Is(err, model.ErrSessionKeyAbsent):
			_ = s.local.Delete(ctx, key)
			return "", err
		}
		logger.GetLogger().WithField("error", err).Warn("Session read from redis failed, using local copy")
	}
	return s.local.Get(ctx, key)
}

func (s *FallbackSessionStore) Take(ctx context.Context, key string) (string, error) {
	if s.remoteUsable() {
		v, err := s.remote.Take(ctx, key)
		if err == nil || errors.Is(err, model.ErrSessionKeyAbsent) {
			_ = s.local.Delete(ctx, key)
			return v, err
		}
		logger.GetLogger().WithField("error", err).Warn("Session take from redis failed, using local copy")
	}
	return s.local.Take(ctx, key)
}

func (s *FallbackSessionStore) Set(ctx context.Context, key, value string) error {
	_ = s.local.Set(ctx, key, value)
	if s.remoteUsable() {
		if err := s.remote.Set(ctx, key, value); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Session write to redis failed, kept local copy")
		}
	}
	return nil
}

func (s *FallbackSessionStore) Delete(ctx context.Context, key string) error {
	_ = s.local.Delete(ctx, key)
	if s.remoteUsable() {
		if err := s.remote.Delete(ctx, key); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Session delete in redis failed")
			return err
		}
	}
	return nil
}
