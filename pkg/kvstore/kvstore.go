// Package kvstore defines the durable string-keyed storage that backs carts and
// wishlists, plus an in-process implementation used by tests and the memory backend.
package kvstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a synchronous get/set key-value medium. Implementations must make a
// successful Set visible to every later Get on the same key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ExpiringStore adds writes that lapse after ttl, for short-lived records such
// as replayable responses. SetNX writes only when the key is absent and
// reports whether it did.
type ExpiringStore interface {
	Store
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// Pinger is implemented by backends that support readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Memory keeps values in a map. It survives nothing but is handy for the
// memory backend and tests.
type Memory struct {
	mu      sync.RWMutex
	data    map[string]string
	expires map[string]time.Time
	now     func() time.Time
}

var _ ExpiringStore = (*Memory)(nil)

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		data:    make(map[string]string),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.liveLocked(key) {
		return "", ErrNotFound
	}
	return m.data[key], nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	delete(m.expires, key)
	return nil
}

// SetWithTTL stores value until ttl elapses. A non-positive ttl never expires.
func (m *Memory) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, value, ttl)
	return nil
}

// SetNX stores value only when key is absent or expired.
func (m *Memory) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.liveLocked(key) {
		return false, nil
	}
	m.setLocked(key, value, ttl)
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.expires, key)
	return nil
}

// Sweep drops expired keys and reports how many it removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for key, deadline := range m.expires {
		if !now.Before(deadline) {
			delete(m.data, key)
			delete(m.expires, key)
			removed++
		}
	}
	return removed
}

func (m *Memory) setLocked(key, value string, ttl time.Duration) {
	m.data[key] = value
	if ttl > 0 {
		m.expires[key] = m.now().Add(ttl)
		return
	}
	delete(m.expires, key)
}

func (m *Memory) liveLocked(key string) bool {
	if _, ok := m.data[key]; !ok {
		return false
	}
	deadline, ok := m.expires[key]
	return !ok || m.now().Before(deadline)
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

// Key joins the namespace and non-empty parts with ":" the way redis keys are
// conventionally spelled, e.g. Key("fc", "cart", "p1") == "fc:cart:p1".
func Key(namespace string, parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	if ns := strings.TrimSpace(namespace); ns != "" {
		clean = append(clean, ns)
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
