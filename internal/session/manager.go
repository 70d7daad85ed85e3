package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"calc-editor/internal/editor"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serialises work on each session id. Locks are reference counted
// and dropped once nobody waits on them.
type Manager struct {
	store  Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*lockEntry
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager returns a manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		logger: zap.NewNop(),
		locks:  make(map[string]*lockEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn while holding the lock for id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	return fn(ctx)
}

// Create stores a fresh editor snapshot under a new random id.
func (m *Manager) Create(ctx context.Context) (string, editor.Snapshot, error) {
	id := uuid.NewString()
	snap := editor.Initial()
	if err := m.store.Save(ctx, id, snap); err != nil {
		return "", editor.Snapshot{}, fmt.Errorf("create session: %w", err)
	}
	m.logger.Debug("session created", zap.String("session_id", id))
	return id, snap, nil
}

// Get returns the stored snapshot for id.
func (m *Manager) Get(ctx context.Context, id string) (editor.Snapshot, error) {
	var snap editor.Snapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, id)
		return err
	})
	return snap, err
}

// Update loads the snapshot for id, transforms it with fn and saves the
// result, all under the session lock. An unchanged snapshot is not rewritten;
// stores implementing Toucher only get their expiry refreshed.
func (m *Manager) Update(ctx context.Context, id string, fn func(editor.Snapshot) editor.Snapshot) (editor.Snapshot, error) {
	var next editor.Snapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		next = fn(current)
		if next == current {
			if t, ok := m.store.(Toucher); ok {
				return t.Touch(ctx, id)
			}
			return nil
		}
		return m.store.Save(ctx, id, next)
	})
	return next, err
}

// Delete removes id. It returns ErrNotFound for unknown sessions.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, id); err != nil {
			return err
		}
		if err := m.store.Delete(ctx, id); err != nil {
			return err
		}
		m.logger.Debug("session deleted", zap.String("session_id", id))
		return nil
	})
}

// Count returns the number of live sessions.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}
