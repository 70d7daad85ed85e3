package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calc-editor/internal/editor"
)

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore())

	id, snap, err := m.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, editor.Initial(), snap)

	updated, err := m.Update(ctx, id, func(s editor.Snapshot) editor.Snapshot {
		s.Buffer = "42"
		return s
	})
	require.NoError(t, err)
	assert.Equal(t, "42", updated.Buffer)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, m.Delete(ctx, id))
	_, err = m.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, id), ErrNotFound)
}

func TestManager_UpdateMissing(t *testing.T) {
	m := NewManager(NewMemoryStore())
	_, err := m.Update(context.Background(), "nope", func(s editor.Snapshot) editor.Snapshot { return s })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_SerialisesUpdates(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore())
	id, _, err := m.Create(ctx)
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, id, func(s editor.Snapshot) editor.Snapshot {
				s.Buffer += "1"
				return s
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Buffer, workers)

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks, "locks must be released once unused")
}

func TestManager_NoopUpdateRefreshesRedisTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	m := NewManager(NewRedisStoreFromClient(client, WithTTL(time.Minute)))

	id, _, err := m.Create(ctx)
	require.NoError(t, err)

	// A rejected leading operator leaves the snapshot as it is.
	machine := editor.NewMachine(editor.EvaluatorFunc(func(string) (float64, error) { return 0, nil }))
	for i := 0; i < 3; i++ {
		mr.FastForward(40 * time.Second)
		snap, err := m.Update(ctx, id, func(s editor.Snapshot) editor.Snapshot {
			return machine.Append(s, editor.Add)
		})
		require.NoError(t, err)
		assert.Equal(t, editor.Initial(), snap)
		assert.Equal(t, time.Minute, mr.TTL(defaultPrefix+id))
	}

	_, err = m.Get(ctx, id)
	assert.NoError(t, err, "session outlived its TTL while in use")
}
