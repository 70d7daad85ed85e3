// Package session persists editor snapshots between requests and serialises
// access to each one.
package session

import (
	"context"
	"errors"

	"calc-editor/internal/editor"
)

// ErrNotFound is returned when a session id is unknown to the store.
var ErrNotFound = errors.New("session not found")

// Store persists snapshots by session id.
type Store interface {
	// Save persists the snapshot for id, replacing any previous one.
	Save(ctx context.Context, id string, s editor.Snapshot) error

	// Load returns ErrNotFound if id does not exist.
	Load(ctx context.Context, id string) (editor.Snapshot, error)

	Delete(ctx context.Context, id string) error

	// List returns the ids of live sessions.
	List(ctx context.Context) ([]string, error)

	// Count returns the number of live sessions without listing them.
	Count(ctx context.Context) (int, error)
}

// Toucher is implemented by stores whose entries expire. Touch restarts the
// expiry of id without rewriting it.
type Toucher interface {
	Touch(ctx context.Context, id string) error
}
