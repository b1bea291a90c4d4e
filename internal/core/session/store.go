package session

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by a Store for unknown or expired ids.
var ErrSessionNotFound = errors.New("session not found")

// Store persists session contexts by id.
type Store interface {
	Get(ctx context.Context, id string) (*Context, error)
	// Save writes sess unconditionally. Use it for sessions created or
	// rotated by the current request.
	Save(ctx context.Context, sess *Context) error
	// Update writes sess only if its id is still stored and returns
	// ErrSessionNotFound otherwise, so a request that outlives a logout
	// cannot bring the session back.
	Update(ctx context.Context, sess *Context) error
	Delete(ctx context.Context, id string) error
}
