package repository

import (
	"context"
)

// ISessionStore is a string key/value store scoped to browser sessions.
// Get returns model.ErrSessionKeyAbsent when the key is not set.
type ISessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Take returns the value and removes the key in one step.
	Take(ctx context.Context, key string) (string, error)
}
