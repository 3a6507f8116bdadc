// Package storage persists the progress document in a key/value storage area
// and relays change notifications between instances sharing that area.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/lac-hong-legacy/learning_hub/shared"
)

// Backend is a string key/value storage area.
type Backend interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Name() string
}

var ErrUnavailable = errors.New("storage unavailable")

// Probe checks that backend accepts a write and a delete.
func Probe(ctx context.Context, backend Backend) error {
	if backend == nil {
		return ErrUnavailable
	}
	if err := backend.SetItem(ctx, shared.StorageProbeKey, shared.StorageProbeKey); err != nil {
		return fmt.Errorf("%w: %s write: %v", ErrUnavailable, backend.Name(), err)
	}
	if err := backend.RemoveItem(ctx, shared.StorageProbeKey); err != nil {
		return fmt.Errorf("%w: %s remove: %v", ErrUnavailable, backend.Name(), err)
	}
	return nil
}
