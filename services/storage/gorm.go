package storage

import (
	"context"

	"github.com/lac-hong-legacy/learning_hub/services/repositories"
)

// GormBackend stores items as rows of the storage_items table. It serves both
// the sqlite and postgres engines.
type GormBackend struct {
	repo        *repositories.StorageRepository
	engine      string
	handleError func(error) error
}

// NewGormBackend wraps repo. handleError maps driver errors and may be nil.
func NewGormBackend(repo *repositories.StorageRepository, engine string, handleError func(error) error) *GormBackend {
	if handleError == nil {
		handleError = func(err error) error { return err }
	}
	return &GormBackend{repo: repo, engine: engine, handleError: handleError}
}

func (g *GormBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	item, err := g.repo.GetItem(ctx, key)
	if err != nil {
		return "", false, g.handleError(err)
	}
	if item == nil {
		return "", false, nil
	}
	return item.Value, true, nil
}

func (g *GormBackend) SetItem(ctx context.Context, key, value string) error {
	return g.handleError(g.repo.PutItem(ctx, key, value))
}

func (g *GormBackend) RemoveItem(ctx context.Context, key string) error {
	return g.handleError(g.repo.DeleteItem(ctx, key))
}

func (g *GormBackend) Name() string {
	return g.engine
}
