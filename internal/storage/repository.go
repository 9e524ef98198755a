package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"jetgrind/internal/domain"
)

// ErrNotFound is returned by id-addressed operations when no item matches.
var ErrNotFound = errors.New("storage: not found")

// ListRepository persists the whole ordered item list. The item store
// only needs load-all and save-all.
type ListRepository interface {
	// LoadAll returns every stored item, most recent first. An empty store
	// yields an empty list.
	LoadAll(ctx context.Context) ([]domain.Item, error)

	// SaveAll overwrites the stored list with items, keeping their order.
	SaveAll(ctx context.Context, items []domain.Item) error

	// Close gracefully shuts down the repository connection.
	Close() error
}

// ItemRepository adds operations addressed by item id, for backends that
// store items individually.
type ItemRepository interface {
	ListRepository

	CreateItem(ctx context.Context, item domain.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, filter ItemListFilter) ([]domain.Item, error)
}

// ItemListFilter narrows ListItems.
type ItemListFilter struct {
	// Completed, when set, keeps only items with that completion state.
	Completed *bool
	Limit     int
	Offset    int
}
