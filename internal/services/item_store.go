package services

import (
	"context"

	"github.com/nexusfind/backend/internal/models"
)

// ItemsCollection is the name of the remote item collection.
const ItemsCollection = "items"

// Snapshot is one notification from a live subscription: either the full
// collection or the error that ended the subscription.
type Snapshot struct {
	Items []models.Item
	Err   error
}

// ItemStore is the remote item collection.
//
// Watch delivers the current collection first, then a full snapshot after every
// change, in the order the store applied the writes. After a snapshot carrying
// Err the channel is closed. The channel is also closed once ctx ends; stores
// never block a send past ctx cancellation.
type ItemStore interface {
	Watch(ctx context.Context) (<-chan Snapshot, error)
	List(ctx context.Context) ([]models.Item, error)
	// Create stores item without its ID and returns the generated id.
	Create(ctx context.Context, item models.Item) (string, error)
	SetResolved(ctx context.Context, id string, resolved bool) error
	Close(ctx context.Context) error
}
