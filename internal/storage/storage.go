// Package storage provides shared types for work-item storage.
//
// Concrete implementations live in the memory and sqlstore sub-packages.
// This package holds the interface and sentinel errors referenced by both
// the implementations and their consumers (internal/lifecycle, cmd/cw).
package storage

import (
	"context"
	"errors"

	"github.com/tdvu/chanwork/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrDuplicateID is returned when creating an item whose ID already exists.
var ErrDuplicateID = errors.New("duplicate item id")

// Store is the interface satisfied by the memory and sqlstore backends.
//
// The kernel never mutates persisted fields outside UpdateItem; each update
// replaces the full record in one round trip. Conflicting writers for the
// same item are serialized (or last-writer-wins) by the backend, not here.
type Store interface {
	// Item CRUD
	CreateItem(ctx context.Context, item *types.WorkItem) error
	GetItem(ctx context.Context, id string) (*types.WorkItem, error)
	UpdateItem(ctx context.Context, item *types.WorkItem) (*types.WorkItem, error)
	ListItems(ctx context.Context, filter types.ItemFilter) ([]*types.WorkItem, error)

	// CountByStatus returns the authoritative number of items of one kind in
	// any of the given statuses within a scope. Used only for counter
	// hydration; steady-state counts come from incremental deltas.
	CountByStatus(ctx context.Context, scope types.Scope, kind types.Kind, statuses []types.Status) (int, error)

	// Lifecycle
	Close() error
}

// ChannelDirectory answers channel membership and domain questions. Both
// backends implement it alongside Store.
type ChannelDirectory interface {
	IsMember(ctx context.Context, channelID, userID string) (bool, error)
	IsTechnical(ctx context.Context, channelID string) (bool, error)
}

// ChannelAdmin mutates the channel registry. In production the chat layer
// owns this data; the CLI exposes it for setup and tests.
type ChannelAdmin interface {
	AddChannel(ctx context.Context, channelID string, technical bool) error
	AddMember(ctx context.Context, channelID, userID string) error
	RemoveMember(ctx context.Context, channelID, userID string) error
}
