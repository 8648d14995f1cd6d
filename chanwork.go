// Package chanwork provides a minimal public API for embedding the work-item
// kernel in other Go programs.
//
// This package exports only the essential types and constructors. The full
// behavior lives in the internal packages; embedders wire a store, an event
// bus and a controller the same way cmd/cw does.
package chanwork

import (
	"context"

	"github.com/tdvu/chanwork/internal/eventbus"
	"github.com/tdvu/chanwork/internal/lifecycle"
	"github.com/tdvu/chanwork/internal/stats"
	"github.com/tdvu/chanwork/internal/storage"
	"github.com/tdvu/chanwork/internal/storage/memory"
	"github.com/tdvu/chanwork/internal/storage/sqlstore"
	"github.com/tdvu/chanwork/internal/types"
)

// Core types for working with items
type (
	WorkItem      = types.WorkItem
	Kind          = types.Kind
	Status        = types.Status
	Bucket        = types.Bucket
	Scope         = types.Scope
	CounterKey    = types.CounterKey
	ChecklistItem = types.ChecklistItem
	ItemFilter    = types.ItemFilter
)

// Kind constants
const (
	KindTrouble = types.KindTrouble
	KindIssue   = types.KindIssue
	KindPlan    = types.KindPlan
	KindTask    = types.KindTask
)

// Status constants
const (
	StatusNew       = types.StatusNew
	StatusConfirmed = types.StatusConfirmed
	StatusDone      = types.StatusDone
	StatusCompleted = types.StatusCompleted
)

// Orchestration types
type (
	Controller    = lifecycle.Controller
	CreateRequest = lifecycle.CreateRequest
	Engine        = stats.Engine
	Bus           = eventbus.Bus
	Store         = storage.Store
)

// Sentinel errors
var (
	ErrNotFound    = storage.ErrNotFound
	ErrDuplicateID = storage.ErrDuplicateID
)

// Backend is what both bundled storage backends provide.
type Backend interface {
	storage.Store
	storage.ChannelDirectory
	storage.ChannelAdmin
	Statuses(ctx context.Context, ids []string) (map[string]types.Status, error)
}

// NewMemoryBackend returns an in-process backend for tests and ephemeral use.
func NewMemoryBackend() Backend {
	return memory.New()
}

// NewMySQLBackend opens a MySQL-backed store. The DSN must enable parseTime.
func NewMySQLBackend(ctx context.Context, dsn string) (Backend, error) {
	s, err := sqlstore.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewKernel wires a backend into a ready-to-use controller, bus and stats
// engine.
func NewKernel(backend Backend) (*Controller, *Engine, *Bus) {
	bus := eventbus.New()
	engine := stats.NewEngine(backend)
	bus.Register(engine)
	ctrl := lifecycle.NewController(backend, backend, backend, bus)
	return ctrl, engine, bus
}
