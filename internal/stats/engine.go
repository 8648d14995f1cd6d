// Package stats maintains aggregate work-item counters per scope. A scope is
// one channel, the technical domain or one creator; each holds a (kind x
// bucket) counter matrix.
//
// Counters are hydrated once per scope from authoritative store counts, then
// maintained incrementally from lifecycle events. Events arriving before
// hydration accumulate from zero and the eventual hydration overwrites them
// with the authoritative counts.
package stats

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/tdvu/chanwork/internal/eventbus"
	"github.com/tdvu/chanwork/internal/telemetry"
	"github.com/tdvu/chanwork/internal/types"
)

// CountSource answers authoritative count queries for hydration. The storage
// backends implement it.
type CountSource interface {
	CountByStatus(ctx context.Context, scope types.Scope, kind types.Kind, statuses []types.Status) (int, error)
}

// bucketStatuses maps each counter bucket to the statuses it covers.
var bucketStatuses = map[types.Bucket][]types.Status{
	types.BucketOpen:          {types.StatusNew, types.StatusConfirmed},
	types.BucketPendingReview: {types.StatusDone},
	types.BucketCompleted:     {types.StatusCompleted},
}

// scopeCounters holds one scope's counter matrix.
type scopeCounters struct {
	mu       sync.Mutex
	hydrated bool
	counts   map[types.CounterKey]int
}

// Engine maintains counters for every scope it has seen. It implements
// eventbus.Handler for lifecycle events.
type Engine struct {
	source CountSource

	mu     sync.Mutex
	scopes map[string]*scopeCounters
	group  singleflight.Group

	created     metric.Int64Counter
	transitions metric.Int64Counter
}

// NewEngine creates an engine over the given count source.
func NewEngine(source CountSource) *Engine {
	meter := telemetry.Meter("chanwork/stats")
	created, _ := meter.Int64Counter("chanwork.items.created",
		metric.WithDescription("Work items created"))
	transitions, _ := meter.Int64Counter("chanwork.transitions",
		metric.WithDescription("Work-item status transitions"))

	return &Engine{
		source:      source,
		scopes:      make(map[string]*scopeCounters),
		created:     created,
		transitions: transitions,
	}
}

// ID implements eventbus.Handler.
func (e *Engine) ID() string { return "stats-engine" }

// Priority implements eventbus.Handler.
func (e *Engine) Priority() int { return 10 }

// Handles implements eventbus.Handler.
func (e *Engine) Handles() []eventbus.EventType {
	return []eventbus.EventType{eventbus.EventItemCreated, eventbus.EventStatusChanged}
}

// Handle implements eventbus.Handler. Each event updates the counters of
// every scope it touches.
func (e *Engine) Handle(ctx context.Context, ev *eventbus.Event) error {
	for _, scope := range ScopesFor(ev) {
		e.apply(scope, ev)
	}
	e.record(ctx, ev)
	return nil
}

// ScopesFor returns the counter scopes one event touches: the owning
// channel, the technical domain when the channel belongs to it, and the
// item's creator.
func ScopesFor(ev *eventbus.Event) []types.Scope {
	scopes := []types.Scope{types.ChannelScope(ev.ChannelID)}
	if ev.Technical {
		scopes = append(scopes, types.TechnicalScope())
	}
	if ev.CreatorID != "" {
		scopes = append(scopes, types.UserScope(ev.CreatorID))
	}
	return scopes
}

func (e *Engine) counters(scope types.Scope) *scopeCounters {
	e.mu.Lock()
	defer e.mu.Unlock()
	sc, ok := e.scopes[scope.Key()]
	if !ok {
		sc = &scopeCounters{counts: make(map[types.CounterKey]int)}
		e.scopes[scope.Key()] = sc
	}
	return sc
}

func (e *Engine) apply(scope types.Scope, ev *eventbus.Event) {
	sc := e.counters(scope)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	switch ev.Type {
	case eventbus.EventItemCreated:
		bucket, ok := types.BucketOf(ev.NewStatus)
		if !ok {
			log.Printf("stats: unknown status %q on created event %s", ev.NewStatus, ev.ItemID)
			return
		}
		sc.counts[types.CounterKey{Kind: ev.Kind, Bucket: bucket}]++

	case eventbus.EventStatusChanged:
		oldBucket, okOld := types.BucketOf(ev.OldStatus)
		newBucket, okNew := types.BucketOf(ev.NewStatus)
		if !okOld || !okNew {
			log.Printf("stats: unknown status on transition event %s (%q -> %q)",
				ev.ItemID, ev.OldStatus, ev.NewStatus)
			return
		}
		// Transitions inside one bucket change nothing.
		if oldBucket == newBucket {
			return
		}
		oldKey := types.CounterKey{Kind: ev.Kind, Bucket: oldBucket}
		if sc.counts[oldKey] <= 0 {
			log.Printf("stats: counter underflow for %s in scope %s", ev.ItemID, scope.Key())
			sc.counts[oldKey] = 0
		} else {
			sc.counts[oldKey]--
		}
		sc.counts[types.CounterKey{Kind: ev.Kind, Bucket: newBucket}]++
	}
}

func (e *Engine) record(ctx context.Context, ev *eventbus.Event) {
	attrs := metric.WithAttributes(
		attribute.String("kind", string(ev.Kind)),
		attribute.String("channel", ev.ChannelID),
	)
	switch ev.Type {
	case eventbus.EventItemCreated:
		e.created.Add(ctx, 1, attrs)
	case eventbus.EventStatusChanged:
		e.transitions.Add(ctx, 1, attrs)
	}
}

// Hydrate loads a scope's counters from the authoritative store counts. It
// is idempotent; once a scope is hydrated further calls return immediately.
// Concurrent callers for the same scope share one fetch.
func (e *Engine) Hydrate(ctx context.Context, scope types.Scope) error {
	sc := e.counters(scope)
	sc.mu.Lock()
	hydrated := sc.hydrated
	sc.mu.Unlock()
	if hydrated {
		return nil
	}

	_, err, _ := e.group.Do(scope.Key(), func() (any, error) {
		counts, err := e.fetch(ctx, scope)
		if err != nil {
			return nil, err
		}
		sc.mu.Lock()
		defer sc.mu.Unlock()
		if sc.hydrated {
			return nil, nil
		}
		// Replace, never merge: the fetched counts are authoritative and
		// supersede any deltas applied before hydration.
		sc.counts = counts
		sc.hydrated = true
		return nil, nil
	})
	return err
}

func (e *Engine) fetch(ctx context.Context, scope types.Scope) (map[types.CounterKey]int, error) {
	counts := make(map[types.CounterKey]int)
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	err := backoff.Retry(func() error {
		for _, kind := range types.Kinds() {
			for _, bucket := range types.Buckets() {
				n, err := e.source.CountByStatus(ctx, scope, kind, bucketStatuses[bucket])
				if err != nil {
					return fmt.Errorf("count %s/%s: %w", kind, bucket, err)
				}
				counts[types.CounterKey{Kind: kind, Bucket: bucket}] = n
			}
		}
		return nil
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("stats: hydrate %s: %w", scope.Key(), err)
	}
	return counts, nil
}

// Hydrated reports whether the scope has been hydrated.
func (e *Engine) Hydrated(scope types.Scope) bool {
	sc := e.counters(scope)
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.hydrated
}

// Snapshot returns a copy of the scope's full counter matrix with every
// (kind, bucket) pair present, zero-filled where no items exist.
func (e *Engine) Snapshot(scope types.Scope) map[types.CounterKey]int {
	sc := e.counters(scope)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	out := make(map[types.CounterKey]int, len(types.Kinds())*len(types.Buckets()))
	for _, kind := range types.Kinds() {
		for _, bucket := range types.Buckets() {
			key := types.CounterKey{Kind: kind, Bucket: bucket}
			out[key] = sc.counts[key]
		}
	}
	return out
}
