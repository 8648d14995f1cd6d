// Package memory implements the storage interface with in-process maps.
// It backs tests and the CLI's ephemeral mode; every read returns a deep
// copy so callers can never mutate stored state in place.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdvu/chanwork/internal/storage"
	"github.com/tdvu/chanwork/internal/types"
)

// Store is an in-memory work-item store.
type Store struct {
	mu        sync.RWMutex
	items     map[string]*types.WorkItem
	members   map[string]map[string]bool
	technical map[string]bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		items:     make(map[string]*types.WorkItem),
		members:   make(map[string]map[string]bool),
		technical: make(map[string]bool),
	}
}

// AddChannel registers a channel and whether it belongs to the technical domain.
func (s *Store) AddChannel(_ context.Context, channelID string, technical bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[channelID] == nil {
		s.members[channelID] = make(map[string]bool)
	}
	s.technical[channelID] = technical
	return nil
}

// AddMember adds a user to a channel's member set, registering the channel
// if needed.
func (s *Store) AddMember(_ context.Context, channelID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[channelID] == nil {
		s.members[channelID] = make(map[string]bool)
	}
	s.members[channelID][userID] = true
	return nil
}

// RemoveMember drops a user from a channel's member set.
func (s *Store) RemoveMember(_ context.Context, channelID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members[channelID], userID)
	return nil
}

// IsMember implements storage.ChannelDirectory.
func (s *Store) IsMember(_ context.Context, channelID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[channelID][userID], nil
}

// IsTechnical implements storage.ChannelDirectory.
func (s *Store) IsTechnical(_ context.Context, channelID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.technical[channelID], nil
}

// CreateItem implements storage.Store.
func (s *Store) CreateItem(_ context.Context, item *types.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; ok {
		return storage.ErrDuplicateID
	}
	s.items[item.ID] = item.Clone()
	return nil
}

// GetItem implements storage.Store.
func (s *Store) GetItem(_ context.Context, id string) (*types.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return item.Clone(), nil
}

// UpdateItem implements storage.Store. The whole record is replaced;
// concurrent writers race with last-writer-wins semantics.
func (s *Store) UpdateItem(_ context.Context, item *types.WorkItem) (*types.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return nil, storage.ErrNotFound
	}
	s.items[item.ID] = item.Clone()
	return item.Clone(), nil
}

// ListItems implements storage.Store. Results are ordered newest first.
func (s *Store) ListItems(_ context.Context, filter types.ItemFilter) ([]*types.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*types.WorkItem
	for _, item := range s.items {
		if filter.ChannelID != "" && item.ChannelID != filter.ChannelID {
			continue
		}
		if filter.CreatorID != "" && item.CreatorID != filter.CreatorID {
			continue
		}
		if filter.Kind != nil && item.Kind != *filter.Kind {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(item.Status, filter.Statuses) {
			continue
		}
		matched = append(matched, item)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 60
	}
	start := filter.Page * perPage
	if start >= len(matched) {
		return nil, nil
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*types.WorkItem, 0, end-start)
	for _, item := range matched[start:end] {
		out = append(out, item.Clone())
	}
	return out, nil
}

// CountByStatus implements storage.Store.
func (s *Store) CountByStatus(_ context.Context, scope types.Scope, kind types.Kind, statuses []types.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		if item.Kind != kind || !statusIn(item.Status, statuses) {
			continue
		}
		switch scope.Kind {
		case types.ScopeChannel:
			if item.ChannelID != scope.ID {
				continue
			}
		case types.ScopeTechnical:
			if !s.technical[item.ChannelID] {
				continue
			}
		case types.ScopeUser:
			if item.CreatorID != scope.ID {
				continue
			}
		}
		count++
	}
	return count, nil
}

// Statuses returns the current status of each requested item, omitting IDs
// that do not exist. It is the read-only resolver for plan-linked items.
func (s *Store) Statuses(_ context.Context, ids []string) (map[string]types.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]types.Status, len(ids))
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			out[id] = item.Status
		}
	}
	return out, nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return nil
}

func statusIn(s types.Status, set []types.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
