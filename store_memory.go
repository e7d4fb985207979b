package gotrail

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// MemoryStore keeps actions in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	actions []Action
	seq     int64
	last    time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Persist(_ context.Context, actions []Action) error {
	if len(actions) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	if ts.Before(s.last) {
		ts = s.last
	}
	s.last = ts
	for _, a := range actions {
		s.seq++
		a.ID = s.seq
		a.CreatedAt = ts
		a.UpdatedAt = ts
		s.actions = append(s.actions, a)
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, collection string, entityID any, page Page) (*ActionPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Action
	for i := len(s.actions) - 1; i >= 0; i-- {
		a := s.actions[i]
		if a.EntityCollection == collection && reflect.DeepEqual(a.EntityID, entityID) {
			matched = append(matched, a)
		}
	}

	out := &ActionPage{Actions: []Action{}, Total: int64(len(matched)), Offset: page.Offset, Limit: page.Limit}
	if page.Offset >= len(matched) || page.Limit == 0 {
		return out, nil
	}
	end := len(matched)
	if page.Limit < end-page.Offset {
		end = page.Offset + page.Limit
	}
	out.Actions = append(out.Actions, matched[page.Offset:end]...)
	return out, nil
}

// Len reports the number of stored actions across all entities.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actions)
}
