package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/AngelCh415/perfdash/internal/models"
)

type MemoryStore struct {
	mu        sync.RWMutex
	customers map[string]models.Customer
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[string]models.Customer),
		now:       utcNow,
	}
}

func (s *MemoryStore) List(_ context.Context, includeArchived bool) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if c.Archived && !includeArchived {
			continue
		}
		out = append(out, clone(c))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return models.Customer{}, models.ErrNotFound
	}
	return clone(c), nil
}

func (s *MemoryStore) Save(_ context.Context, c models.Customer) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = strings.TrimSpace(c.ID)
	var prev *models.Customer
	if old, ok := s.customers[c.ID]; ok && c.ID != "" {
		prev = &old
	}
	c, err := prepare(c, prev, s.now())
	if err != nil {
		return models.Customer{}, err
	}
	s.customers[c.ID] = c
	return clone(c), nil
}

func (s *MemoryStore) Archive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return models.ErrNotFound
	}
	c.Archived = true
	c.UpdatedAt = s.now()
	s.customers[id] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}
