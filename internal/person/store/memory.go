package store

import (
	"context"
	"sync"

	"personpatch/internal/person/models"
	id "personpatch/pkg/domain"
	"personpatch/pkg/platform/sentinel"
)

// InMemory keeps people in a map and remembers insertion order for listing.
type InMemory struct {
	mu     sync.RWMutex
	people map[id.PersonID]entity
	order  []id.PersonID
}

func NewInMemory() *InMemory {
	return &InMemory{people: make(map[id.PersonID]entity)}
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Person, 0, len(s.order))
	for _, personID := range s.order {
		out = append(out, s.people[personID].toPerson())
	}
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, personID id.PersonID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.people[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.toPerson(), nil
}

// Insert stores p, assigning an id when p has none. The assigned id is also
// written back to p.
func (s *InMemory) Insert(_ context.Context, p *models.Person) (id.PersonID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	personID := assignID(p)
	if _, exists := s.people[personID]; exists {
		return "", sentinel.ErrConflict
	}
	s.people[personID] = toEntity(p)
	s.order = append(s.order, personID)
	return personID, nil
}

// Replace overwrites the person stored under personID and returns the
// previous version. Nothing is written when personID is unknown.
func (s *InMemory) Replace(_ context.Context, personID id.PersonID, p *models.Person) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, ok := s.people[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e := toEntity(p)
	e.ID = personID.String()
	s.people[personID] = e
	return previous.toPerson(), nil
}
