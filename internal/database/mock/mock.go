// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-check/internal/database"
	"github.com/kozaktomas/face-check/internal/match"
)

// MockPersonRepository is an in-memory implementation of database.PersonWriter.
type MockPersonRepository struct {
	mu      sync.RWMutex
	nextID  int64
	persons map[string]*database.StoredPerson // keyed by UID

	// Error injection
	GetError         error
	GetByNameError   error
	ListError        error
	CountError       error
	FindNearestError error
	SaveError        error
	DeleteError      error
}

// NewMockPersonRepository creates a new empty mock repository.
func NewMockPersonRepository() *MockPersonRepository {
	return &MockPersonRepository{
		persons: make(map[string]*database.StoredPerson),
	}
}

// Get retrieves a person by UID.
func (m *MockPersonRepository) Get(ctx context.Context, uid string) (*database.StoredPerson, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.persons[uid]
	if !ok {
		return nil, database.ErrPersonNotFound
	}
	cp := *p
	return &cp, nil
}

// GetByName retrieves a person by normalized name.
func (m *MockPersonRepository) GetByName(ctx context.Context, name string) (*database.StoredPerson, error) {
	if m.GetByNameError != nil {
		return nil, m.GetByNameError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	normalized := database.NormalizePersonName(name)
	for _, p := range m.persons {
		if p.NameNormalized == normalized {
			cp := *p
			return &cp, nil
		}
	}
	return nil, database.ErrPersonNotFound
}

// List returns all persons ordered by name.
func (m *MockPersonRepository) List(ctx context.Context) ([]database.StoredPerson, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]database.StoredPerson, 0, len(m.persons))
	for _, p := range m.persons {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Count returns the number of stored persons.
func (m *MockPersonRepository) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.persons), nil
}

// FindNearest returns up to limit persons by brute-force cosine similarity.
func (m *MockPersonRepository) FindNearest(
	ctx context.Context, embedding []float32, limit int,
) ([]database.PersonMatch, error) {
	if m.FindNearestError != nil {
		return nil, m.FindNearestError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]database.PersonMatch, 0, len(m.persons))
	for _, p := range m.persons {
		sim, err := match.CosineSimilarity(match.Vector(embedding), match.Vector(p.Embedding))
		if err != nil {
			continue
		}
		matches = append(matches, database.PersonMatch{Person: *p, Similarity: sim})
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Save stores a person, replacing any existing person with the same
// normalized name.
func (m *MockPersonRepository) Save(ctx context.Context, p *database.StoredPerson) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p.NameNormalized = database.NormalizePersonName(p.Name)
	for uid, existing := range m.persons {
		if existing.NameNormalized == p.NameNormalized {
			p.ID = existing.ID
			p.UID = existing.UID
			cp := *p
			m.persons[uid] = &cp
			return nil
		}
	}

	m.nextID++
	p.ID = m.nextID
	if p.UID == "" {
		p.UID = uuid.NewString()
	}
	cp := *p
	m.persons[p.UID] = &cp
	return nil
}

// Delete removes a person by UID.
func (m *MockPersonRepository) Delete(ctx context.Context, uid string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.persons[uid]; !ok {
		return database.ErrPersonNotFound
	}
	delete(m.persons, uid)
	return nil
}
