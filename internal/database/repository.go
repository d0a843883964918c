package database

import (
	"context"
	"errors"
)

// ErrPersonNotFound is returned by lookups for a person that is not
// registered.
var ErrPersonNotFound = errors.New("person not found")

// PersonReader provides read-only access to registered persons.
type PersonReader interface {
	// Get retrieves a person by UID.
	Get(ctx context.Context, uid string) (*StoredPerson, error)
	// GetByName retrieves a person by name. Names are normalized before
	// comparison (lowercase, no diacritics, dashes to spaces) so that
	// "jan-novak" matches "Jan Novák".
	GetByName(ctx context.Context, name string) (*StoredPerson, error)
	// List returns all registered persons ordered by name.
	List(ctx context.Context) ([]StoredPerson, error)
	// Count returns the number of registered persons.
	Count(ctx context.Context) (int, error)
	// FindNearest returns up to limit persons ordered by descending
	// cosine similarity to the query embedding.
	FindNearest(ctx context.Context, embedding []float32, limit int) ([]PersonMatch, error)
}

// PersonWriter provides write access to the person registry.
type PersonWriter interface {
	PersonReader

	// Save stores a person. An existing person with the same normalized
	// name is replaced. The assigned ID is written back to p.
	Save(ctx context.Context, p *StoredPerson) error
	// Delete removes a person by UID.
	Delete(ctx context.Context, uid string) error
}
