// Package database defines the person registry storage contracts and the
// in-memory similarity index. Concrete backends live in subpackages.
package database

import "time"

// StoredPerson is a registered person with their reference face embedding.
type StoredPerson struct {
	ID             int64     `json:"id"`
	UID            string    `json:"uid"`
	Name           string    `json:"name"`
	NameNormalized string    `json:"-"`
	Embedding      []float32 `json:"-"`
	Dim            int       `json:"dim"`
	Model          string    `json:"model,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PersonMatch pairs a stored person with their similarity to a query
// embedding.
type PersonMatch struct {
	Person     StoredPerson `json:"person"`
	Similarity float64      `json:"similarity"`
}
