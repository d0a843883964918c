package database

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"
)

// PersonIndex wraps an HNSW graph over registered person embeddings for
// fast nearest-neighbor lookup. It is safe for concurrent use.
type PersonIndex struct {
	graph      *hnsw.Graph[int64]
	idToPerson map[int64]*StoredPerson
	mu         sync.RWMutex
}

// NewPersonIndex creates a new empty index.
func NewPersonIndex() *PersonIndex {
	return &PersonIndex{
		idToPerson: make(map[int64]*StoredPerson),
	}
}

func newPersonGraph() *hnsw.Graph[int64] {
	g := hnsw.NewGraph[int64]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// Build replaces the index contents with the given persons. Persons
// without an embedding are skipped.
func (h *PersonIndex) Build(persons []StoredPerson) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(persons) == 0 {
		h.graph = nil
		h.idToPerson = make(map[int64]*StoredPerson)
		return
	}

	g := newPersonGraph()
	h.idToPerson = make(map[int64]*StoredPerson, len(persons))

	for i := range persons {
		p := &persons[i]
		if len(p.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(p.ID, p.Embedding))
		h.idToPerson[p.ID] = p
	}

	h.graph = g
}

// Add inserts a single person into the index.
func (h *PersonIndex) Add(p *StoredPerson) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(p.Embedding) == 0 {
		return
	}
	if h.graph == nil {
		h.graph = newPersonGraph()
	}
	h.graph.Add(hnsw.MakeNode(p.ID, p.Embedding))
	h.idToPerson[p.ID] = p
}

// Remove drops a person from the index by ID. The graph node stays but is
// filtered out of search results through the lookup map.
func (h *PersonIndex) Remove(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.idToPerson, id)
}

// Len returns the number of indexed persons.
func (h *PersonIndex) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToPerson)
}

// Search returns up to k persons ordered by descending cosine similarity
// to the query embedding.
func (h *PersonIndex) Search(query []float32, k int) ([]PersonMatch, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, errors.New("index not initialized")
	}

	neighbors := h.graph.Search(query, k)

	matches := make([]PersonMatch, 0, len(neighbors))
	for _, n := range neighbors {
		person, ok := h.idToPerson[n.Key]
		if !ok {
			// Removed person; the graph node lingers.
			continue
		}
		sim := 1 - float64(hnsw.CosineDistance(query, n.Value))
		if sim > 1 {
			sim = 1
		}
		if sim < -1 {
			sim = -1
		}
		matches = append(matches, PersonMatch{Person: *person, Similarity: sim})
	}

	return matches, nil
}
