package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-check/internal/database"
)

// PersonRepository provides PostgreSQL-backed person storage.
type PersonRepository struct {
	pool *Pool
}

// NewPersonRepository creates a new PostgreSQL person repository.
func NewPersonRepository(pool *Pool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

const personColumns = "id, uid, name, name_normalized, embedding, dim, model, created_at"

func scanPerson(row interface{ Scan(...any) error }) (*database.StoredPerson, error) {
	var p database.StoredPerson
	var vec pgvector.Vector
	err := row.Scan(&p.ID, &p.UID, &p.Name, &p.NameNormalized, &vec, &p.Dim, &p.Model, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Embedding = vec.Slice()
	return &p, nil
}

func scanPersons(rows *sql.Rows) ([]database.StoredPerson, error) {
	var persons []database.StoredPerson
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return persons, nil
}

// Get retrieves a person by UID.
func (r *PersonRepository) Get(ctx context.Context, uid string) (*database.StoredPerson, error) {
	query := "SELECT " + personColumns + " FROM persons WHERE uid = $1"
	p, err := scanPerson(r.pool.QueryRow(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query person: %w", err)
	}
	return p, nil
}

// GetByName retrieves a person by name. The lookup uses the normalized
// name so that "jan-novak" matches "Jan Novák".
func (r *PersonRepository) GetByName(ctx context.Context, name string) (*database.StoredPerson, error) {
	query := "SELECT " + personColumns + " FROM persons WHERE name_normalized = $1"
	p, err := scanPerson(r.pool.QueryRow(ctx, query, database.NormalizePersonName(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query person by name: %w", err)
	}
	return p, nil
}

// List returns all registered persons ordered by name.
func (r *PersonRepository) List(ctx context.Context) ([]database.StoredPerson, error) {
	query := "SELECT " + personColumns + " FROM persons ORDER BY name"
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query persons: %w", err)
	}
	defer rows.Close()

	return scanPersons(rows)
}

// Count returns the number of registered persons.
func (r *PersonRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM persons").Scan(&count); err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return count, nil
}

// FindNearest returns up to limit persons ordered by descending cosine
// similarity using the pgvector cosine distance operator.
func (r *PersonRepository) FindNearest(
	ctx context.Context, embedding []float32, limit int,
) ([]database.PersonMatch, error) {
	tx, err := r.pool.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", database.HNSWEfSearch)); err != nil {
		return nil, fmt.Errorf("set ef_search: %w", err)
	}

	query := `
		SELECT ` + personColumns + `, embedding <=> $1::vector AS distance
		FROM persons
		ORDER BY distance
		LIMIT $2
	`

	vec := pgvector.NewVector(embedding)
	rows, err := tx.QueryContext(ctx, query, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("query nearest persons: %w", err)
	}
	defer rows.Close()

	var matches []database.PersonMatch
	for rows.Next() {
		var p database.StoredPerson
		var v pgvector.Vector
		var distance float64
		err := rows.Scan(&p.ID, &p.UID, &p.Name, &p.NameNormalized, &v, &p.Dim, &p.Model, &p.CreatedAt, &distance)
		if err != nil {
			return nil, fmt.Errorf("scan nearest person: %w", err)
		}
		p.Embedding = v.Slice()
		matches = append(matches, database.PersonMatch{Person: p, Similarity: 1 - distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nearest persons: %w", err)
	}

	return matches, nil
}

// Save stores a person. An existing person with the same normalized name
// is replaced; the assigned ID and UID are written back to p.
func (r *PersonRepository) Save(ctx context.Context, p *database.StoredPerson) error {
	p.NameNormalized = database.NormalizePersonName(p.Name)
	if p.UID == "" {
		p.UID = uuid.NewString()
	}
	if p.Dim == 0 {
		p.Dim = len(p.Embedding)
	}

	query := `
		INSERT INTO persons (uid, name, name_normalized, embedding, dim, model)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name_normalized) DO UPDATE SET
			name = EXCLUDED.name,
			embedding = EXCLUDED.embedding,
			dim = EXCLUDED.dim,
			model = EXCLUDED.model
		RETURNING id, uid, created_at
	`

	vec := pgvector.NewVector(p.Embedding)
	err := r.pool.QueryRow(ctx, query, p.UID, p.Name, p.NameNormalized, vec, p.Dim, p.Model).
		Scan(&p.ID, &p.UID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

// Delete removes a person by UID.
func (r *PersonRepository) Delete(ctx context.Context, uid string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM persons WHERE uid = $1", uid)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrPersonNotFound
	}
	return nil
}
