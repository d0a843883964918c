//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/face-check/internal/config"
	"github.com/kozaktomas/face-check/internal/database"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	// Run migrations
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

// testEmbedding builds a 512-dim unit embedding concentrated at the given
// component.
func testEmbedding(component int) []float32 {
	emb := make([]float32, 512)
	emb[component] = 1
	return emb
}

func TestPersonRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewPersonRepository(pool)

	t.Run("SaveAndGet", func(t *testing.T) {
		p := &database.StoredPerson{
			Name:      "Jan Novák",
			Embedding: testEmbedding(0),
			Model:     "buffalo_s",
		}

		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("Failed to save person: %v", err)
		}
		if p.ID == 0 || p.UID == "" {
			t.Fatalf("Save did not assign ID/UID: %+v", p)
		}

		got, err := repo.Get(ctx, p.UID)
		if err != nil {
			t.Fatalf("Failed to get person: %v", err)
		}
		if got.Name != "Jan Novák" {
			t.Errorf("Expected name 'Jan Novák', got '%s'", got.Name)
		}
		if got.NameNormalized != "jan novak" {
			t.Errorf("Expected normalized name 'jan novak', got '%s'", got.NameNormalized)
		}
		if len(got.Embedding) != 512 {
			t.Errorf("Expected 512 dimensions, got %d", len(got.Embedding))
		}
	})

	t.Run("GetByName", func(t *testing.T) {
		got, err := repo.GetByName(ctx, "jan-novak")
		if err != nil {
			t.Fatalf("Failed to get person by name: %v", err)
		}
		if got.Name != "Jan Novák" {
			t.Errorf("Expected 'Jan Novák', got '%s'", got.Name)
		}

		_, err = repo.GetByName(ctx, "nonexistent person")
		if !errors.Is(err, database.ErrPersonNotFound) {
			t.Errorf("Expected ErrPersonNotFound, got %v", err)
		}
	})

	t.Run("SaveReplacesSameName", func(t *testing.T) {
		p := &database.StoredPerson{
			Name:      "jan-novák",
			Embedding: testEmbedding(1),
		}
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("Failed to re-save person: %v", err)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 person after re-registration, got %d", count)
		}
	})

	t.Run("FindNearest", func(t *testing.T) {
		for i, name := range []string{"Anna", "Bedrich", "Cyril"} {
			p := &database.StoredPerson{
				Name:      name,
				Embedding: testEmbedding(i + 10),
			}
			if err := repo.Save(ctx, p); err != nil {
				t.Fatalf("Failed to save %s: %v", name, err)
			}
		}

		matches, err := repo.FindNearest(ctx, testEmbedding(10), 2)
		if err != nil {
			t.Fatalf("Failed to find nearest: %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("Expected 2 matches, got %d", len(matches))
		}
		if matches[0].Person.Name != "Anna" {
			t.Errorf("Expected nearest 'Anna', got '%s'", matches[0].Person.Name)
		}
		if matches[0].Similarity < 0.999 {
			t.Errorf("Expected similarity near 1.0, got %f", matches[0].Similarity)
		}
	})

	t.Run("List", func(t *testing.T) {
		persons, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list persons: %v", err)
		}
		if len(persons) != 4 {
			t.Fatalf("Expected 4 persons, got %d", len(persons))
		}
		for i := 1; i < len(persons); i++ {
			if persons[i-1].Name > persons[i].Name {
				t.Errorf("List not ordered by name: %s > %s", persons[i-1].Name, persons[i].Name)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		p, err := repo.GetByName(ctx, "Anna")
		if err != nil {
			t.Fatalf("Failed to get Anna: %v", err)
		}

		if err := repo.Delete(ctx, p.UID); err != nil {
			t.Fatalf("Failed to delete person: %v", err)
		}

		_, err = repo.Get(ctx, p.UID)
		if !errors.Is(err, database.ErrPersonNotFound) {
			t.Errorf("Expected ErrPersonNotFound after delete, got %v", err)
		}

		if err := repo.Delete(ctx, p.UID); !errors.Is(err, database.ErrPersonNotFound) {
			t.Errorf("Expected ErrPersonNotFound for double delete, got %v", err)
		}
	})
}
