package cmd

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/face-check/internal/config"
	"github.com/kozaktomas/face-check/internal/database/postgres"
	"github.com/kozaktomas/face-check/internal/detector"
)

// deps bundles the collaborators most commands need: configuration, the
// PostgreSQL-backed person registry, and the face detection client.
type deps struct {
	cfg      *config.Config
	pool     *postgres.Pool
	repo     *postgres.PersonRepository
	detector *detector.Client
}

// initDeps loads configuration and connects to the database and detector.
// The caller must Close the returned deps.
func initDeps() (*deps, error) {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	return &deps{
		cfg:      cfg,
		pool:     pool,
		repo:     postgres.NewPersonRepository(pool),
		detector: detector.NewClient(cfg.Detector.URL, cfg.Detector.Dim),
	}, nil
}

func (d *deps) Close() {
	if d.pool != nil {
		_ = d.pool.Close()
	}
}
