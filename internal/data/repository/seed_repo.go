package repository

import (
	"context"
	"fmt"

	"user-admin/pkg/database"

	"go.uber.org/zap"
)

// SeedRepository persists one-shot markers for initialization steps.
type SeedRepository interface {
	IsApplied(ctx context.Context, name string) (bool, error)
	MarkApplied(ctx context.Context, name string) error
}

type seedRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeedRepository(db database.PgxIface, log *zap.Logger) SeedRepository {
	return &seedRepository{
		db:  db,
		log: log.With(zap.String("repository", "seed")),
	}
}

func (r *seedRepository) IsApplied(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM seed_markers WHERE name = $1)`

	var applied bool
	if err := r.db.QueryRow(ctx, query, name).Scan(&applied); err != nil {
		r.log.Error("Failed to check seed marker", zap.Error(err), zap.String("name", name))
		return false, fmt.Errorf("check seed marker %s: %w", name, err)
	}

	return applied, nil
}

func (r *seedRepository) MarkApplied(ctx context.Context, name string) error {
	query := `INSERT INTO seed_markers (name) VALUES ($1) ON CONFLICT DO NOTHING`

	if _, err := r.db.Exec(ctx, query, name); err != nil {
		r.log.Error("Failed to write seed marker", zap.Error(err), zap.String("name", name))
		return fmt.Errorf("write seed marker %s: %w", name, err)
	}

	return nil
}
