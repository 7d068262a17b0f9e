package repository

import (
	"context"
	"errors"
	"fmt"

	"user-admin/internal/data/entity"
	"user-admin/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]*entity.Role, error)
	FindByID(ctx context.Context, id int64) (*entity.Role, error)
	// FindByNames returns the stored roles matching names. Unknown names are absent from the result.
	FindByNames(ctx context.Context, names []string) ([]*entity.Role, error)
	// Create inserts role unless a role with the same name exists.
	Create(ctx context.Context, role *entity.Role) error
}

type roleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRoleRepository(db database.PgxIface, log *zap.Logger) RoleRepository {
	return &roleRepository{
		db:  db,
		log: log.With(zap.String("repository", "role")),
	}
}

func (r *roleRepository) FindAll(ctx context.Context) ([]*entity.Role, error) {
	query := `SELECT id, name FROM roles ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all roles", zap.Error(err))
		return nil, fmt.Errorf("find all roles: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows)
}

func (r *roleRepository) FindByID(ctx context.Context, id int64) (*entity.Role, error) {
	query := `SELECT id, name FROM roles WHERE id = $1`

	var role entity.Role
	err := r.db.QueryRow(ctx, query, id).Scan(&role.ID, &role.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find role by ID", zap.Error(err), zap.Int64("role_id", id))
		return nil, fmt.Errorf("find role by id %d: %w", id, err)
	}

	return &role, nil
}

func (r *roleRepository) FindByNames(ctx context.Context, names []string) ([]*entity.Role, error) {
	if len(names) == 0 {
		return []*entity.Role{}, nil
	}

	query := `SELECT id, name FROM roles WHERE name = ANY($1) ORDER BY id`

	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		r.log.Error("Failed to find roles by names", zap.Error(err), zap.Strings("names", names))
		return nil, fmt.Errorf("find roles by names: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows)
}

func (r *roleRepository) Create(ctx context.Context, role *entity.Role) error {
	if role.ID > 0 {
		query := `INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := r.db.Exec(ctx, query, role.ID, role.Name); err != nil {
			r.log.Error("Failed to create role", zap.Error(err), zap.String("name", role.Name))
			return fmt.Errorf("create role %s: %w", role.Name, err)
		}

		// Explicit ids bypass the sequence; move it past them.
		sync := `SELECT setval(pg_get_serial_sequence('roles', 'id'), (SELECT MAX(id) FROM roles))`
		if _, err := r.db.Exec(ctx, sync); err != nil {
			r.log.Error("Failed to sync role sequence", zap.Error(err))
			return fmt.Errorf("sync role sequence: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO roles (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	if err := r.db.QueryRow(ctx, query, role.Name).Scan(&role.ID); err != nil {
		r.log.Error("Failed to create role", zap.Error(err), zap.String("name", role.Name))
		return fmt.Errorf("create role %s: %w", role.Name, err)
	}

	return nil
}

func scanRoles(rows pgx.Rows) ([]*entity.Role, error) {
	roles := []*entity.Role{}
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role row: %w", err)
		}
		roles = append(roles, &role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role rows: %w", err)
	}

	return roles, nil
}
