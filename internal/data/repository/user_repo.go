package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-admin/internal/data/entity"
	"user-admin/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrDuplicateLoginID is returned when another user already holds the login identifier.
var ErrDuplicateLoginID = errors.New("login identifier already taken")

const uniqueViolation = "23505"

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	// FindByFirstName looks a user up by login identifier.
	FindByFirstName(ctx context.Context, firstName string) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *entity.User) error
	// DeleteByID removes the user. Deleting an absent id is not an error.
	DeleteByID(ctx context.Context, id int64) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const selectUserWithRoles = `
	SELECT u.id, u.first_name, u.last_name, u.email, u.password,
	       COALESCE(u.gender, ''), u.created_at, u.updated_at,
	       r.id, r.name
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id
`

// Create inserts the user row and its role associations in one transaction
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO users (first_name, last_name, email, password, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING id
	`

	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	err = tx.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		string(user.Gender),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLoginID
		}
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("first_name", user.FirstName),
		)
		return fmt.Errorf("create user %s: %w", user.FirstName, err)
	}

	if err := ur.insertRoles(ctx, tx, user); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user %s: %w", user.FirstName, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	users, err := ur.queryUsers(ctx, selectUserWithRoles+` WHERE u.id = $1 ORDER BY r.id`, id)
	if err != nil {
		ur.log.Error("Failed to find user by ID", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("find user by ID %d: %w", id, err)
	}
	if len(users) == 0 {
		return nil, nil
	}

	return users[0], nil
}

func (ur *userRepository) FindByFirstName(ctx context.Context, firstName string) (*entity.User, error) {
	users, err := ur.queryUsers(ctx, selectUserWithRoles+` WHERE u.first_name = $1 ORDER BY r.id`, firstName)
	if err != nil {
		ur.log.Error("Failed to find user by first name", zap.Error(err), zap.String("first_name", firstName))
		return nil, fmt.Errorf("find user by first name %s: %w", firstName, err)
	}
	if len(users) == 0 {
		return nil, nil
	}

	return users[0], nil
}

// FindAll retrieves every user with its role set
func (ur *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	users, err := ur.queryUsers(ctx, selectUserWithRoles+` ORDER BY u.id, r.id`)
	if err != nil {
		ur.log.Error("Failed to get all users", zap.Error(err))
		return nil, fmt.Errorf("find all users: %w", err)
	}

	return users, nil
}

func (ur *userRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM users`

	var count int64
	if err := ur.db.QueryRow(ctx, query).Scan(&count); err != nil {
		ur.log.Error("Database error counting users", zap.Error(err))
		return 0, fmt.Errorf("count all users: %w", err)
	}

	return count, nil
}

// Update replaces the row and its role associations
func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update user: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, password = $5,
		    gender = NULLIF($6, ''), updated_at = $7
		WHERE id = $1
		RETURNING created_at
	`

	user.UpdatedAt = time.Now()
	err = tx.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		string(user.Gender),
		user.UpdatedAt,
	).Scan(&user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("user %d not found", user.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLoginID
		}
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, user.ID); err != nil {
		ur.log.Error("Failed to clear user roles", zap.Error(err), zap.Int64("user_id", user.ID))
		return fmt.Errorf("clear roles of user %d: %w", user.ID, err)
	}

	if err := ur.insertRoles(ctx, tx, user); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update user %d: %w", user.ID, err)
	}

	return nil
}

func (ur *userRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := ur.db.Exec(ctx, query, id)
	if err != nil {
		ur.log.Error("Failed to delete user", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		ur.log.Debug("Delete of absent user ignored", zap.Int64("id", id))
		return nil
	}

	ur.log.Info("User deleted", zap.Int64("id", id))
	return nil
}

func (ur *userRepository) insertRoles(ctx context.Context, tx pgx.Tx, user *entity.User) error {
	if len(user.Roles) == 0 {
		return nil
	}

	query := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, user.ID, user.RoleIDs()); err != nil {
		ur.log.Error("Failed to assign user roles",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
			zap.Int64s("role_ids", user.RoleIDs()),
		)
		return fmt.Errorf("assign roles to user %d: %w", user.ID, err)
	}

	return nil
}

// queryUsers folds the user x role join back into aggregates, preserving row order.
func (ur *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*entity.User, error) {
	rows, err := ur.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*entity.User{}
	byID := make(map[int64]*entity.User)
	for rows.Next() {
		var (
			user     entity.User
			gender   string
			roleID   *int64
			roleName *string
		)
		err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Password,
			&gender,
			&user.CreatedAt,
			&user.UpdatedAt,
			&roleID,
			&roleName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}

		current, ok := byID[user.ID]
		if !ok {
			user.Gender = entity.Gender(gender)
			user.Roles = []*entity.Role{}
			current = &user
			byID[user.ID] = current
			users = append(users, current)
		}
		if roleID != nil && roleName != nil {
			current.Roles = append(current.Roles, &entity.Role{ID: *roleID, Name: *roleName})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
