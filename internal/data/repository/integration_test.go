//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"user-admin/internal/data/entity"
	"user-admin/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startPostgres(t *testing.T) database.PgxIface {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("user_admin"),
		postgres.WithUsername("admin"),
		postgres.WithPassword("admin"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	db := database.NewFromPool(pool)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db, zap.NewNop()))
	// A second run finds nothing pending
	require.NoError(t, database.Migrate(ctx, db, zap.NewNop()))

	var applied int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT COUNT(*) FROM goose_db_version WHERE version_id = 1`).Scan(&applied))
	assert.Equal(t, 1, applied)

	return db
}

func TestPostgresRepositories(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(startPostgres(t), zap.NewNop())

	t.Run("Roles", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			for _, role := range entity.DefaultRoles() {
				require.NoError(t, repo.Role.Create(ctx, role))
			}
		}

		roles, err := repo.Role.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*entity.Role{
			{ID: 1, Name: entity.RoleNameAdmin},
			{ID: 2, Name: entity.RoleNameUser},
		}, roles)

		// The sequence was moved past the seeded ids
		auditor := &entity.Role{Name: "ROLE_AUDITOR"}
		require.NoError(t, repo.Role.Create(ctx, auditor))
		assert.Equal(t, int64(3), auditor.ID)

		found, err := repo.Role.FindByNames(ctx, []string{entity.RoleNameUser, "ROLE_MISSING"})
		require.NoError(t, err)
		assert.Equal(t, []string{entity.RoleNameUser}, entity.RoleNames(found))

		missing, err := repo.Role.FindByID(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	var alice *entity.User

	t.Run("UserLifecycle", func(t *testing.T) {
		alice = &entity.User{
			FirstName: "alice",
			LastName:  "Liddell",
			Email:     "alice@example.com",
			Password:  "hash-1",
			Gender:    entity.GenderFemale,
			Roles:     []*entity.Role{{ID: entity.DefaultRoleID, Name: entity.RoleNameUser}},
		}
		require.NoError(t, repo.User.Create(ctx, alice))
		require.NotZero(t, alice.ID)

		err := repo.User.Create(ctx, &entity.User{FirstName: "alice", Password: "hash-2"})
		assert.ErrorIs(t, err, ErrDuplicateLoginID)

		stored, err := repo.User.FindByFirstName(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "hash-1", stored.Password)
		assert.Equal(t, entity.GenderFemale, stored.Gender)
		assert.Equal(t, []string{entity.RoleNameUser}, entity.RoleNames(stored.Roles))

		stored.Roles = []*entity.Role{
			{ID: entity.RoleIDAdmin, Name: entity.RoleNameAdmin},
			{ID: entity.DefaultRoleID, Name: entity.RoleNameUser},
		}
		stored.Gender = ""
		require.NoError(t, repo.User.Update(ctx, stored))

		updated, err := repo.User.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{entity.RoleNameAdmin, entity.RoleNameUser}, entity.RoleNames(updated.Roles))
		assert.Empty(t, updated.Gender)

		bob := &entity.User{FirstName: "bob", Password: "hash-3"}
		require.NoError(t, repo.User.Create(ctx, bob))
		bob.FirstName = "alice"
		assert.ErrorIs(t, repo.User.Update(ctx, bob), ErrDuplicateLoginID)

		all, err := repo.User.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "alice", all[0].FirstName)
		assert.Empty(t, all[1].Roles)

		count, err := repo.User.CountAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		none, err := repo.User.FindByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("Sessions", func(t *testing.T) {
		session := &entity.Session{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
			UserID:     alice.ID,
			Token:      uuid.New(),
			ExpiresAt:  time.Now().Add(time.Hour),
		}
		require.NoError(t, repo.Session.Create(ctx, session))

		found, err := repo.Session.FindValidSession(ctx, session.Token.String())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, alice.ID, found.UserID)

		require.NoError(t, repo.Session.Revoke(ctx, session.Token.String()))
		assert.ErrorIs(t, repo.Session.Revoke(ctx, session.Token.String()), ErrSessionNotFound)

		found, err = repo.Session.FindValidSession(ctx, session.Token.String())
		require.NoError(t, err)
		assert.Nil(t, found)

		require.NoError(t, repo.Session.CleanExpiredSessions(ctx))
	})

	t.Run("SeedMarker", func(t *testing.T) {
		applied, err := repo.Seed.IsApplied(ctx, "initial_data")
		require.NoError(t, err)
		assert.False(t, applied)

		require.NoError(t, repo.Seed.MarkApplied(ctx, "initial_data"))
		require.NoError(t, repo.Seed.MarkApplied(ctx, "initial_data"))

		applied, err = repo.Seed.IsApplied(ctx, "initial_data")
		require.NoError(t, err)
		assert.True(t, applied)
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		session := &entity.Session{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
			UserID:     alice.ID,
			Token:      uuid.New(),
			ExpiresAt:  time.Now().Add(time.Hour),
		}
		require.NoError(t, repo.Session.Create(ctx, session))

		require.NoError(t, repo.User.DeleteByID(ctx, alice.ID))
		require.NoError(t, repo.User.DeleteByID(ctx, alice.ID))

		gone, err := repo.User.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		found, err := repo.Session.FindValidSession(ctx, session.Token.String())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestRedisSessionRepository(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	sessions := NewRedisSessionRepository(client, zap.NewNop())

	newSession := func(userID int64) *entity.Session {
		s := &entity.Session{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
			UserID:     userID,
			Token:      uuid.New(),
			ExpiresAt:  time.Now().Add(time.Hour),
		}
		require.NoError(t, sessions.Create(ctx, s))
		return s
	}

	first := newSession(7)
	second := newSession(7)

	found, err := sessions.FindValidSession(ctx, first.Token.String())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(7), found.UserID)

	require.NoError(t, sessions.Revoke(ctx, first.Token.String()))
	assert.ErrorIs(t, sessions.Revoke(ctx, first.Token.String()), ErrSessionNotFound)

	require.NoError(t, sessions.RevokeAllUserSessions(ctx, 7))
	found, err = sessions.FindValidSession(ctx, second.Token.String())
	require.NoError(t, err)
	assert.Nil(t, found)

	expired := &entity.Session{UserID: 7, Token: uuid.New(), ExpiresAt: time.Now().Add(-time.Minute)}
	assert.Error(t, sessions.Create(ctx, expired))
}
