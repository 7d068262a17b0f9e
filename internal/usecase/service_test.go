package usecase

import (
	"context"
	"testing"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"
	"user-admin/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *utils.Config {
	return &utils.Config{
		Session:  utils.SessionConfig{TTLHours: 1, CookieName: "SESSION"},
		Security: utils.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Seed: utils.SeedConfig{
			Enabled:       true,
			AdminPassword: "admin111",
			UserPassword:  "user111",
		},
	}
}

// newTestService builds services over a fresh in-memory store with the default roles present.
func newTestService(t *testing.T) (*Service, *repository.Repository) {
	t.Helper()

	repo := repository.NewInMemoryRepository()
	for _, role := range entity.DefaultRoles() {
		require.NoError(t, repo.Role.Create(context.Background(), role))
	}

	return NewService(repo, testConfig(), zap.NewNop()), repo
}

func createUser(t *testing.T, svc *Service, firstName, password string, roles ...*entity.Role) *entity.User {
	t.Helper()

	user := &entity.User{
		FirstName: firstName,
		LastName:  "Tester",
		Email:     firstName + "@example.com",
		Password:  password,
		Gender:    entity.GenderFemale,
		Roles:     roles,
	}
	created, err := svc.Account.CreateAccount(context.Background(), user)
	require.NoError(t, err)
	require.True(t, created)
	return user
}
