package repository

import (
	"user-admin/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Role    RoleRepository
	Session SessionRepository
	Seed    SeedRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Role:    NewRoleRepository(db, log),
		Session: NewSessionRepository(db, log),
		Seed:    NewSeedRepository(db, log),
	}
}
