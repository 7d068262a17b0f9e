package usecase

import (
	"user-admin/internal/data/repository"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Account       AccountService
	Authenticator Authenticator
	Auth          AuthService
	Seed          SeedService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	hasher := utils.NewBcryptHasher(config.Security.BcryptCost)
	account := newAccountService(repo, hasher, log)

	return &Service{
		Account:       account,
		Authenticator: account,
		Auth:          NewAuthService(repo, account, hasher, config, log),
		Seed:          NewSeedService(repo, account, config, log),
	}
}
