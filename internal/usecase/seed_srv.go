package usecase

import (
	"context"
	"fmt"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

const initialDataMarker = "initial_data"

type SeedService interface {
	// SeedInitialData guarantees the default roles and, once per store, the example accounts.
	SeedInitialData(ctx context.Context) error
}

type seedService struct {
	roleRepo repository.RoleRepository
	seedRepo repository.SeedRepository
	accounts AccountService
	config   utils.SeedConfig
	log      *zap.Logger
}

func NewSeedService(repo *repository.Repository, accounts AccountService, config *utils.Config, log *zap.Logger) SeedService {
	return &seedService{
		roleRepo: repo.Role,
		seedRepo: repo.Seed,
		accounts: accounts,
		config:   config.Seed,
		log:      log.With(zap.String("service", "seed")),
	}
}

func (s *seedService) SeedInitialData(ctx context.Context) error {
	// 1. Default roles, every run
	for _, role := range entity.DefaultRoles() {
		if err := s.roleRepo.Create(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", role.Name, err)
		}
	}

	// 2. Example accounts, once
	applied, err := s.seedRepo.IsApplied(ctx, initialDataMarker)
	if err != nil {
		return err
	}
	if applied {
		s.log.Debug("Initial data already seeded")
		return nil
	}

	roles, err := s.roleRepo.FindByNames(ctx, []string{entity.RoleNameAdmin, entity.RoleNameUser})
	if err != nil {
		return fmt.Errorf("load seeded roles: %w", err)
	}
	byName := make(map[string]*entity.Role, len(roles))
	for _, role := range roles {
		byName[role.Name] = role
	}

	for _, account := range s.exampleAccounts(byName) {
		created, err := s.accounts.CreateAccount(ctx, account)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", account.FirstName, err)
		}
		if !created {
			s.log.Warn("Example account skipped", zap.String("login_id", account.FirstName))
		}
	}

	if err := s.seedRepo.MarkApplied(ctx, initialDataMarker); err != nil {
		return err
	}

	s.log.Info("Initial data seeded")
	return nil
}

func (s *seedService) exampleAccounts(roles map[string]*entity.Role) []*entity.User {
	withRole := func(name string) []*entity.Role {
		if role, ok := roles[name]; ok {
			return []*entity.Role{role}
		}
		return nil
	}

	return []*entity.User{
		{
			FirstName: "admin",
			LastName:  "test",
			Email:     "admin@gmail.com",
			Password:  s.config.AdminPassword,
			Gender:    entity.GenderPreferNotToSay,
			Roles:     withRole(entity.RoleNameAdmin),
		},
		{
			FirstName: "user",
			LastName:  "userLastName",
			Email:     "user@gmail.com",
			Password:  s.config.UserPassword,
			Gender:    entity.GenderMale,
			Roles:     withRole(entity.RoleNameUser),
		},
	}
}
