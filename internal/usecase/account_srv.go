package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"
	"user-admin/pkg/metrics"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

// Principal is what the session layer needs to know about an authenticated user.
type Principal struct {
	UserID       int64
	LoginID      string
	PasswordHash string
	Authorities  []string
}

func (p *Principal) HasAuthority(name string) bool {
	for _, a := range p.Authorities {
		if a == name {
			return true
		}
	}
	return false
}

func newPrincipal(user *entity.User) *Principal {
	return &Principal{
		UserID:       user.ID,
		LoginID:      user.LoginID(),
		PasswordHash: user.Password,
		Authorities:  entity.RoleNames(user.Roles),
	}
}

// Authenticator resolves credentials and authorities for session authentication.
type Authenticator interface {
	LoadCredentials(ctx context.Context, loginID string) (*Principal, error)
}

// RoleResolution is the outcome of mapping submitted role names onto stored roles.
type RoleResolution struct {
	Found      []*entity.Role
	Unresolved []string
}

// AccountService owns the account rules: login uniqueness, non-empty
// credentials, hashing and role assignment.
//
// CreateAccount and UpdateAccount report rule rejections as (false, nil);
// a non-nil error always means the store failed.
type AccountService interface {
	FindUserByID(ctx context.Context, id int64) (*entity.User, error)
	FindUserByLoginID(ctx context.Context, loginID string) (*entity.User, error)
	FindAllUsers(ctx context.Context) ([]*entity.User, error)
	CountUsers(ctx context.Context) (int64, error)
	FindAllRoles(ctx context.Context) ([]*entity.Role, error)
	CreateAccount(ctx context.Context, user *entity.User) (bool, error)
	UpdateAccount(ctx context.Context, user *entity.User) (bool, error)
	DeleteUserByID(ctx context.Context, id int64) error
	ResolveRolesForAdminEdit(ctx context.Context, user *entity.User, roleNames []string) (*RoleResolution, error)
	EnsureDefaultRoleForCreate(user *entity.User) *entity.User
	ResolveRolesPreservingExisting(ctx context.Context, user *entity.User, loginID string) (*entity.User, error)
}

type accountService struct {
	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	sessionRepo repository.SessionRepository
	hasher      utils.PasswordHasher
	log         *zap.Logger
}

func NewAccountService(repo *repository.Repository, hasher utils.PasswordHasher, log *zap.Logger) AccountService {
	return newAccountService(repo, hasher, log)
}

func newAccountService(repo *repository.Repository, hasher utils.PasswordHasher, log *zap.Logger) *accountService {
	return &accountService{
		userRepo:    repo.User,
		roleRepo:    repo.Role,
		sessionRepo: repo.Session,
		hasher:      hasher,
		log:         log.With(zap.String("service", "account")),
	}
}

func (s *accountService) LoadCredentials(ctx context.Context, loginID string) (*Principal, error) {
	user, err := s.userRepo.FindByFirstName(ctx, loginID)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", loginID, ErrUserNotFound)
	}

	return newPrincipal(user), nil
}

// FindUserByID returns an empty user (ID 0) when nothing matches.
func (s *accountService) FindUserByID(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &entity.User{}, nil
	}

	return user, nil
}

func (s *accountService) FindUserByLoginID(ctx context.Context, loginID string) (*entity.User, error) {
	user, err := s.userRepo.FindByFirstName(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", loginID, ErrUserNotFound)
	}

	return user, nil
}

func (s *accountService) FindAllUsers(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *accountService) CountUsers(ctx context.Context) (int64, error) {
	return s.userRepo.CountAll(ctx)
}

func (s *accountService) FindAllRoles(ctx context.Context) ([]*entity.Role, error) {
	return s.roleRepo.FindAll(ctx)
}

func (s *accountService) CreateAccount(ctx context.Context, user *entity.User) (bool, error) {
	// 1. Login identifier must be free
	existing, err := s.userRepo.FindByFirstName(ctx, user.FirstName)
	if err != nil {
		s.recordOutcome("create", metrics.ResultError)
		return false, fmt.Errorf("check login identifier: %w", err)
	}
	if existing != nil {
		s.log.Warn("Create rejected - login identifier taken", zap.String("login_id", user.FirstName))
		s.recordOutcome("create", metrics.ResultRejected)
		return false, nil
	}

	// 2. Credentials must be non-empty
	if user.FirstName == "" || user.Password == "" {
		s.log.Warn("Create rejected - empty credentials")
		s.recordOutcome("create", metrics.ResultRejected)
		return false, nil
	}

	// 3. Hash and persist
	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.recordOutcome("create", metrics.ResultError)
		return false, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash
	s.EnsureDefaultRoleForCreate(user)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateLoginID) {
			s.recordOutcome("create", metrics.ResultRejected)
			return false, nil
		}
		s.recordOutcome("create", metrics.ResultError)
		return false, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("Account created",
		zap.Int64("user_id", user.ID),
		zap.String("login_id", user.FirstName),
		zap.Strings("roles", entity.RoleNames(user.Roles)),
	)
	s.recordOutcome("create", metrics.ResultSuccess)
	return true, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, user *entity.User) (bool, error) {
	if user.FirstName == "" || user.Password == "" {
		s.log.Warn("Update rejected - empty credentials", zap.Int64("user_id", user.ID))
		s.recordOutcome("update", metrics.ResultRejected)
		return false, nil
	}

	existing, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		s.recordOutcome("update", metrics.ResultError)
		return false, fmt.Errorf("load user %d: %w", user.ID, err)
	}
	if existing == nil {
		s.log.Warn("Update rejected - user not found", zap.Int64("user_id", user.ID))
		s.recordOutcome("update", metrics.ResultRejected)
		return false, nil
	}

	holder, err := s.userRepo.FindByFirstName(ctx, user.FirstName)
	if err != nil {
		s.recordOutcome("update", metrics.ResultError)
		return false, fmt.Errorf("check login identifier: %w", err)
	}
	if holder != nil && holder.ID != user.ID {
		s.log.Warn("Update rejected - login identifier taken",
			zap.Int64("user_id", user.ID),
			zap.String("login_id", user.FirstName),
		)
		s.recordOutcome("update", metrics.ResultRejected)
		return false, nil
	}

	if s.passwordUnchanged(user.Password, existing.Password) {
		user.Password = existing.Password
	} else {
		hash, err := s.hasher.Hash(user.Password)
		if err != nil {
			s.recordOutcome("update", metrics.ResultError)
			return false, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hash
	}

	if user.Roles == nil {
		user.Roles = existing.Roles
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateLoginID) {
			s.recordOutcome("update", metrics.ResultRejected)
			return false, nil
		}
		s.recordOutcome("update", metrics.ResultError)
		return false, fmt.Errorf("update account: %w", err)
	}

	s.log.Info("Account updated",
		zap.Int64("user_id", user.ID),
		zap.Strings("roles", entity.RoleNames(user.Roles)),
	)
	s.recordOutcome("update", metrics.ResultSuccess)
	return true, nil
}

// passwordUnchanged is true when the submitted value is the stored hash
// echoed back by a form, or the plaintext that the stored hash verifies.
func (s *accountService) passwordUnchanged(submitted, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return submitted == storedHash || s.hasher.Check(submitted, storedHash)
}

// DeleteUserByID removes the user, then revokes its sessions. Postgres sessions
// are already gone by cascade; other stores still need the explicit revoke.
func (s *accountService) DeleteUserByID(ctx context.Context, id int64) error {
	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		s.recordOutcome("delete", metrics.ResultError)
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	// A leftover session cannot authenticate: the owner no longer loads.
	if err := s.sessionRepo.RevokeAllUserSessions(ctx, id); err != nil {
		s.log.Warn("Failed to revoke sessions of deleted user", zap.Error(err), zap.Int64("user_id", id))
	}

	s.recordOutcome("delete", metrics.ResultSuccess)
	return nil
}

// ResolveRolesForAdminEdit assigns the roles named by the admin form, or the
// default role when none were submitted. Any unknown name leaves user untouched.
func (s *accountService) ResolveRolesForAdminEdit(ctx context.Context, user *entity.User, roleNames []string) (*RoleResolution, error) {
	names := normalizeRoleNames(roleNames)
	if len(names) == 0 {
		names = []string{entity.RoleNameUser}
	}

	found, err := s.roleRepo.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}

	resolution := &RoleResolution{Found: found, Unresolved: unresolvedNames(names, found)}
	if len(resolution.Unresolved) > 0 {
		s.log.Warn("Role resolution failed",
			zap.Int64("user_id", user.ID),
			zap.Strings("unresolved", resolution.Unresolved),
		)
		return resolution, &UnresolvedRolesError{Names: resolution.Unresolved}
	}

	user.Roles = found
	return resolution, nil
}

func (s *accountService) EnsureDefaultRoleForCreate(user *entity.User) *entity.User {
	if len(user.Roles) == 0 {
		user.Roles = []*entity.Role{{ID: entity.DefaultRoleID, Name: entity.RoleNameUser}}
	}
	return user
}

// ResolveRolesPreservingExisting copies the stored roles of the session owner
// onto the edited user, so a profile edit cannot change them.
func (s *accountService) ResolveRolesPreservingExisting(ctx context.Context, user *entity.User, loginID string) (*entity.User, error) {
	owner, err := s.userRepo.FindByFirstName(ctx, loginID)
	if err != nil {
		return nil, fmt.Errorf("load session owner: %w", err)
	}
	if owner == nil {
		return nil, fmt.Errorf("user %q: %w", loginID, ErrUserNotFound)
	}

	roles, err := s.roleRepo.FindByNames(ctx, entity.RoleNames(owner.Roles))
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}

	user.Roles = roles
	if len(roles) == 0 {
		s.log.Warn("Session owner has no stored roles, assigning default", zap.String("login_id", loginID))
		s.EnsureDefaultRoleForCreate(user)
	}
	return user, nil
}

func (s *accountService) recordOutcome(operation, result string) {
	metrics.AccountOperationsTotal.WithLabelValues(operation, result).Inc()
}

// normalizeRoleNames trims, drops blanks and de-duplicates, keeping order.
func normalizeRoleNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func unresolvedNames(names []string, found []*entity.Role) []string {
	known := make(map[string]struct{}, len(found))
	for _, role := range found {
		known[role.Name] = struct{}{}
	}

	var missing []string
	for _, name := range names {
		if _, ok := known[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
