package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"
	"user-admin/internal/dto/request"
	"user-admin/pkg/metrics"
	"user-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientMeta is recorded on the session for auditing.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest, meta ClientMeta) (*entity.Session, *Principal, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token into the current principal.
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

type authService struct {
	authenticator Authenticator
	sessionRepo   repository.SessionRepository
	userRepo      repository.UserRepository
	hasher        utils.PasswordHasher
	sessionTTL    time.Duration
	log           *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	authenticator Authenticator,
	hasher utils.PasswordHasher,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	ttl := time.Duration(config.Session.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &authService{
		authenticator: authenticator,
		sessionRepo:   repo.Session,
		userRepo:      repo.User,
		hasher:        hasher,
		sessionTTL:    ttl,
		log:           log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, meta ClientMeta) (*entity.Session, *Principal, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, ErrInvalidCredentials
	}

	// 2. Credential lookup
	principal, err := s.authenticator.LoadCredentials(ctx, req.Username)
	if errors.Is(err, ErrUserNotFound) {
		s.log.Warn("User not found for login", zap.String("login_id", req.Username))
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, nil, err
	}

	// 3. Check password
	if !s.hasher.Check(req.Password, principal.PasswordHash) {
		s.log.Warn("Invalid password", zap.Int64("user_id", principal.UserID))
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, ErrInvalidCredentials
	}

	// 4. Create session
	session, err := s.createSession(ctx, principal.UserID, meta)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info("User logged in",
		zap.Int64("user_id", principal.UserID),
		zap.String("login_id", principal.LoginID),
	)
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	return session, principal, nil
}

// Logout revokes the session. Unknown or already revoked tokens are ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return nil
	}

	err := s.sessionRepo.Revoke(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info("User logged out")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessionRepo.FindValidSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	// Authorities come from the store so role changes apply to live sessions.
	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load session owner: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return newPrincipal(user), nil
}

func (s *authService) createSession(ctx context.Context, userID int64, meta ClientMeta) (*entity.Session, error) {
	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     uuid.New(),
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}
	if meta.IPAddress != "" {
		session.IPAddress = &meta.IPAddress
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
