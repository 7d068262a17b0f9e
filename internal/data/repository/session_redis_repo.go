package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"user-admin/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

type redisSessionRepository struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisSessionRepository stores sessions as JSON values expiring with the session.
func NewRedisSessionRepository(client *redis.Client, log *zap.Logger) SessionRepository {
	return &redisSessionRepository{
		client: client,
		log:    log.With(zap.String("repository", "session_redis")),
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func userSessionsKey(userID int64) string {
	return userSessionKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *redisSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("create session: already expired")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	token := session.Token.String()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(token), payload, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), token)
	pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to create session", zap.Error(err), zap.Int64("user_id", session.UserID))
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *redisSessionRepository) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid session", zap.Error(err))
		return nil, fmt.Errorf("find session: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if !session.Valid(time.Now()) {
		return nil, nil
	}

	return &session, nil
}

func (r *redisSessionRepository) Revoke(ctx context.Context, token string) error {
	session, err := r.FindValidSession(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	pipe.SRem(ctx, userSessionsKey(session.UserID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to revoke session", zap.Error(err))
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (r *redisSessionRepository) RevokeAllUserSessions(ctx context.Context, userID int64) error {
	tokens, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		r.log.Error("Failed to list user sessions", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("list sessions of user %d: %w", userID, err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, sessionKey(token))
	}
	keys = append(keys, userSessionsKey(userID))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Error("Failed to revoke all user sessions", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("revoke sessions of user %d: %w", userID, err)
	}

	return nil
}

// CleanExpiredSessions is a no-op: keys expire with their session.
func (r *redisSessionRepository) CleanExpiredSessions(ctx context.Context) error {
	return nil
}
