package utils

import (
	"context"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	LoginIDKey contextKey = "login_id"
	RolesKey   contextKey = "roles"
	TokenKey   contextKey = "token"
)

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// GetLoginIDFromContext returns the login identifier of the session owner.
func GetLoginIDFromContext(ctx context.Context) (string, bool) {
	loginID, ok := ctx.Value(LoginIDKey).(string)
	return loginID, ok && loginID != ""
}

func GetRolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(RolesKey).([]string)
	return roles
}

// HasRole reports whether the session owner holds role.
func HasRole(ctx context.Context, role string) bool {
	for _, r := range GetRolesFromContext(ctx) {
		if r == role {
			return true
		}
	}
	return false
}

func SetUserContext(ctx context.Context, userID int64, loginID string, roles []string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, LoginIDKey, loginID)
	ctx = context.WithValue(ctx, RolesKey, roles)
	return ctx
}

func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
