package middleware

import (
	"errors"
	"net/http"

	"user-admin/internal/usecase"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

// AuthSession resolves the session cookie into the request context.
// Requests without a valid session pass through anonymously.
func AuthSession(auth usecase.AuthService, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := auth.Authenticate(r.Context(), cookie.Value)
			if errors.Is(err, usecase.ErrSessionNotFound) {
				logger.Debug("Invalid or expired session", zap.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			ctx := utils.SetUserContext(r.Context(), principal.UserID, principal.LoginID, principal.Authorities)
			ctx = utils.SetTokenContext(ctx, cookie.Value)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth sends anonymous browsers to the login page and JSON clients a 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			if utils.WantsJSON(r) {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}
			utils.ResponseRedirect(w, r, "/login")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAnyRole lets the request through when the principal holds one of roles.
// Authenticated principals without them get forbidden.
func RequireAnyRole(forbidden http.HandlerFunc, logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, role := range roles {
				if utils.HasRole(r.Context(), role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			userID, _ := utils.GetUserIDFromContext(r.Context())
			logger.Warn("Role check: access denied",
				zap.Int64("user_id", userID),
				zap.Strings("required", roles),
				zap.String("path", r.URL.Path),
			)
			forbidden(w, r)
		}))
	}
}
