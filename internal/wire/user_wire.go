package wire

import (
	"user-admin/internal/adaptor"
	"user-admin/internal/data/entity"
	"user-admin/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures self-service routes
func wireUser(r chi.Router, handler *adaptor.Handler, log *zap.Logger) {
	user := handler.User

	r.With(
		middleware.RequireAnyRole(handler.Page.Forbidden, log, entity.RoleNameUser, entity.RoleNameAdmin),
	).Route("/user", func(r chi.Router) {
		r.Get("/", user.Profile)
		r.Get("/user-update/{id}", user.UpdateForm)
		r.Post("/user-update", user.UpdateUser)
	})

	// Any authenticated principal
	r.With(middleware.RequireAuth).Get("/news", handler.Page.News)
}
