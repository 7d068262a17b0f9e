package wire

import (
	"user-admin/internal/adaptor"
	"user-admin/internal/data/entity"
	"user-admin/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireAdmin configures user management routes, admin role only
func wireAdmin(r chi.Router, handler *adaptor.Handler, log *zap.Logger) {
	admin := handler.Admin

	r.With(
		middleware.RequireAnyRole(handler.Page.Forbidden, log, entity.RoleNameAdmin),
	).Route("/admin", func(r chi.Router) {
		r.Get("/", admin.ListUsers)
		r.Get("/user-save", admin.CreateForm)
		r.Post("/user-save", admin.CreateUser)
		r.Delete("/user-delete/{id}", admin.DeleteUser) // POST + _method=DELETE from the list view
		r.Get("/user-update/{id}", admin.UpdateForm)
		r.Post("/user-update", admin.UpdateUser)
	})
}
