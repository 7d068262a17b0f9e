package adaptor

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"user-admin/internal/data/entity"
	"user-admin/internal/usecase"
	"user-admin/internal/view"
	"user-admin/pkg/utils"

	"github.com/ajg/form"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

type Handler struct {
	Auth  *AuthHandler
	Admin *AdminHandler
	User  *UserHandler
	Page  *PageHandler
}

func NewHandler(service *usecase.Service, renderer *view.Renderer, config *utils.Config, log *zap.Logger) *Handler {
	base := responder{view: renderer, log: log}

	return &Handler{
		Auth:  NewAuthHandler(service.Auth, base, config.Session),
		Admin: NewAdminHandler(service.Account, base),
		User:  NewUserHandler(service.Account, base),
		Page:  NewPageHandler(base),
	}
}

// responder holds what every handler needs to answer either a browser or a JSON client.
type responder struct {
	view *view.Renderer
	log  *zap.Logger
}

// page builds the template data for the current principal.
func (h responder) page(r *http.Request, title string) *view.Page {
	loginID, ok := utils.GetLoginIDFromContext(r.Context())

	return &view.Page{
		Title:         title,
		Authenticated: ok,
		LoginID:       loginID,
		IsAdmin:       utils.HasRole(r.Context(), entity.RoleNameAdmin),
	}
}

func (h responder) respond(w http.ResponseWriter, r *http.Request, status int, name string, page *view.Page) {
	if utils.WantsJSON(r) {
		ok := status < http.StatusBadRequest
		var errs any
		if len(page.Errors) > 0 {
			errs = page.Errors
		}
		utils.ResponseJSON(w, status, ok, page.Title, page.Data, errs)
		return
	}
	h.view.Render(w, status, name, page)
}

// redirect finishes a successful mutation with 303 for browsers.
func (h responder) redirect(w http.ResponseWriter, r *http.Request, location, message string) {
	if utils.WantsJSON(r) {
		utils.ResponseSuccess(w, message, nil)
		return
	}
	utils.ResponseRedirect(w, r, location)
}

func (h responder) fail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	if utils.WantsJSON(r) {
		utils.ResponseJSON(w, status, false, detail, nil, nil)
		return
	}
	h.view.RenderError(w, status, h.page(r, ""), detail)
}

// handleServiceError maps service errors onto status codes
func (h responder) handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var unresolved *usecase.UnresolvedRolesError

	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		h.fail(w, r, http.StatusNotFound, "User not found")

	case errors.As(err, &unresolved):
		h.log.Warn(operation+" failed - unknown roles", zap.Strings("roles", unresolved.Names))
		h.fail(w, r, http.StatusBadRequest, err.Error())

	case errors.Is(err, usecase.ErrInvalidCredentials):
		h.log.Warn(operation+" failed - invalid credentials")
		h.fail(w, r, http.StatusUnauthorized, "Invalid login or password")

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		h.fail(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeRequest fills dst from a JSON body or from url-encoded form values.
func decodeRequest(r *http.Request, dst any) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return render.DecodeJSON(r.Body, dst)
	}

	if err := r.ParseForm(); err != nil {
		return err
	}

	// Repeated keys (nameRole) are read by the caller from r.PostForm.
	single := url.Values{}
	for key, values := range r.PostForm {
		if len(values) > 0 {
			single.Set(key, values[0])
		}
	}

	d := form.NewDecoder(strings.NewReader(single.Encode()))
	d.IgnoreUnknownKeys(true)
	return d.Decode(dst)
}

// roleNames returns the submitted role names from either body type.
func roleNames(r *http.Request, decoded []string) []string {
	if values, ok := r.PostForm["nameRole"]; ok {
		return values
	}
	return decoded
}

// toUser maps a request DTO onto a fresh user entity.
func toUser(src any) (*entity.User, error) {
	user := &entity.User{}
	if err := copier.Copy(user, src); err != nil {
		return nil, err
	}
	return user, nil
}
