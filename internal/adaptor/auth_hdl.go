package adaptor

import (
	"errors"
	"net/http"

	"user-admin/internal/data/entity"
	"user-admin/internal/dto/request"
	"user-admin/internal/usecase"
	"user-admin/internal/view"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	responder
	service usecase.AuthService
	cookie  utils.SessionConfig
}

func NewAuthHandler(service usecase.AuthService, base responder, cookie utils.SessionConfig) *AuthHandler {
	return &AuthHandler{
		responder: base,
		service:   service,
		cookie:    cookie,
	}
}

// Home handles GET /
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	utils.ResponseRedirect(w, r, landingPage(r))
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.GetUserIDFromContext(r.Context()); ok {
		utils.ResponseRedirect(w, r, landingPage(r))
		return
	}

	h.respond(w, r, http.StatusOK, view.PageLogin, h.page(r, "Sign in"))
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if err := decodeRequest(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	meta := usecase.ClientMeta{
		UserAgent: r.UserAgent(),
		IPAddress: r.RemoteAddr,
	}

	session, principal, err := h.service.Login(r.Context(), &req, meta)
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		page := h.page(r, "Sign in")
		page.Data = req.Username
		page.Errors = map[string]string{"credentials": "Invalid login or password"}
		h.respond(w, r, http.StatusUnauthorized, view.PageLogin, page)
		return
	}
	if err != nil {
		h.handleServiceError(w, r, err, "login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    session.Token.String(),
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	target := "/user"
	if principal.HasAuthority(entity.RoleNameAdmin) {
		target = "/admin"
	}
	h.redirect(w, r, target, "Login successful")
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookie.CookieName); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			h.log.Error("Failed to revoke session", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.redirect(w, r, "/login", "Logout successful")
}

func landingPage(r *http.Request) string {
	switch {
	case utils.HasRole(r.Context(), entity.RoleNameAdmin):
		return "/admin"
	case utils.HasRole(r.Context(), entity.RoleNameUser):
		return "/user"
	case r.Context().Value(utils.UserIDKey) != nil:
		return "/news"
	default:
		return "/login"
	}
}
