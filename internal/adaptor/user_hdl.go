package adaptor

import (
	"net/http"

	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/internal/usecase"
	"user-admin/internal/view"
	"user-admin/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	responder
	service usecase.AccountService
}

func NewUserHandler(service usecase.AccountService, base responder) *UserHandler {
	return &UserHandler{
		responder: base,
		service:   service,
	}
}

// Profile handles GET /user
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	loginID, ok := utils.GetLoginIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.service.FindUserByLoginID(r.Context(), loginID)
	if err != nil {
		h.handleServiceError(w, r, err, "get profile")
		return
	}

	page := h.page(r, "Profile")
	page.Data = response.UserToResponse(user)
	h.respond(w, r, http.StatusOK, view.PageUser, page)
}

// UpdateForm handles GET /user/user-update/{id}
func (h *UserHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if !h.ownsAccount(w, r, id) {
		return
	}

	user, err := h.service.FindUserByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, "load profile")
		return
	}
	if user.ID == 0 {
		h.fail(w, r, http.StatusNotFound, "User not found")
		return
	}

	h.renderForm(w, r, http.StatusOK, response.UserToResponse(user), nil)
}

// UpdateUser handles POST /user/user-update. Roles always stay as stored.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateUserRequest

	if err := decodeRequest(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, _ := utils.ParseID(string(req.UserID))
	submitted := formUser(id, req.FirstName, req.LastName, req.Email, req.Gender, nil)

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.renderForm(w, r, http.StatusBadRequest, submitted, validationErrors)
		return
	}
	if !h.ownsAccount(w, r, id) {
		return
	}

	user, ok := loadEdited(h.responder, h.service, w, r, id, &req)
	if !ok {
		return
	}

	loginID, _ := utils.GetLoginIDFromContext(r.Context())
	if _, err := h.service.ResolveRolesPreservingExisting(r.Context(), user, loginID); err != nil {
		h.handleServiceError(w, r, err, "resolve roles")
		return
	}

	updated, err := h.service.UpdateAccount(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, r, err, "update profile")
		return
	}
	if !updated {
		h.renderForm(w, r, http.StatusBadRequest, submitted, map[string]string{"firstName": msgLoginTaken})
		return
	}

	h.redirect(w, r, "/user", "Profile updated successfully")
}

// ownsAccount rejects edits of any account other than the session owner's.
func (h *UserHandler) ownsAccount(w http.ResponseWriter, r *http.Request, id int64) bool {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, http.StatusUnauthorized, "Authentication required")
		return false
	}
	if userID != id {
		h.log.Warn("Self-service edit of another account",
			zap.Int64("user_id", userID),
			zap.Int64("target_id", id),
		)
		h.fail(w, r, http.StatusForbidden, "You can only edit your own profile")
		return false
	}
	return true
}

func (h *UserHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, user response.UserResponse, errs map[string]string) {
	page := h.page(r, "Edit profile")
	page.Errors = errs
	page.Data = view.NewUserFormData(user, nil)
	h.respond(w, r, status, view.PageUserUpdate, page)
}
