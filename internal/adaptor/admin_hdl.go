package adaptor

import (
	"errors"
	"net/http"

	"user-admin/internal/data/entity"
	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/internal/usecase"
	"user-admin/internal/view"
	"user-admin/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgLoginTaken = "Login is already taken"

type AdminHandler struct {
	responder
	service usecase.AccountService
}

func NewAdminHandler(service usecase.AccountService, base responder) *AdminHandler {
	return &AdminHandler{
		responder: base,
		service:   service,
	}
}

// ListUsers handles GET /admin
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.FindAllUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "list users")
		return
	}

	total, err := h.service.CountUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "count users")
		return
	}

	page := h.page(r, "Users")
	page.Data = view.AdminData{
		Total: total,
		Users: response.UsersToResponse(users),
	}
	h.respond(w, r, http.StatusOK, view.PageAdmin, page)
}

// CreateForm handles GET /admin/user-save
func (h *AdminHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, view.PageAdminSave, response.UserResponse{}, nil)
}

// CreateUser handles POST /admin/user-save
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req request.UserRequest

	if err := decodeRequest(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.NameRole = roleNames(r, req.NameRole)
	submitted := formUser(0, req.FirstName, req.LastName, req.Email, req.Gender, req.NameRole)

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.renderForm(w, r, http.StatusBadRequest, view.PageAdminSave, submitted, validationErrors)
		return
	}

	user, err := toUser(&req)
	if err != nil {
		h.handleServiceError(w, r, err, "map user")
		return
	}

	// Without submitted roles the account service assigns the default one.
	if len(req.NameRole) > 0 {
		if _, err := h.service.ResolveRolesForAdminEdit(r.Context(), user, req.NameRole); err != nil {
			h.rejectRoles(w, r, view.PageAdminSave, submitted, err)
			return
		}
	}

	created, err := h.service.CreateAccount(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, r, err, "create user")
		return
	}
	if !created {
		h.renderForm(w, r, http.StatusBadRequest, view.PageAdminSave, submitted,
			map[string]string{"firstName": msgLoginTaken})
		return
	}

	h.redirect(w, r, "/admin", "User created successfully")
}

// DeleteUser handles DELETE /admin/user-delete/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.DeleteUserByID(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err, "delete user")
		return
	}

	h.log.Info("User deleted by admin", zap.Int64("user_id", id))
	h.redirect(w, r, "/admin", "User deleted successfully")
}

// UpdateForm handles GET /admin/user-update/{id}
func (h *AdminHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.service.FindUserByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, "load user")
		return
	}
	if user.ID == 0 {
		h.fail(w, r, http.StatusNotFound, "User not found")
		return
	}

	h.renderForm(w, r, http.StatusOK, view.PageAdminUpdate, response.UserToResponse(user), nil)
}

// UpdateUser handles POST /admin/user-update
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateUserRequest

	if err := decodeRequest(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.NameRole = roleNames(r, req.NameRole)

	id, _ := utils.ParseID(string(req.UserID))
	submitted := formUser(id, req.FirstName, req.LastName, req.Email, req.Gender, req.NameRole)

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.renderForm(w, r, http.StatusBadRequest, view.PageAdminUpdate, submitted, validationErrors)
		return
	}

	user, ok := loadEdited(h.responder, h.service, w, r, id, &req)
	if !ok {
		return
	}

	if _, err := h.service.ResolveRolesForAdminEdit(r.Context(), user, req.NameRole); err != nil {
		h.rejectRoles(w, r, view.PageAdminUpdate, submitted, err)
		return
	}

	updated, err := h.service.UpdateAccount(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, r, err, "update user")
		return
	}
	if !updated {
		h.renderForm(w, r, http.StatusBadRequest, view.PageAdminUpdate, submitted,
			map[string]string{"firstName": msgLoginTaken})
		return
	}

	h.redirect(w, r, "/admin", "User updated successfully")
}

func (h *AdminHandler) rejectRoles(w http.ResponseWriter, r *http.Request, name string, submitted response.UserResponse, err error) {
	var unresolved *usecase.UnresolvedRolesError
	if errors.As(err, &unresolved) {
		h.renderForm(w, r, http.StatusBadRequest, name, submitted,
			map[string]string{"nameRole": unresolved.Error()})
		return
	}
	h.handleServiceError(w, r, err, "resolve roles")
}

// renderForm shows an admin form with the role list.
func (h *AdminHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, name string, user response.UserResponse, errs map[string]string) {
	roles, err := h.service.FindAllRoles(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "list roles")
		return
	}

	title := "New user"
	if name == view.PageAdminUpdate {
		title = "Edit user"
	}

	page := h.page(r, title)
	page.Errors = errs
	page.Data = view.NewUserFormData(user, response.RolesToResponse(roles))
	h.respond(w, r, status, name, page)
}

// loadEdited maps an edit request onto the stored user. A blank password keeps
// the stored hash. Shared by the admin and self-service edit flows.
func loadEdited(h responder, service usecase.AccountService, w http.ResponseWriter, r *http.Request, id int64, req *request.UpdateUserRequest) (*entity.User, bool) {
	existing, err := service.FindUserByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, "load user")
		return nil, false
	}
	if existing.ID == 0 {
		h.fail(w, r, http.StatusNotFound, "User not found")
		return nil, false
	}

	user, err := toUser(req)
	if err != nil {
		h.handleServiceError(w, r, err, "map user")
		return nil, false
	}
	user.ID = id
	user.CreatedAt = existing.CreatedAt
	if user.Password == "" {
		user.Password = existing.Password
	}

	return user, true
}

// formUser echoes submitted values back into a form.
func formUser(id int64, firstName, lastName, email, gender string, roles []string) response.UserResponse {
	return response.UserResponse{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Gender:    gender,
		Roles:     roles,
	}
}
