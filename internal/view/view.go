// Package view renders the HTML pages of the admin panel.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"user-admin/internal/data/entity"
	"user-admin/internal/dto/response"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page names, one per template file.
const (
	PageLogin       = "login"
	PageAdmin       = "admin"
	PageAdminSave   = "admin-save"
	PageAdminUpdate = "admin-update"
	PageUser        = "user"
	PageUserUpdate  = "user-update"
	PageNews        = "news"
	PageError       = "error"
)

var pageNames = []string{
	PageLogin, PageAdmin, PageAdminSave, PageAdminUpdate,
	PageUser, PageUserUpdate, PageNews, PageError,
}

// Page is the data every template receives.
type Page struct {
	Title         string
	Authenticated bool
	LoginID       string
	IsAdmin       bool
	Message       string
	Errors        map[string]string
	Data          any
}

type AdminData struct {
	Total int64                   `json:"total"`
	Users []response.UserResponse `json:"users"`
}

type GenderOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UserFormData backs the create and edit forms. A nil Roles hides the role checkboxes.
type UserFormData struct {
	User    response.UserResponse   `json:"user"`
	Roles   []response.RoleResponse `json:"roles,omitempty"`
	Genders []GenderOption          `json:"genders"`
}

func NewUserFormData(user response.UserResponse, roles []response.RoleResponse) UserFormData {
	genders := make([]GenderOption, 0, len(entity.Genders()))
	for _, g := range entity.Genders() {
		genders = append(genders, GenderOption{Value: string(g), Label: g.DisplayName()})
	}

	return UserFormData{User: user, Roles: roles, Genders: genders}
}

type ErrorData struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Detail     string `json:"detail"`
}

type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer(log *zap.Logger) (*Renderer, error) {
	layout, err := template.ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, log: log}, nil
}

// Render executes the page into a buffer first so a template failure never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) {
	t, ok := r.pages[name]
	if !ok {
		r.log.Error("Unknown page", zap.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		r.log.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.log.Debug("Client went away while rendering", zap.String("page", name), zap.Error(err))
	}
}

// RenderError renders the generic error page for status.
func (r *Renderer) RenderError(w http.ResponseWriter, status int, page *Page, detail string) {
	page.Title = http.StatusText(status)
	page.Data = ErrorData{
		Status:     status,
		StatusText: http.StatusText(status),
		Detail:     detail,
	}
	r.Render(w, status, PageError, page)
}
