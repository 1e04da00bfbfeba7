package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/userdesk/internal/platform/httpx"
	"github.com/odyssey-erp/userdesk/internal/view"
)

// Handler serves the users JSON API and the server-rendered users page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates}
}

// MountAPIRoutes registers the JSON routes under /api/users.
func (h *Handler) MountAPIRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Post("/", h.createUser)
	r.Delete("/{id}", h.deleteUser)
}

// MountPageRoutes registers the HTML routes under /users.
func (h *Handler) MountPageRoutes(r chi.Router) {
	r.Get("/", h.showUsers)
	r.Post("/", h.submitUser)
	r.Post("/{id}/delete", h.submitDelete)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var input NewUser
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.CreateUser(r.Context(), input)
	if err != nil {
		h.logError(r.Context(), "create user failed", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.logError(r.Context(), "delete user failed", err, slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type formErrors map[string]string

type pageData struct {
	Users  []User
	Form   NewUser
	Errors formErrors
}

func (h *Handler) showUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		h.render(w, r, pageData{Errors: formErrors{"general": err.Error()}}, http.StatusInternalServerError)
		return
	}
	h.render(w, r, pageData{Users: users}, http.StatusOK)
}

func (h *Handler) submitUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := NewUser{Name: r.PostFormValue("name"), Email: r.PostFormValue("email")}
	if _, err := h.service.CreateUser(r.Context(), form); err != nil {
		h.logError(r.Context(), "create user failed", err)
		h.renderFailure(w, r, form, err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) submitDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err == nil {
		err = h.service.DeleteUser(r.Context(), id)
	}
	if err != nil {
		h.logError(r.Context(), "delete user failed", err)
		h.renderFailure(w, r, NewUser{}, err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// renderFailure re-renders the page with the current list and the error.
func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request, form NewUser, cause error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(cause, httpx.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(cause, httpx.ErrNotFound):
		status = http.StatusNotFound
	}
	data := pageData{Form: form, Errors: formErrors{"general": cause.Error()}}
	if users, err := h.service.ListUsers(r.Context()); err == nil {
		data.Users = users
	}
	h.render(w, r, data, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData, status int) {
	viewData := view.TemplateData{Title: "User Management", CurrentPath: r.URL.Path, Data: data}
	if err := h.templates.Render(w, status, "pages/users.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) logError(ctx context.Context, msg string, err error, attrs ...any) {
	level := slog.LevelError
	if errors.Is(err, httpx.ErrValidation) || errors.Is(err, httpx.ErrNotFound) {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg, append(attrs, slog.Any("error", err))...)
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid user id %q", httpx.ErrValidation, raw)
	}
	return id, nil
}
