package handlers

import (
	"net/http"
	"strings"

	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/services"
	"github.com/forumhub/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	users *services.UserService
	log   logging.Logger
}

func NewUserHandler(users *services.UserService, log logging.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// UserRouter registers user routes. adminOnly must already include the
// authentication gate.
func UserRouter(r chi.Router, handler *UserHandler, adminOnly func(http.Handler) http.Handler) {
	r.Get("/users/check-username/{username}", handler.CheckUsername)
	r.Post("/users", handler.Register)
	r.Get("/user/{email}", handler.GetUser)
	r.Get("/role", handler.Role)
	r.With(adminOnly).Get("/admin/users", handler.SearchUsers)
	r.With(adminOnly).Patch("/makeAdmin/{userID}", handler.MakeAdmin)
}

func (h *UserHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	taken, err := h.users.CheckUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, h.log, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, UsernameCheckResponse{Exists: taken})
}

// Register signs a user in, creating the account on first sight.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, created, err := h.users.Register(r.Context(), types.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Username: req.Username,
		Photo:    req.Photo,
	}, clientIP(r))
	if err != nil {
		writeServiceError(w, r, h.log, err, "user not found")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, RegisterResponse{User: user, Created: created})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeServiceError(w, r, h.log, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Role returns the stored role for ?email=.
func (h *UserHandler) Role(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	role, err := h.users.RoleOf(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, h.log, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, RoleResponse{Role: role})
}

func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.users.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")), offset, limit)
	if err != nil {
		writeServiceError(w, r, h.log, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, UserListResponse{Items: nonNil(users), Page: page, Limit: limit})
}

func (h *UserHandler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.users.MakeAdmin(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeServiceError(w, r, h.log, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Photo    string `json:"photo"`
}

type RegisterResponse struct {
	User    types.User `json:"user"`
	Created bool       `json:"created"`
}

type UsernameCheckResponse struct {
	Exists bool `json:"exists"`
}

type RoleResponse struct {
	Role string `json:"role"`
}

type UserListResponse struct {
	Items []types.User `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}
