package adminusers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/amplio-agency/amplio/internal/platform/httpx"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// Handler manages admin user endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	mw       policy.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw policy.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), mw: mw}
}

// MountRoutes registers admin user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceAdminUser, policy.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceAdminUser, policy.ActionCreate))
		r.Post("/", h.create)
	})
	r.Delete("/{id}", h.delete)
}

type adminUserView struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

func toView(u AdminUser) adminUserView {
	return adminUserView{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
		Status: string(u.Status),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list admin users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]adminUserView, 0, len(users))
	for _, u := range users {
		out = append(out, toView(u))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"admin_users": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("get admin user", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toView(u))
}

type createAdminUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAdminUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	u, err := h.service.Create(r.Context(), CreateInput{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		case errors.Is(err, ErrEmailTaken):
			httpx.Problem(w, http.StatusConflict, "Email Taken", "an operator with this email already exists")
		default:
			h.logger.Error("create admin user", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(u))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := policy.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		workflow.WriteProblem(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
