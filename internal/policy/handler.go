package policy

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/amplio-agency/amplio/internal/platform/httpx"
)

// Handler manages permission management endpoints.
type Handler struct {
	logger   *slog.Logger
	store    *Store
	gate     *Gate
	validate *validator.Validate
	mw       Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, store *Store, gate *Gate, mw Middleware) *Handler {
	return &Handler{logger: logger, store: store, gate: gate, validate: validator.New(), mw: mw}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(ResourcePermission, ActionView))
		r.Get("/", h.listPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSuperAdmin())
		r.Put("/", h.setPermission)
	})
	r.Post("/check", h.checkPermission)
}

type ruleView struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Allowed  bool   `json:"allowed"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.Effective(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Policy Unavailable", "")
		return
	}
	out := make([]ruleView, 0, len(rules))
	for _, rule := range rules {
		out = append(out, ruleView{Role: string(rule.Role), Resource: string(rule.Resource), Action: string(rule.Action), Allowed: rule.Allowed})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": out})
}

type setPermissionRequest struct {
	Role     string `json:"role" validate:"required"`
	Resource string `json:"resource" validate:"required"`
	Action   string `json:"action" validate:"required"`
	Allowed  bool   `json:"allowed"`
}

func (h *Handler) setPermission(w http.ResponseWriter, r *http.Request) {
	var req setPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rule := Rule{Role: role, Resource: Resource(req.Resource), Action: Action(req.Action), Allowed: req.Allowed}
	if err := h.store.Upsert(r.Context(), rule); err != nil {
		h.logger.Error("set permission", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Policy Unavailable", "")
		return
	}
	httpx.JSON(w, http.StatusOK, ruleView{Role: string(rule.Role), Resource: string(rule.Resource), Action: string(rule.Action), Allowed: rule.Allowed})
}

type checkPermissionRequest struct {
	Resource string `json:"resource" validate:"required"`
	Action   string `json:"action" validate:"required"`
}

func (h *Handler) checkPermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req checkPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	decision := h.gate.Check(r.Context(), actor, Resource(req.Resource), Action(req.Action))
	httpx.JSON(w, http.StatusOK, map[string]any{"allowed": decision.Allowed, "reason": decision.Reason})
}
