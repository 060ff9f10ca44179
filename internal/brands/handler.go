package brands

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

// Handler manages brand endpoints.
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

// MountRoutes registers brand routes. Stage changes carry their own
// permission check inside the workflow, so only the view/create routes use
// the route-level gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceBrand, policy.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceBrand, policy.ActionCreate))
		r.Post("/", h.create)
	})
	r.Post("/{id}/stage", h.changeStage)
}

type brandView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Stage   string `json:"stage"`
}

func toView(brand Brand) brandView {
	return brandView{ID: brand.ID, Name: brand.Name, Contact: brand.Contact, Stage: string(brand.Stage)}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list brands", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]brandView, 0, len(brands))
	for _, brand := range brands {
		out = append(out, toView(brand))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"brands": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	brand, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("get brand", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toView(brand))
}

type createBrandRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Contact string `json:"contact" validate:"max=200"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBrandRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	brand, err := h.service.Create(r.Context(), req.Name, req.Contact)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create brand", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(brand))
}

type changeStageRequest struct {
	Stage string `json:"stage" validate:"required,max=40"`
}

func (h *Handler) changeStage(w http.ResponseWriter, r *http.Request) {
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
	var req changeStageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	brand, err := h.service.ChangeStage(r.Context(), actor, id, req.Stage)
	if err != nil {
		workflow.WriteProblem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(brand))
}
