package campaigns

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

// Handler manages campaign endpoints.
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

// MountRoutes registers campaign routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceCampaign, policy.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceCampaign, policy.ActionCreate))
		r.Post("/", h.create)
	})
	r.Post("/{id}/approve", h.approve)
	r.Post("/{id}/status", h.setStatus)
}

type campaignView struct {
	ID          int64  `json:"id"`
	BrandID     int64  `json:"brand_id"`
	Name        string `json:"name"`
	BudgetCents int64  `json:"budget_cents"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Approved    bool   `json:"approved"`
}

func toView(c Campaign) campaignView {
	return campaignView{
		ID:          c.ID,
		BrandID:     c.BrandID,
		Name:        c.Name,
		BudgetCents: c.BudgetCents,
		Currency:    c.Currency,
		Status:      string(c.Status),
		Approved:    c.Approved,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list campaigns", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]campaignView, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, toView(c))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"campaigns": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("get campaign", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toView(c))
}

type createCampaignRequest struct {
	BrandID     int64  `json:"brand_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=120"`
	BudgetCents int64  `json:"budget_cents" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.Create(r.Context(), CreateInput{
		BrandID:     req.BrandID,
		Name:        req.Name,
		BudgetCents: req.BudgetCents,
		Currency:    req.Currency,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create campaign", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(c))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
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
	c, err := h.service.Approve(r.Context(), actor, id)
	if err != nil {
		workflow.WriteProblem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(c))
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,max=40"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
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
	var req setStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.SetStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		workflow.WriteProblem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(c))
}
