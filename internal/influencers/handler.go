package influencers

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

// Handler manages influencer and assignment endpoints.
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

// MountRoutes registers influencer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceInfluencer, policy.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceInfluencer, policy.ActionCreate))
		r.Post("/", h.create)
	})
	r.Post("/{id}/approve", h.approve)
}

// MountAssignmentRoutes registers assignment routes.
func (h *Handler) MountAssignmentRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceAssignment, policy.ActionView))
		r.Get("/", h.listAssignments)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceAssignment, policy.ActionCreate))
		r.Post("/", h.assign)
	})
	r.Post("/{id}/status", h.setAssignmentStatus)
}

type influencerView struct {
	ID        int64  `json:"id"`
	Handle    string `json:"handle"`
	Platform  string `json:"platform"`
	RateCents int64  `json:"rate_cents"`
	Status    string `json:"status"`
}

func toView(i Influencer) influencerView {
	return influencerView{
		ID:        i.ID,
		Handle:    i.Handle,
		Platform:  i.Platform,
		RateCents: i.RateCents,
		Status:    string(i.Status),
	}
}

type assignmentView struct {
	ID           int64  `json:"id"`
	CampaignID   int64  `json:"campaign_id"`
	InfluencerID int64  `json:"influencer_id"`
	Status       string `json:"status"`
}

func toAssignmentView(a Assignment) assignmentView {
	return assignmentView{
		ID:           a.ID,
		CampaignID:   a.CampaignID,
		InfluencerID: a.InfluencerID,
		Status:       string(a.Status),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	influencers, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list influencers", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]influencerView, 0, len(influencers))
	for _, i := range influencers {
		out = append(out, toView(i))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"influencers": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	i, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("get influencer", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toView(i))
}

type createInfluencerRequest struct {
	Handle    string `json:"handle" validate:"required,max=80"`
	Platform  string `json:"platform" validate:"required,max=40"`
	RateCents int64  `json:"rate_cents" validate:"gte=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInfluencerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	i, err := h.service.Create(r.Context(), req.Handle, req.Platform, req.RateCents)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create influencer", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(i))
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
	i, err := h.service.Approve(r.Context(), actor, id)
	if err != nil {
		workflow.WriteProblem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(i))
}

type createAssignmentRequest struct {
	CampaignID   int64 `json:"campaign_id" validate:"required"`
	InfluencerID int64 `json:"influencer_id" validate:"required"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	a, err := h.service.Assign(r.Context(), req.CampaignID, req.InfluencerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "influencer does not exist")
		case errors.Is(err, ErrNotApproved):
			httpx.Problem(w, http.StatusConflict, "Not Approved", "influencer must be approved before assignment")
		case errors.Is(err, ErrValidation):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("create assignment", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toAssignmentView(a))
}

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	var campaignID int64
	if raw := r.URL.Query().Get("campaign_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "campaign_id must be an integer")
			return
		}
		campaignID = id
	}
	assignments, err := h.service.ListAssignments(r.Context(), campaignID)
	if err != nil {
		h.logger.Error("list assignments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]assignmentView, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentView(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": out})
}

type setAssignmentStatusRequest struct {
	Status string `json:"status" validate:"required,max=40"`
}

func (h *Handler) setAssignmentStatus(w http.ResponseWriter, r *http.Request) {
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
	var req setAssignmentStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	a, err := h.service.SetAssignmentStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		workflow.WriteProblem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentView(a))
}
