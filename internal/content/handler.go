package content

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

// Handler manages content submission endpoints.
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

// MountRoutes registers submission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceContent, policy.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceContent, policy.ActionCreate))
		r.Post("/", h.create)
	})
	r.Post("/{id}/review", h.review)
}

type submissionView struct {
	ID           int64  `json:"id"`
	AssignmentID int64  `json:"assignment_id"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	Feedback     string `json:"feedback,omitempty"`
}

func toView(s Submission) submissionView {
	return submissionView{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		URL:          s.URL,
		Status:       string(s.Status),
		Feedback:     s.Feedback,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var assignmentID int64
	if raw := r.URL.Query().Get("assignment_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "assignment_id must be an integer")
			return
		}
		assignmentID = id
	}
	submissions, err := h.service.List(r.Context(), assignmentID)
	if err != nil {
		h.logger.Error("list submissions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]submissionView, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, toView(s))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"submissions": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	s, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("get submission", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toView(s))
}

type createSubmissionRequest struct {
	AssignmentID int64  `json:"assignment_id" validate:"required"`
	URL          string `json:"url" validate:"required,url,max=500"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSubmissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	s, err := h.service.Create(r.Context(), req.AssignmentID, req.URL)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create submission", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(s))
}

type reviewRequest struct {
	Verdict  string `json:"verdict" validate:"required,oneof=APPROVED REJECTED approved rejected"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
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
	var req reviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	s, err := h.service.Review(r.Context(), actor, id, req.Verdict, req.Feedback)
	if err != nil {
		workflow.WriteProblem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(s))
}
