package audithttp

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amplio-agency/amplio/internal/audit"
	"github.com/amplio-agency/amplio/internal/platform/httpx"
	"github.com/amplio-agency/amplio/internal/policy"
)

// Handler exposes the audit timeline. It lives outside the audit package so
// the policy gate can depend on audit's record types without a cycle.
type Handler struct {
	logger  *slog.Logger
	service *audit.Service
	mw      policy.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *audit.Service, mw policy.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(policy.ResourceAudit, policy.ActionView))
		r.Get("/", h.timeline)
	})
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	filters := audit.TimelineFilters{
		Resource: q.Get("resource"),
		Decision: q.Get("decision"),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := q.Get("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.To = t
		}
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Audit Unavailable", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"records": result.Rows,
		"paging": map[string]any{
			"page":      result.Paging.Page,
			"page_size": result.Paging.PageSize,
			"has_next":  result.Paging.HasNext,
		},
	})
}
