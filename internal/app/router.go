package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/amplio-agency/amplio/internal/adminusers"
	audithttp "github.com/amplio-agency/amplio/internal/audit/http"
	"github.com/amplio-agency/amplio/internal/brands"
	"github.com/amplio-agency/amplio/internal/campaigns"
	"github.com/amplio-agency/amplio/internal/content"
	"github.com/amplio-agency/amplio/internal/influencers"
	"github.com/amplio-agency/amplio/internal/observability"
	"github.com/amplio-agency/amplio/internal/payments"
	"github.com/amplio-agency/amplio/internal/policy"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	BrandsHandler      *brands.Handler
	CampaignsHandler   *campaigns.Handler
	InfluencersHandler *influencers.Handler
	ContentHandler     *content.Handler
	PaymentsHandler    *payments.Handler
	AdminUsersHandler  *adminusers.Handler
	PolicyHandler      *policy.Handler
	AuditHandler       *audithttp.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Amplio defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/brands", params.BrandsHandler.MountRoutes)
		r.Route("/campaigns", params.CampaignsHandler.MountRoutes)
		r.Route("/influencers", params.InfluencersHandler.MountRoutes)
		r.Route("/assignments", params.InfluencersHandler.MountAssignmentRoutes)
		r.Route("/submissions", params.ContentHandler.MountRoutes)
		r.Route("/payments", params.PaymentsHandler.MountRoutes)
		r.Route("/admin-users", params.AdminUsersHandler.MountRoutes)
		r.Route("/permissions", params.PolicyHandler.MountRoutes)
		r.Route("/audit", params.AuditHandler.MountRoutes)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
