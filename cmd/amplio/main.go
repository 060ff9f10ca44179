package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/amplio-agency/amplio/internal/adminusers"
	"github.com/amplio-agency/amplio/internal/app"
	"github.com/amplio-agency/amplio/internal/audit"
	audithttp "github.com/amplio-agency/amplio/internal/audit/http"
	"github.com/amplio-agency/amplio/internal/brands"
	"github.com/amplio-agency/amplio/internal/campaigns"
	"github.com/amplio-agency/amplio/internal/content"
	"github.com/amplio-agency/amplio/internal/influencers"
	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/observability"
	"github.com/amplio-agency/amplio/internal/payments"
	"github.com/amplio-agency/amplio/internal/platform/cache"
	"github.com/amplio-agency/amplio/internal/platform/db"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
	"github.com/amplio-agency/amplio/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	var trail audit.Recorder = jobs.NewQueuedRecorder(asynqClient, logger)
	if cfg.AuditDirect {
		trail = audit.NewSinkRecorder(audit.NewSink(pool), logger)
	}
	dispatcher := jobs.NewDispatcher(asynqClient, logger)

	policyRepo := policy.NewRepository(pool)
	policyStore := policy.NewStore(policyRepo)
	gate := policy.NewGate(policyStore, trail, logger)
	mw := policy.Middleware{Gate: gate, Logger: logger}

	brandRepo := brands.NewRepository(pool)
	campaignRepo := campaigns.NewRepository(pool)
	influencerRepo := influencers.NewRepository(pool)
	assignmentRepo := influencers.NewAssignmentRepository(pool)
	submissionRepo := content.NewRepository(pool)
	paymentRepo := payments.NewRepository(pool)
	adminUserRepo := adminusers.NewRepository(pool)

	metrics := observability.NewMetrics()

	wf := workflow.NewService(gate, trail, dispatcher, logger).
		WithMetrics(metrics).
		Register(workflow.TypeBrand, lifecycle.Brand(), brandRepo).
		Register(workflow.TypeCampaign, lifecycle.Campaign(), campaignRepo).
		Register(workflow.TypeInfluencer, lifecycle.Influencer(), influencerRepo).
		Register(workflow.TypeAssignment, lifecycle.Assignment(), assignmentRepo).
		Register(workflow.TypeSubmission, lifecycle.Submission(), submissionRepo).
		Register(workflow.TypePayment, lifecycle.Payment(), paymentRepo).
		Register(workflow.TypeAdminUser, lifecycle.AdminUser(), adminUserRepo)

	brandService := brands.NewService(brandRepo, wf)
	campaignService := campaigns.NewService(campaignRepo, wf)
	influencerService := influencers.NewService(influencerRepo, assignmentRepo, wf)
	contentService := content.NewService(submissionRepo, wf)
	paymentService := payments.NewService(paymentRepo, wf, logger)
	adminUserService := adminusers.NewService(adminUserRepo, wf)
	auditService := audit.NewService(audit.NewPGRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		BrandsHandler:      brands.NewHandler(logger, brandService, mw),
		CampaignsHandler:   campaigns.NewHandler(logger, campaignService, mw),
		InfluencersHandler: influencers.NewHandler(logger, influencerService, mw),
		ContentHandler:     content.NewHandler(logger, contentService, mw),
		PaymentsHandler:    payments.NewHandler(logger, paymentService, mw),
		AdminUsersHandler:  adminusers.NewHandler(logger, adminUserService, mw),
		PolicyHandler:      policy.NewHandler(logger, policyStore, gate, mw),
		AuditHandler:       audithttp.NewHandler(logger, auditService, mw),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
