package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/config"
	"github.com/xavierca1/coach-crm/internal/entity"
	"github.com/xavierca1/coach-crm/internal/infra/cache"
	"github.com/xavierca1/coach-crm/internal/infra/database"
	"github.com/xavierca1/coach-crm/internal/infra/export"
	"github.com/xavierca1/coach-crm/internal/infra/http/handlers"
	"github.com/xavierca1/coach-crm/internal/infra/http/middleware"
	"github.com/xavierca1/coach-crm/internal/infra/mail"
	"github.com/xavierca1/coach-crm/internal/infra/queue"
	"github.com/xavierca1/coach-crm/internal/infra/worker"
	"github.com/xavierca1/coach-crm/internal/logger"
	"github.com/xavierca1/coach-crm/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}

	logOpts := logger.DefaultOptions()
	logOpts.Level, logOpts.Format, logOpts.File = cfg.LogLevel, cfg.LogFormat, cfg.LogFile
	logCloser, err := logger.Setup(logOpts)
	if err != nil {
		logrus.Fatalf("❌ Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Infra
	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("❌ Failed to connect to Postgres: %v", err)
	}
	defer db.Close()
	logrus.Info("✅ Postgres connected")

	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}
	defer rabbitMQ.Close()
	logrus.Info("✅ RabbitMQ connected")

	// 2. Repositories
	roles := cfg.Roles()
	vocab := entity.DefaultStatusVocabulary()

	leadRepo := database.NewLeadRepository(db)
	userRepo := database.NewUserRepository(db)
	eventRepo := database.NewStatusEventRepository(db)
	assignmentRepo := database.NewAssignmentRepository(db)
	billRepo := database.NewBillRepository(db)
	repos := usecase.Repositories{
		Leads:       leadRepo,
		Users:       userRepo,
		Payments:    database.NewPaymentRepository(db),
		Events:      eventRepo,
		Coaches:     database.NewCoachAssignmentRepository(db),
		Freezes:     database.NewFreezeRepository(db),
		Assignments: assignmentRepo,
	}
	notificationStore := cache.NewNotificationStore(redisClient, cfg.FeedLimit)

	// 3. Adapters
	observer := middleware.NewPrometheusObserver(prometheus.DefaultRegisterer)
	producer := queue.NewProducer(rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	writers := map[string]usecase.ReportWriter{
		"csv":  export.CSVWriter{},
		"xlsx": export.XLSXWriter{},
	}

	// 4. UseCases
	loader := usecase.NewSnapshotLoader(repos, roles, cfg.FetchTimeout)
	builder := usecase.NewReportBuilder(vocab)
	guard := usecase.NewGenerationGuard()
	validator := usecase.NewInputValidator(vocab)
	scopes := usecase.NewScopeResolver(roles, assignmentRepo)

	dashboardUC := usecase.NewDashboardUseCase(loader, vocab, guard, redisClient, observer)
	listLeadsUC := usecase.NewListLeadsUseCase(loader)
	statusUC := usecase.NewRecordStatusChangeUseCase(leadRepo, eventRepo, scopes, validator, producer, observer)
	assignUC := usecase.NewAssignLeadUseCase(leadRepo, userRepo, assignmentRepo, roles, validator)
	billUC := usecase.NewCreateBillUseCase(leadRepo, billRepo, scopes, validator, cfg.GSTRatePercent)
	reportUC := usecase.NewGenerateReportUseCase(loader, builder, guard, observer)
	exportUC := usecase.NewExportReportUseCase(reportUC, writers)
	notificationUC := usecase.NewNotificationUseCase(notificationStore, userRepo, assignmentRepo, eventRepo, roles, cfg.FeedPageSize, observer)
	reminderUC := usecase.NewRenewalReminderUseCase(loader, builder, mailSender, redisClient, roles)

	// 5. Workers
	eventWorker := queue.NewWorker(rabbitMQ.Ch, notificationUC)
	go func() {
		if err := eventWorker.Start(ctx, queue.QueueName); err != nil {
			logrus.Errorf("❌ Lead event worker stopped: %v", err)
		}
	}()

	reminderWorker := worker.NewRenewalReminderWorker(reminderUC, cfg.ReminderInterval)
	go reminderWorker.Start(ctx)

	// 6. Router
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	go limiter.StartCleanup(ctx, 3*time.Minute, 10*time.Minute)

	r := newRouter(routerDeps{
		Config:        cfg,
		Users:         userRepo,
		Health:        handlers.NewHealthHandler(db, redisClient, rabbitMQ),
		Dashboard:     handlers.NewDashboardHandler(dashboardUC),
		Leads:         handlers.NewLeadHandler(listLeadsUC, statusUC, assignUC),
		Bills:         handlers.NewBillHandler(billUC),
		Reports:       handlers.NewReportHandler(reportUC, exportUC),
		Notifications: handlers.NewNotificationHandler(notificationUC),
		Limiter:       limiter,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("🔥 Coach CRM API listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("❌ HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("❌ Graceful shutdown failed: %v", err)
	}
}
