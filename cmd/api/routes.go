package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/coach-crm/internal/config"
	"github.com/xavierca1/coach-crm/internal/infra/http/handlers"
	"github.com/xavierca1/coach-crm/internal/infra/http/middleware"
)

type routerDeps struct {
	Config        *config.Config
	Users         middleware.UserFinder
	Health        *handlers.HealthHandler
	Dashboard     *handlers.DashboardHandler
	Leads         *handlers.LeadHandler
	Bills         *handlers.BillHandler
	Reports       *handlers.ReportHandler
	Notifications *handlers.NotificationHandler
	Limiter       *middleware.RateLimiter
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.ActorHeader},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Actor(d.Users))

		r.Get("/dashboard", d.Dashboard.Handle)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", d.Leads.HandleList)
			r.Post("/{leadId}/status", d.Leads.HandleStatusChange)
			r.Post("/{leadId}/assign", d.Leads.HandleAssign)
			r.Get("/{leadId}/bills", d.Bills.HandleList)
			r.Post("/{leadId}/bills", d.Bills.HandleCreate)
		})
		r.Post("/bills/preview", d.Bills.HandlePreview)

		r.Route("/reports/{kind}", func(r chi.Router) {
			r.Get("/", d.Reports.HandleGenerate)
			r.With(d.Limiter.Handler).Get("/export", d.Reports.HandleExport)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", d.Notifications.HandleFeed)
			r.Post("/read-all", d.Notifications.HandleMarkAllRead)
			r.Post("/{notificationId}/read", d.Notifications.HandleMarkRead)
			r.Delete("/", d.Notifications.HandleClear)
		})
	})

	return r
}
