package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Protected routes (auth required when an API key is configured)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.apiKey))

			r.Get("/logs", h.ListLogs)
			r.With(YearParam).Get("/logs/year/{year}", h.YearLogs)
			r.With(YearParam).Get("/logs/month/{year}/{month}", h.MonthLogs)
			r.With(DateParam).Get("/logs/week/{date}", h.WeekLogs)
			r.Route("/logs/{date}", func(r chi.Router) {
				r.Use(DateParam)
				r.Get("/", h.GetLog)
				r.Put("/", h.PutLog)
				r.Put("/metrics/{id}", h.PutMetricValue)
			})

			r.Get("/totals", h.Totals)
			r.With(DateParam).Get("/weeks/{date}/progress", h.WeekProgress)
			r.With(YearParam).Get("/years/{year}/summary", h.YearSummary)
			r.With(YearParam).Get("/years/{year}/calendar", h.YearCalendar)

			r.Get("/goals", h.GetGoals)
			r.Patch("/goals", h.PatchGoals)
			r.Post("/goals/reset", h.ResetGoals)
			r.Post("/goals/vacation", h.SetVacation)

			r.Get("/streaks", h.GetStreaks)

			r.Get("/metrics", h.ListMetrics)
			r.Post("/metrics", h.CreateMetric)
			r.Get("/metrics/{id}", h.GetMetric)
			r.Patch("/metrics/{id}", h.PatchMetric)
			r.Delete("/metrics/{id}", h.DeleteMetric)
			r.Post("/metrics/{id}/toggle", h.ToggleMetric)

			r.Get("/charts", h.ChartMetrics)
			r.Get("/charts/{range}/{metricID}", h.Chart)
		})
	})

	return r
}
