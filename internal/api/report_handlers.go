package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/loopz/internal/aggregate"
	"github.com/hyperengineering/loopz/internal/types"
)

// Totals handles GET /api/v1/totals?from=&to= and GET /api/v1/totals?scope=all
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	var (
		totals aggregate.Totals
		err    error
	)
	if r.URL.Query().Get("scope") == "all" {
		totals, err = h.app.AllTimeTotals(r.Context())
	} else {
		from, to, ok := dateRange(w, r)
		if !ok {
			return
		}
		totals, err = h.app.Totals(r.Context(), from, to)
	}
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// WeekProgress handles GET /api/v1/weeks/{date}/progress
func (h *Handler) WeekProgress(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.WeekProgress(r.Context(), MustDateFromContext(r.Context()))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// YearSummary handles GET /api/v1/years/{year}/summary
func (h *Handler) YearSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.YearSummary(r.Context(), YearFromContext(r.Context()))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// YearCalendar handles GET /api/v1/years/{year}/calendar
func (h *Handler) YearCalendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.app.YearCalendar(r.Context(), YearFromContext(r.Context()))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

// ChartMetrics handles GET /api/v1/charts
func (h *Handler) ChartMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.ChartMetrics())
}

// Chart handles GET /api/v1/charts/{range}/{metricID}
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	rng, err := aggregate.ParseRange(chi.URLParam(r, "range"))
	if err != nil {
		MapError(w, r, err)
		return
	}
	report, err := h.app.Chart(r.Context(), rng, chi.URLParam(r, "metricID"))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListMetrics handles GET /api/v1/metrics; ?active=true limits to active ones.
func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Metrics(r.URL.Query().Get("active") == "true"))
}

// GetMetric handles GET /api/v1/metrics/{id}
func (h *Handler) GetMetric(w http.ResponseWriter, r *http.Request) {
	m, err := h.app.Metric(chi.URLParam(r, "id"))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreateMetric handles POST /api/v1/metrics
func (h *Handler) CreateMetric(w http.ResponseWriter, r *http.Request) {
	var n types.NewCustomMetric
	if !decodeJSON(w, r, &n) {
		return
	}
	m, err := h.app.AddMetric(r.Context(), n)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// PatchMetric handles PATCH /api/v1/metrics/{id}
func (h *Handler) PatchMetric(w http.ResponseWriter, r *http.Request) {
	var u types.CustomMetricUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	m, err := h.app.UpdateMetric(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ToggleMetric handles POST /api/v1/metrics/{id}/toggle
func (h *Handler) ToggleMetric(w http.ResponseWriter, r *http.Request) {
	m, err := h.app.ToggleMetric(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMetric handles DELETE /api/v1/metrics/{id}. System metrics are
// deactivated; user metrics are removed. Logged values stay either way.
func (h *Handler) DeleteMetric(w http.ResponseWriter, r *http.Request) {
	if err := h.app.DeleteMetric(r.Context(), chi.URLParam(r, "id")); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
