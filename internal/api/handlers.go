package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/loopz/internal/app"
	"github.com/hyperengineering/loopz/internal/types"
	"github.com/hyperengineering/loopz/internal/validation"
)

// Handler implements the API handlers
type Handler struct {
	app     *app.App
	apiKey  string
	version string
}

// NewHandler creates a new Handler over the application context.
func NewHandler(a *app.App, apiKey, version string) *Handler {
	return &Handler{
		app:     a,
		apiKey:  apiKey,
		version: version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "component", "api", "error", err)
	}
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return false
	}
	return true
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Health(h.version))
}

// GetLog handles GET /api/v1/logs/{date}
func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	view, err := h.app.Log(r.Context(), MustDateFromContext(r.Context()))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PutLog handles PUT /api/v1/logs/{date}
func (h *Handler) PutLog(w http.ResponseWriter, r *http.Request) {
	var u types.LogUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	if u.IsEmpty() {
		WriteProblemWithErrors(w, r, "Request contains no changes", []validation.ValidationError{
			{Field: "body", Message: "at least one field is required"},
		})
		return
	}

	date := MustDateFromContext(r.Context())
	log, err := h.app.UpsertLog(r.Context(), date, u)
	if err != nil {
		MapError(w, r, err)
		return
	}
	slog.Info("log updated",
		"component", "api",
		"action", "log_upsert",
		"date", date.String(),
	)
	writeJSON(w, http.StatusOK, log)
}

type metricValueRequest struct {
	Value *float64 `json:"value"`
}

// PutMetricValue handles PUT /api/v1/logs/{date}/metrics/{id}
func (h *Handler) PutMetricValue(w http.ResponseWriter, r *http.Request) {
	var req metricValueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value == nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
			{Field: "value", Message: "is required"},
		})
		return
	}

	log, err := h.app.SetMetricValue(r.Context(), MustDateFromContext(r.Context()), chi.URLParam(r, "id"), *req.Value)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// ListLogs handles GET /api/v1/logs?from=&to=
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	logs, err := h.app.LogsInRange(r.Context(), from, to)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(logs))
}

// YearLogs handles GET /api/v1/logs/year/{year}
func (h *Handler) YearLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.app.LogsForYear(r.Context(), YearFromContext(r.Context()))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(logs))
}

// MonthLogs handles GET /api/v1/logs/month/{year}/{month}
func (h *Handler) MonthLogs(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		WriteProblem(w, r, http.StatusBadRequest, "Month must be a number between 1 and 12")
		return
	}
	logs, err := h.app.LogsForMonth(r.Context(), YearFromContext(r.Context()), time.Month(month))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(logs))
}

// WeekLogs handles GET /api/v1/logs/week/{date}
func (h *Handler) WeekLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.app.LogsForWeek(r.Context(), MustDateFromContext(r.Context()))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(logs))
}

// dateRange parses the required from and to query parameters.
func dateRange(w http.ResponseWriter, r *http.Request) (types.Date, types.Date, bool) {
	q := r.URL.Query()
	var errs []validation.ValidationError
	from, err := types.ParseDate(q.Get("from"))
	if err != nil {
		errs = append(errs, validation.ValidationError{Field: "from", Message: "must be a date (YYYY-MM-DD)"})
	}
	to, err := types.ParseDate(q.Get("to"))
	if err != nil {
		errs = append(errs, validation.ValidationError{Field: "to", Message: "must be a date (YYYY-MM-DD)"})
	}
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Query contains invalid parameters", errs)
		return types.Date{}, types.Date{}, false
	}
	return from, to, true
}

func nonNil(logs []types.DailyLog) []types.DailyLog {
	if logs == nil {
		return []types.DailyLog{}
	}
	return logs
}

type goalsResponse struct {
	Goals        types.WeeklyGoals  `json:"goals"`
	VacationMode types.VacationMode `json:"vacationMode"`
}

// GetGoals handles GET /api/v1/goals
func (h *Handler) GetGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, goalsResponse{
		Goals:        h.app.Goals(),
		VacationMode: h.app.VacationMode(),
	})
}

// PatchGoals handles PATCH /api/v1/goals
func (h *Handler) PatchGoals(w http.ResponseWriter, r *http.Request) {
	var u types.GoalsUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	g, err := h.app.UpdateGoals(r.Context(), u)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// ResetGoals handles POST /api/v1/goals/reset
func (h *Handler) ResetGoals(w http.ResponseWriter, r *http.Request) {
	if err := h.app.ResetGoals(r.Context()); err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Goals())
}

type vacationRequest struct {
	IsActive *bool `json:"isActive"`
}

// SetVacation handles POST /api/v1/goals/vacation. Without isActive the
// switch is toggled.
func (h *Handler) SetVacation(w http.ResponseWriter, r *http.Request) {
	var req vacationRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	var (
		vm  types.VacationMode
		err error
	)
	if req.IsActive == nil {
		vm, err = h.app.ToggleVacationMode(r.Context())
	} else {
		vm, err = h.app.SetVacationMode(r.Context(), *req.IsActive)
	}
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

// GetStreaks handles GET /api/v1/streaks
func (h *Handler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	s, err := h.app.Streaks(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
