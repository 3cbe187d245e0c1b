package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperengineering/loopz/internal/app"
	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/metrics"
	"github.com/hyperengineering/loopz/internal/store"
	"github.com/hyperengineering/loopz/internal/types"
)

const testToday = "2024-03-13" // a Wednesday

// newTestServer wires the full router over an in-memory store pinned to testToday.
func newTestServer(t *testing.T, apiKey string) (*httptest.Server, *app.App) {
	t.Helper()
	captureLogs(t)
	a, err := app.Open(context.Background(), store.NewMemoryStore(), calendar.FixedClock(types.MustParseDate(testToday)))
	if err != nil {
		t.Fatalf("app.Open() error = %v", err)
	}
	srv := httptest.NewServer(NewRouter(NewHandler(a, apiKey, "test")))
	t.Cleanup(srv.Close)
	return srv, a
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, testAPIKey)

	// health stays public even with a key configured
	resp := do(t, srv, http.MethodGet, "/api/v1/health", "")
	expectStatus(t, resp, http.StatusOK)

	h := decode[types.HealthResponse](t, resp)
	if h.Status != "healthy" || h.Version != "test" {
		t.Errorf("health = %+v", h)
	}
	if h.MetricCount != len(metrics.SystemMetrics()) {
		t.Errorf("metric_count = %d, want %d", h.MetricCount, len(metrics.SystemMetrics()))
	}
}

func TestProtectedRoutesRequireKey(t *testing.T) {
	srv, _ := newTestServer(t, testAPIKey)

	resp := do(t, srv, http.MethodGet, "/api/v1/goals", "")
	expectStatus(t, resp, http.StatusUnauthorized)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/goals", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	ok, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer ok.Body.Close()
	expectStatus(t, ok, http.StatusOK)
}

func TestGetLog_DefaultWhenMissing(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := do(t, srv, http.MethodGet, "/api/v1/logs/2024-03-01", "")
	expectStatus(t, resp, http.StatusOK)

	view := decode[types.LogView](t, resp)
	if view.Persisted {
		t.Error("missing log reported as persisted")
	}
	if view.MoodScore != types.DefaultMoodScore || view.Date.String() != "2024-03-01" {
		t.Errorf("view = %+v", view)
	}
}

func TestPutLog_ThenGet(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := do(t, srv, http.MethodPut, "/api/v1/logs/"+testToday,
		`{"buildingMinutes":90,"drinks":1.5,"moodScore":80,"reflection":"shipped it"}`)
	expectStatus(t, resp, http.StatusOK)
	saved := decode[types.DailyLog](t, resp)
	if saved.BuildingMinutes != 90 || saved.Drinks != 1.5 || saved.Reflection != "shipped it" {
		t.Errorf("saved = %+v", saved)
	}

	// a second partial update keeps the first one's fields
	resp = do(t, srv, http.MethodPut, "/api/v1/logs/"+testToday, `{"marketingMinutes":15}`)
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodGet, "/api/v1/logs/"+testToday, "")
	expectStatus(t, resp, http.StatusOK)
	view := decode[types.LogView](t, resp)
	if !view.Persisted || view.BuildingMinutes != 90 || view.MarketingMinutes != 15 {
		t.Errorf("view = %+v", view)
	}

	// today's entry starts both streaks
	resp = do(t, srv, http.MethodGet, "/api/v1/streaks", "")
	expectStatus(t, resp, http.StatusOK)
	s := decode[types.StreakData](t, resp)
	if s.CurrentLoggingStreak != 1 || s.CurrentBuildingStreak != 1 {
		t.Errorf("streaks = %+v", s)
	}
}

func TestPutLog_Errors(t *testing.T) {
	srv, _ := newTestServer(t, "")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		field  string
	}{
		{"mood out of range", "/api/v1/logs/" + testToday, `{"moodScore":101}`, 422, "moodScore"},
		{"negative drinks", "/api/v1/logs/" + testToday, `{"drinks":-1}`, 422, "drinks"},
		{"empty update", "/api/v1/logs/" + testToday, `{}`, 422, "body"},
		{"malformed json", "/api/v1/logs/" + testToday, `{"moodScore":`, 400, ""},
		{"bad date", "/api/v1/logs/2024-02-30", `{"moodScore":10}`, 400, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, http.MethodPut, tt.path, tt.body)
			expectStatus(t, resp, tt.status)
			if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q", ct)
			}
			p := decode[ProblemWithErrors](t, resp)
			if tt.field != "" && (len(p.Errors) == 0 || p.Errors[0].Field != tt.field) {
				t.Errorf("errors = %+v, want field %q", p.Errors, tt.field)
			}
		})
	}
}

func TestPutMetricValue(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := do(t, srv, http.MethodPut, "/api/v1/logs/2024-03-11/metrics/"+metrics.IDDrinks, `{"value":2}`)
	expectStatus(t, resp, http.StatusOK)
	l := decode[types.DailyLog](t, resp)
	if l.Drinks != 2 {
		t.Errorf("drinks = %v, want 2 (system metric writes the linked field)", l.Drinks)
	}

	resp = do(t, srv, http.MethodPut, "/api/v1/logs/2024-03-11/metrics/custom_nope", `{"value":2}`)
	expectStatus(t, resp, http.StatusNotFound)

	resp = do(t, srv, http.MethodPut, "/api/v1/logs/2024-03-11/metrics/"+metrics.IDDrinks, `{}`)
	expectStatus(t, resp, http.StatusUnprocessableEntity)

	resp = do(t, srv, http.MethodPut, "/api/v1/logs/2024-03-11/metrics/"+metrics.IDExercise, `{"value":12.5}`)
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	resp = do(t, srv, http.MethodGet, "/api/v1/logs/2024-03-11", "")
	if view := decode[types.LogView](t, resp); view.WorkoutMinutes != 0 {
		t.Errorf("workoutMinutes = %d after rejected value, want 0", view.WorkoutMinutes)
	}
}

func TestListLogs(t *testing.T) {
	srv, _ := newTestServer(t, "")

	for _, date := range []string{"2024-03-09", "2024-03-11", "2024-03-12"} {
		expectStatus(t, do(t, srv, http.MethodPut, "/api/v1/logs/"+date, `{"workoutMinutes":30}`), http.StatusOK)
	}

	resp := do(t, srv, http.MethodGet, "/api/v1/logs?from=2024-03-10&to=2024-03-12", "")
	expectStatus(t, resp, http.StatusOK)
	logs := decode[[]types.DailyLog](t, resp)
	if len(logs) != 2 || logs[0].Date.String() != "2024-03-11" {
		t.Errorf("logs = %+v", logs)
	}

	resp = do(t, srv, http.MethodGet, "/api/v1/logs?from=2025-01-01&to=2025-01-31", "")
	expectStatus(t, resp, http.StatusOK)
	if body := decode[[]types.DailyLog](t, resp); body == nil || len(body) != 0 {
		t.Errorf("empty range = %v, want []", body)
	}

	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/logs?from=2024-03-12&to=2024-03-10", ""), http.StatusBadRequest)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/logs?from=yesterday", ""), http.StatusUnprocessableEntity)

	resp = do(t, srv, http.MethodGet, "/api/v1/logs/year/2024", "")
	expectStatus(t, resp, http.StatusOK)
	if year := decode[[]types.DailyLog](t, resp); len(year) != 3 {
		t.Errorf("year logs = %d, want 3", len(year))
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/logs/week/2024-03-13", 2},
		{"/api/v1/logs/week/2024-03-10", 1},
		{"/api/v1/logs/month/2024/3", 3},
		{"/api/v1/logs/month/2024/2", 0},
	}
	for _, tt := range tests {
		resp := do(t, srv, http.MethodGet, tt.path, "")
		expectStatus(t, resp, http.StatusOK)
		if got := decode[[]types.DailyLog](t, resp); got == nil || len(got) != tt.want {
			t.Errorf("%s: %d logs, want %d", tt.path, len(got), tt.want)
		}
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/logs/month/2024/13", ""), http.StatusBadRequest)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/logs/week/2024-13-01", ""), http.StatusBadRequest)
}

func TestGoals_PatchAndReset(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := do(t, srv, http.MethodPatch, "/api/v1/goals", `{"buildingHours":10,"maxDrinks":5}`)
	expectStatus(t, resp, http.StatusOK)
	g := decode[types.WeeklyGoals](t, resp)
	if g.BuildingHours != 10 || g.MaxDrinks == nil || *g.MaxDrinks != 5 {
		t.Errorf("goals = %+v", g)
	}

	expectStatus(t, do(t, srv, http.MethodPatch, "/api/v1/goals", `{"workoutCount":8}`), http.StatusUnprocessableEntity)

	resp = do(t, srv, http.MethodGet, "/api/v1/goals", "")
	expectStatus(t, resp, http.StatusOK)
	got := decode[goalsResponse](t, resp)
	if got.Goals.BuildingHours != 10 || got.VacationMode.IsActive {
		t.Errorf("GET goals = %+v", got)
	}

	resp = do(t, srv, http.MethodPost, "/api/v1/goals/reset", "")
	expectStatus(t, resp, http.StatusOK)
	if reset := decode[types.WeeklyGoals](t, resp); reset != types.DefaultGoals() {
		t.Errorf("after reset = %+v", reset)
	}
}

func TestSetVacation(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := do(t, srv, http.MethodPost, "/api/v1/goals/vacation", "")
	expectStatus(t, resp, http.StatusOK)
	vm := decode[types.VacationMode](t, resp)
	if !vm.IsActive || vm.StartDate == nil || vm.StartDate.String() != testToday {
		t.Errorf("toggle on = %+v", vm)
	}

	resp = do(t, srv, http.MethodPost, "/api/v1/goals/vacation", `{"isActive":true}`)
	expectStatus(t, resp, http.StatusOK)
	if vm := decode[types.VacationMode](t, resp); !vm.IsActive {
		t.Errorf("explicit on = %+v", vm)
	}

	resp = do(t, srv, http.MethodPost, "/api/v1/goals/vacation", `{"isActive":false}`)
	expectStatus(t, resp, http.StatusOK)
	vm = decode[types.VacationMode](t, resp)
	if vm.IsActive || vm.EndDate == nil {
		t.Errorf("explicit off = %+v", vm)
	}
}

func TestMetrics_CRUD(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := do(t, srv, http.MethodPost, "/api/v1/metrics",
		`{"name":"Meditation","unitType":"minutes","category":"positive","weeklyGoal":70}`)
	expectStatus(t, resp, http.StatusCreated)
	m := decode[types.CustomMetric](t, resp)
	if !strings.HasPrefix(m.ID, metrics.CustomIDPrefix) || !m.IsActive || m.Color == "" {
		t.Fatalf("created = %+v", m)
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/metrics", `{"name":"","unitType":"furlongs","category":"positive"}`),
		http.StatusUnprocessableEntity)

	resp = do(t, srv, http.MethodGet, "/api/v1/metrics/"+m.ID, "")
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodPatch, "/api/v1/metrics/"+m.ID, `{"weeklyGoal":140}`)
	expectStatus(t, resp, http.StatusOK)
	if up := decode[types.CustomMetric](t, resp); up.WeeklyGoal != 140 || up.Name != "Meditation" {
		t.Errorf("updated = %+v", up)
	}

	resp = do(t, srv, http.MethodPost, "/api/v1/metrics/"+m.ID+"/toggle", "")
	expectStatus(t, resp, http.StatusOK)
	if tog := decode[types.CustomMetric](t, resp); tog.IsActive {
		t.Errorf("toggled metric still active")
	}

	resp = do(t, srv, http.MethodGet, "/api/v1/metrics?active=true", "")
	expectStatus(t, resp, http.StatusOK)
	for _, am := range decode[[]types.CustomMetric](t, resp) {
		if am.ID == m.ID {
			t.Error("inactive metric listed with active=true")
		}
	}

	expectStatus(t, do(t, srv, http.MethodDelete, "/api/v1/metrics/"+m.ID, ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/metrics/"+m.ID, ""), http.StatusNotFound)

	// system metrics are deactivated, not removed
	expectStatus(t, do(t, srv, http.MethodDelete, "/api/v1/metrics/"+metrics.IDDrinks, ""), http.StatusNoContent)
	resp = do(t, srv, http.MethodGet, "/api/v1/metrics/"+metrics.IDDrinks, "")
	expectStatus(t, resp, http.StatusOK)
	if sys := decode[types.CustomMetric](t, resp); sys.IsActive {
		t.Error("deleted system metric still active")
	}
}

func TestReports(t *testing.T) {
	srv, _ := newTestServer(t, "")

	expectStatus(t, do(t, srv, http.MethodPut, "/api/v1/logs/2024-03-11", `{"buildingMinutes":60}`), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodPut, "/api/v1/logs/2024-03-12", `{"buildingMinutes":30,"workoutMinutes":45}`), http.StatusOK)

	resp := do(t, srv, http.MethodGet, "/api/v1/totals?from=2024-03-11&to=2024-03-17", "")
	expectStatus(t, resp, http.StatusOK)
	totals := decode[map[string]any](t, resp)
	if totals["buildingMinutes"] != float64(90) || totals["daysLogged"] != float64(2) {
		t.Errorf("totals = %v", totals)
	}

	resp = do(t, srv, http.MethodGet, "/api/v1/totals?scope=all", "")
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodGet, "/api/v1/weeks/"+testToday+"/progress", "")
	expectStatus(t, resp, http.StatusOK)
	week := decode[app.WeekReport](t, resp)
	if week.WeekStart.String() != "2024-03-11" || week.WeekEnd.String() != "2024-03-17" || week.Totals.BuildingMinutes != 90 {
		t.Errorf("week = %+v", week)
	}

	resp = do(t, srv, http.MethodGet, "/api/v1/years/2024/summary", "")
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodGet, "/api/v1/years/2024/calendar", "")
	expectStatus(t, resp, http.StatusOK)
	cal := decode[app.YearCalendar](t, resp)
	march := cal.Months[2].Weeks
	if cal.Year != 2024 || len(cal.Months) != 12 || len(march) != 4 {
		t.Fatalf("calendar = year %d, %d months, %d march weeks", cal.Year, len(cal.Months), len(march))
	}
	if w := march[1]; w.WeekStart.String() != "2024-03-11" || !w.HasData || w.IsFuture {
		t.Errorf("current week cell = %+v", w)
	}
	if !march[2].IsFuture {
		t.Errorf("week of %s should be in the future", march[2].WeekStart)
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/years/0/calendar", ""), http.StatusBadRequest)

	resp = do(t, srv, http.MethodGet, "/api/v1/charts", "")
	expectStatus(t, resp, http.StatusOK)
	list := decode[[]map[string]any](t, resp)
	if len(list) == 0 || list[0]["id"] != app.ChartBuilding {
		t.Errorf("chart metrics = %v", list)
	}

	resp = do(t, srv, http.MethodGet, "/api/v1/charts/14d/"+app.ChartBuilding, "")
	expectStatus(t, resp, http.StatusOK)
	chart := decode[map[string]any](t, resp)
	if chart["total"] != float64(90) || chart["range"] != "14d" {
		t.Errorf("chart = %v", chart)
	}
	if labels, _ := chart["labels"].([]any); len(labels) != 14 {
		t.Errorf("labels = %d, want 14", len(labels))
	}

	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/charts/5y/"+app.ChartBuilding, ""), http.StatusBadRequest)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/charts/14d/nope", ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/years/0/summary", ""), http.StatusBadRequest)
}
