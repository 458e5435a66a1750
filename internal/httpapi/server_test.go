package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"taskagent/internal/repository"
	"taskagent/internal/service"
)

var testDBSeq atomic.Int64

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dsn := fmt.Sprintf("file:api_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := repository.NewDB(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	taskRepo := repository.NewTaskRepository(db)
	compRepo := repository.NewCompletionRepository(db)
	hiddenRepo := repository.NewHiddenDateRepository(db)

	tasks := service.NewTaskService(taskRepo, hiddenRepo)
	overlay := service.NewCompletionService(compRepo, hiddenRepo)
	timers := service.NewTimerService(taskRepo, compRepo)
	watchdog := service.NewTimerWatchdog(taskRepo, compRepo, timers, zerolog.Nop())
	clients := service.NewClientService(repository.NewClientRepository(db))
	projects := service.NewProjectService(repository.NewProjectRepository(db))
	reports := service.NewReportService(repository.NewReportRepository(db))

	return NewServer(zerolog.Nop(), tasks, overlay, timers, watchdog, clients, projects, reports)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createTask(t *testing.T, s *Server, body string) uint {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/tasks", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return uint(decode(t, rec)["id"].(float64))
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/tasks", `{"notes":"no title"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec)["error"], "title")

	rec = do(t, s, http.MethodPost, "/tasks", `{"title":"x","is_recurring":true,"recurrence_type":"hourly"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/tasks", `{"title":"x","start_date":"31/12/2025"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksByDate(t *testing.T) {
	s := newTestServer(t)
	createTask(t, s, `{"title":"daily","is_recurring":true,"recurrence_type":"daily","start_date":"2025-06-01"}`)
	createTask(t, s, `{"title":"later","start_date":"2025-07-01"}`)

	rec := do(t, s, http.MethodGet, "/tasks?date=2025-06-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, "daily", tasks[0]["title"])

	rec = do(t, s, http.MethodGet, "/tasks?date=junk", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimerFlow(t *testing.T) {
	s := newTestServer(t)
	id := createTask(t, s, `{"title":"focus","start_date":"2025-06-02"}`)

	rec := do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/start", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "started", decode(t, rec)["status"])

	// A second start conflicts instead of resetting the window.
	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/start", id), "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "timer already running", decode(t, rec)["error"])

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/stop", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "stopped", body["status"])
	require.Contains(t, body, "time_spent")
}

func TestRecurringTimerFlow(t *testing.T) {
	s := newTestServer(t)
	id := createTask(t, s, `{"title":"standup","is_recurring":true,"recurrence_type":"daily","start_date":"2025-06-01"}`)

	rec := do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/start-recurring", id), `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, "occurrence date is required")

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/start-recurring", id), `{"completion_date":"2025-06-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/start-recurring", id), `{"completion_date":"2025-06-02"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/stop-recurring", id), `{"completion_date":"2025-06-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, decode(t, rec), "time_spent")

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/continue-timer", id), `{"completion_date":"2025-06-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "continued", decode(t, rec)["status"])
}

func TestCompletionOverlayEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := createTask(t, s, `{"title":"standup","is_recurring":true,"recurrence_type":"daily","start_date":"2025-06-01"}`)

	rec := do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/complete-recurring", id), `{"date":"2025-06-03"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["success"])

	rec = do(t, s, http.MethodGet, "/recurring-completions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var comps []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comps))
	require.Len(t, comps, 1)
	require.Equal(t, "2025-06-03", comps[0]["completion_date"])

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/uncomplete-recurring", id), `{"date":"2025-06-03"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/recurring-completions", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comps))
	require.Empty(t, comps)

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/hide-recurring", id), `{"date":"2025-06-04"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hidden", decode(t, rec)["status"])

	rec = do(t, s, http.MethodGet, "/hidden-dates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hidden []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hidden))
	require.Len(t, hidden, 1)

	// The hidden occurrence disappears from the date view.
	rec = do(t, s, http.MethodGet, "/tasks?date=2025-06-04", "")
	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Empty(t, tasks)

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/complete-recurring", id), `{"date":"04.06.2025"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndRecurrenceAndDelete(t *testing.T) {
	s := newTestServer(t)
	id := createTask(t, s, `{"title":"standup","is_recurring":true,"recurrence_type":"daily","start_date":"2025-06-01"}`)

	rec := do(t, s, http.MethodDelete, fmt.Sprintf("/tasks/%d/end-recurrence?end_date=2025-06-10", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ended", decode(t, rec)["status"])

	rec = do(t, s, http.MethodGet, "/tasks?date=2025-06-11", "")
	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Empty(t, tasks)

	// delete_all and plain delete run the same removal.
	rec = do(t, s, http.MethodDelete, fmt.Sprintf("/tasks/%d?delete_all=true", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "deleted", decode(t, rec)["status"])

	rec = do(t, s, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not found", decode(t, rec)["error"])
}

func TestMoveAndCopy(t *testing.T) {
	s := newTestServer(t)
	id := createTask(t, s, `{"title":"dentist","start_date":"2025-06-09"}`)

	rec := do(t, s, http.MethodPut, fmt.Sprintf("/tasks/%d/move", id), `{"newDate":"2025-06-10"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2025-06-10", decode(t, rec)["newDate"])

	rec = do(t, s, http.MethodPut, fmt.Sprintf("/tasks/%d/move", id), `{"newDate":"next week"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/copy", id), `{"newDate":"2025-06-12"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	copyID := uint(decode(t, rec)["id"].(float64))
	require.NotEqual(t, id, copyID)

	rec = do(t, s, http.MethodPut, "/tasks/99999/move", `{"newDate":"2025-06-10"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPut, "/tasks/abc/move", `{"newDate":"2025-06-10"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientAndProjectEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/clients", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	clientID := uint(decode(t, rec)["id"].(float64))

	rec = do(t, s, http.MethodPost, "/projects", fmt.Sprintf(`{"name":"Site","client_id":%d}`, clientID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/projects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var projects []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	require.Len(t, projects, 1)

	// Deleting the client leaves the project without one.
	rec = do(t, s, http.MethodDelete, fmt.Sprintf("/clients/%d", clientID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/projects", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	require.Len(t, projects, 1)
	require.Nil(t, projects[0]["client_id"])

	rec = do(t, s, http.MethodPost, "/clients", `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := createTask(t, s, `{"title":"focus","start_date":"2025-06-02"}`)

	rec := do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/start", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, fmt.Sprintf("/tasks/%d/stop", id), "")
	require.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{
		"/reports/time?period=today",
		"/reports/time?start_date=2025-06-01&end_date=2025-06-30",
		"/reports/projects",
		"/reports/clients",
		"/reports/productivity",
	} {
		rec := do(t, s, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}
