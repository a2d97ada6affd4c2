package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/study-tracker/internal/analytics"
	infra "github.com/pot-code/study-tracker/internal/infrastructure"
	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
	"github.com/pot-code/study-tracker/internal/infrastructure/pubsub"
	"github.com/pot-code/study-tracker/internal/infrastructure/uuid"
	"github.com/pot-code/study-tracker/internal/session"
	"github.com/pot-code/study-tracker/internal/todo"
	"github.com/pot-code/study-tracker/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var today = time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)

func testConfig() *infra.AppConfig {
	option := new(infra.AppConfig)
	option.Env = infra.EnvProduction
	option.Locale = "en"
	option.RequestTimeout = 5 * time.Second
	return option
}

func newTestServer(t *testing.T, option *infra.AppConfig) *echo.Echo {
	t.Helper()
	ctx := context.Background()
	conn, err := driver.NewSQLiteConn(driver.MemoryDSN, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(ctx) })
	require.NoError(t, driver.Migrate(ctx, conn))

	broker := pubsub.NewBroker()
	kv := driver.NewMemoryKV()
	sessions := session.NewSessionUseCase(conn,
		session.NewSessionRepository(conn),
		user.NewUserUseCase(user.NewUserRepository(conn)),
		&uuid.SequenceGenerator{IDs: []string{"s1", "s2", "s3"}},
		broker)
	summary := analytics.NewAnalyticsUseCase(sessions, time.UTC)
	summary.Now = func() time.Time { return today }

	return NewServer(option, &Dependencies{
		Conn:             conn,
		KV:               kv,
		Broker:           broker,
		SessionUseCase:   sessions,
		AnalyticsUseCase: summary,
		TodoUseCase:      todo.NewTodoUseCase(todo.NewTodoRepository(kv), &uuid.SequenceGenerator{IDs: []string{"t1", "t2"}}),
	}, zap.NewNop())
}

func do(app http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type validationBody struct {
	Code          int    `json:"code"`
	Title         string `json:"title"`
	TraceID       string `json:"trace_id"`
	InvalidParams []struct {
		Domain string `json:"domain"`
		Reason string `json:"reason"`
	} `json:"invalid_params"`
}

func (vb validationBody) domains() []string {
	var result []string
	for _, p := range vb.InvalidParams {
		result = append(result, p.Domain)
	}
	return result
}

const aliceSession = `{"userId":"alice","subject":"Maths","category":"science",
	"startedAt":"2024-03-07T09:00:00Z","endedAt":"2024-03-07T09:25:00Z","durationMin":25}`

func TestHealth(t *testing.T) {
	app := newTestServer(t, testConfig())

	rec := do(app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessions_CreateListDelete(t *testing.T) {
	app := newTestServer(t, testConfig())

	rec := do(app, http.MethodPost, "/api/sessions", aliceSession)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	var created map[string]interface{}
	decode(t, rec, &created)
	assert.Equal(t, "s1", created["id"])
	assert.Equal(t, "alice", created["userId"])
	assert.Equal(t, "science", created["category"])
	assert.Nil(t, created["notes"])
	assert.EqualValues(t, 25, created["durationMin"])
	assert.Equal(t, "2024-03-07T09:00:00Z", created["startedAt"])

	rec = do(app, http.MethodPost, "/api/sessions",
		`{"userId":"bob","subject":"History","startedAt":"2024-03-06T09:00:00Z","endedAt":"2024-03-06T10:00:00Z","durationMin":60}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sessions []map[string]interface{}
	rec = do(app, http.MethodGet, "/api/sessions?userId=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0]["id"])

	rec = do(app, http.MethodGet, "/api/sessions", "")
	decode(t, rec, &sessions)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0]["id"], "most recently started first")

	rec = do(app, http.MethodGet, "/api/sessions?userId=nobody", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(app, http.MethodDelete, "/api/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(app, http.MethodDelete, "/api/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var notFound validationBody
	decode(t, rec, &notFound)
	assert.Equal(t, http.StatusNotFound, notFound.Code)
	assert.Equal(t, "Not Found", notFound.Title)
	assert.NotEmpty(t, notFound.TraceID)
}

func TestSessions_CreateInvalid(t *testing.T) {
	app := newTestServer(t, testConfig())

	tests := []struct {
		name    string
		body    string
		domains []string
	}{
		{
			name:    "empty user",
			body:    `{"userId":"","subject":"Maths","startedAt":"2024-03-07T09:00:00Z","endedAt":"2024-03-07T09:25:00Z","durationMin":25}`,
			domains: []string{"userId"},
		},
		{
			name:    "negative duration",
			body:    `{"userId":"alice","subject":"Maths","startedAt":"2024-03-07T09:00:00Z","endedAt":"2024-03-07T09:25:00Z","durationMin":-1}`,
			domains: []string{"durationMin"},
		},
		{
			name:    "fractional duration",
			body:    `{"userId":"alice","subject":"Maths","startedAt":"2024-03-07T09:00:00Z","endedAt":"2024-03-07T09:25:00Z","durationMin":2.5}`,
			domains: []string{"durationMin"},
		},
		{
			name:    "every missing field",
			body:    `{}`,
			domains: []string{"userId", "subject", "startedAt", "endedAt", "durationMin"},
		},
		{
			name:    "bad timestamp",
			body:    `{"userId":"alice","subject":"Maths","startedAt":"soon","endedAt":"2024-03-07T09:25:00Z","durationMin":25}`,
			domains: []string{"startedAt"},
		},
		{
			name:    "wrong type",
			body:    `{"userId":"alice","subject":"Maths","startedAt":"2024-03-07T09:00:00Z","endedAt":"2024-03-07T09:25:00Z","durationMin":"25"}`,
			domains: []string{"durationMin"},
		},
		{
			name:    "wrong type with missing fields",
			body:    `{"userId":"","subject":"","startedAt":"2024-03-07T09:00:00Z","endedAt":"2024-03-07T09:25:00Z","durationMin":"25"}`,
			domains: []string{"userId", "subject", "durationMin"},
		},
		{
			name:    "duration overflows column",
			body:    `{"userId":"alice","subject":"Maths","startedAt":"2024-03-07T09:00:00Z","endedAt":"2024-03-07T09:25:00Z","durationMin":1e20}`,
			domains: []string{"durationMin"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, http.MethodPost, "/api/sessions", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var body validationBody
			decode(t, rec, &body)
			assert.ElementsMatch(t, tt.domains, body.domains())
		})
	}

	rec := do(app, http.MethodPost, "/api/sessions", `{"userId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(app, http.MethodGet, "/api/sessions", "")
	assert.JSONEq(t, `[]`, rec.Body.String(), "rejected submissions write nothing")
}

type unavailableSessions struct {
	session.SessionUseCase
}

func (unavailableSessions) List(ctx context.Context, userID string) ([]*session.SessionModel, error) {
	return nil, fmt.Errorf("%w: dial tcp 10.0.0.7:5432: connect: connection refused", session.ErrStoreUnavailable)
}

func TestStoreUnavailable_GenericDetail(t *testing.T) {
	app := NewServer(testConfig(), &Dependencies{SessionUseCase: unavailableSessions{}}, zap.NewNop())

	rec := do(app, http.MethodGet, "/api/sessions?userId=alice", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		Code    int    `json:"code"`
		Detail  string `json:"detail"`
		TraceID string `json:"trace_id"`
	}
	decode(t, rec, &body)
	assert.Equal(t, http.StatusInternalServerError, body.Code)
	assert.Equal(t, "internal error", body.Detail)
	assert.NotEmpty(t, body.TraceID)
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")
}

func TestAnalyticsSummary(t *testing.T) {
	app := newTestServer(t, testConfig())

	for _, body := range []string{
		aliceSession,
		`{"userId":"alice","subject":"Physics","startedAt":"2024-03-05T20:00:00Z","endedAt":"2024-03-05T20:45:00Z","durationMin":45}`,
		`{"userId":"alice","subject":"Old","startedAt":"2024-02-20T20:00:00Z","endedAt":"2024-02-20T20:45:00Z","durationMin":999}`,
	} {
		rec := do(app, http.MethodPost, "/api/sessions", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(app, http.MethodGet, "/api/analytics/summary?userId=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary analytics.WeeklySummary
	decode(t, rec, &summary)

	require.Len(t, summary.ByDay, 7)
	assert.Equal(t, "2024-03-01", summary.ByDay[0].Date)
	assert.Equal(t, analytics.DailyBucket{Date: "2024-03-05", Minutes: 45}, summary.ByDay[4])
	assert.Equal(t, analytics.DailyBucket{Date: "2024-03-07", Minutes: 25}, summary.ByDay[6])
	assert.Equal(t, 70, summary.TotalThisWeek)
	assert.Equal(t, 1, summary.StreakDays)

	rec = do(app, http.MethodGet, "/api/analytics/summary?userId=bob", "")
	decode(t, rec, &summary)
	assert.Equal(t, 0, summary.TotalThisWeek)
	assert.Len(t, summary.ByDay, 7)
}

func TestRequireUserID(t *testing.T) {
	option := testConfig()
	option.API.RequireUserID = true
	app := newTestServer(t, option)

	for _, path := range []string{"/api/sessions", "/api/analytics/summary"} {
		rec := do(app, http.MethodGet, path, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		var body validationBody
		decode(t, rec, &body)
		assert.Equal(t, []string{"userId"}, body.domains())
	}

	rec := do(app, http.MethodGet, "/api/sessions?userId=alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTodos(t *testing.T) {
	app := newTestServer(t, testConfig())

	rec := do(app, http.MethodGet, "/api/todos?userId=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(app, http.MethodPost, "/api/todos", `{"userId":"alice","text":"  flashcards "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item todo.TodoModel
	decode(t, rec, &item)
	assert.Equal(t, "t1", item.ID)
	assert.Equal(t, "flashcards", item.Text)

	rec = do(app, http.MethodPost, "/api/todos", `{"userId":"alice","text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(app, http.MethodPatch, "/api/todos/t1?userId=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &item)
	assert.True(t, item.Done)

	rec = do(app, http.MethodPatch, "/api/todos/missing?userId=alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(app, http.MethodGet, "/api/todos", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(app, http.MethodDelete, "/api/todos/t1?userId=alice", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(app, http.MethodDelete, "/api/todos/t1?userId=alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestServer(t, testConfig())

	rec := do(app, http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body validationBody
	decode(t, rec, &body)
	assert.Equal(t, http.StatusNotFound, body.Code)
}

func TestSummaryStream(t *testing.T) {
	app := newTestServer(t, testConfig())
	server := httptest.NewServer(app)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws/summary?userId=alice"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var summary analytics.WeeklySummary
	require.NoError(t, conn.ReadJSON(&summary))
	assert.Len(t, summary.ByDay, 7)
	assert.Equal(t, 0, summary.TotalThisWeek)

	resp, err := http.Post(server.URL+"/api/sessions", echo.MIMEApplicationJSON, strings.NewReader(aliceSession))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.ReadJSON(&summary))
	assert.Equal(t, 25, summary.TotalThisWeek)
	assert.Equal(t, 1, summary.StreakDays)
}
