package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
	shared "github.com/IvanChernomyrdin/go-users-api/internal/shared/models"
)

// входящий X-Request-Id пробрасывается в ответ и в контекст
func TestRequestID_KeepsIncoming(t *testing.T) {
	var seen string
	h := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "abc-123", seen)
	require.Equal(t, "abc-123", rr.Header().Get(middleware.HeaderRequestID))
}

// без заголовка генерируется UUID
func TestRequestID_Generates(t *testing.T) {
	var seen string
	h := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	require.Equal(t, seen, rr.Header().Get(middleware.HeaderRequestID))
}

// слишком длинный id заменяется своим
func TestRequestID_RejectsOversized(t *testing.T) {
	h := middleware.RequestID()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, strings.Repeat("a", 500))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	_, err := uuid.Parse(rr.Header().Get(middleware.HeaderRequestID))
	require.NoError(t, err)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var (
		deadline time.Time
		ok       bool
	)
	h := middleware.Timeout(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	var ok bool
	h := middleware.Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, ok)
}

// паника -> 500 в общем формате ошибки, стек в логе
func TestRecover_PanicBecomesJSON500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := &logger.HTTPLogger{Logger: zap.New(core)}

	h := middleware.RequestID()(middleware.Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, "rid")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "internal", resp.Error)
	require.Equal(t, "rid", resp.RequestID)
	require.NotContains(t, resp.Message, "boom")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "panic recovered", logs.All()[0].Message)
}

// счётчик использует шаблон маршрута chi, а не сырой путь
func TestMetrics_CountsByRoutePattern(t *testing.T) {
	m := middleware.NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, `http_requests_total{method="GET",route="/users/{id}",status="404"} 3`)
	require.Contains(t, body, "http_request_duration_seconds_bucket")
	require.NotContains(t, body, `route="/users/1"`)
}

// два экземпляра не конфликтуют при регистрации
func TestMetrics_IndependentRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		_ = middleware.NewMetrics()
		_ = middleware.NewMetrics()
	})
}
