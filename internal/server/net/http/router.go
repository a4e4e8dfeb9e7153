// Package http реализует маршрутизацию HTTP-слоя сервера users-api.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов и настройку роутера (chi);
//   - порядок подключения middleware (request id, логирование, метрики, паники, CORS, таймаут);
//   - служебные эндпоинты: health, /metrics, swagger.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/api"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/config"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/middleware"
)

// Options — параметры сборки роутера.
type Options struct {
	// Префикс версионированного API, например /api/v1
	APIPrefix string

	// Дедлайн на обработку запроса (0 — без дедлайна)
	RequestTimeout time.Duration

	// Разрешённые CORS-источники; пусто — CORS выключен
	CORSOrigins []string

	// Swagger UI на /swagger/*
	SwaggerEnabled bool

	// nil — метрики выключены
	Metrics     *middleware.Metrics
	MetricsPath string
}

// OptionsFromConfig собирает Options из конфига сервера.
func OptionsFromConfig(cfg *config.Config, metrics *middleware.Metrics) Options {
	opts := Options{
		APIPrefix:      cfg.Server.APIPrefix,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		SwaggerEnabled: cfg.Observability.Swagger.Enabled,
	}
	if cfg.Observability.Metrics.Enabled {
		opts.Metrics = metrics
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}
	return opts
}

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// Роутер использует chi.Router и регистрирует:
//   - /health/live и /health/ready вне версии API;
//   - CRUD пользователей под префиксом APIPrefix;
//   - /metrics и /swagger/* если они включены.
func NewRouter(h *api.Handler, opts Options) http.Handler {
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID())
	// логирование всех запросов, включая ответы Recover
	r.Use(middleware.LoggerMiddleware(h.Log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(middleware.Recover(h.Log))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderRequestID},
			ExposedHeaders: []string{middleware.HeaderRequestID},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.Timeout(opts.RequestTimeout))

	// добавляем swagger
	if opts.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, opts.MetricsPath, opts.Metrics.Handler())
	}

	// пробы
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	r.Route(opts.APIPrefix, func(r chi.Router) {
		r.Get("/", h.Root)
		// CRUD пользователей
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.CreateUser)       // создание
			r.Get("/", h.ListUsers)         // список с пагинацией ?page=&limit=
			r.Get("/{id}", h.GetUser)       // один пользователь
			r.Patch("/{id}", h.UpdateUser)  // частичное обновление
			r.Delete("/{id}", h.DeleteUser) // удаление
		})
	})

	return r
}
