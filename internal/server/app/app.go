// Package app собирает сервер users-api и управляет его жизненным циклом.
//
// Порядок старта:
//  1. provision — база данных создаётся, если её ещё нет (ошибка фатальна);
//  2. connect — пул соединений к базе;
//  3. migrate — встроенные миграции (если включены);
//  4. сборка репозиториев, сервисов, хендлеров и роутера;
//  5. HTTP-сервер до сигнала остановки, затем graceful shutdown и disconnect.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/api"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/config"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/middleware"
	h "github.com/IvanChernomyrdin/go-users-api/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/provision"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/repository"
	"github.com/IvanChernomyrdin/go-users-api/internal/server/service"
	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
)

// App — собранный сервер.
type App struct {
	cfg    *config.Config
	log    *logger.HTTPLogger
	store  *repository.Client
	server *http.Server
}

// Provision гарантирует существование базы из DATABASE_URL.
// Вызывается один раз до подключения пула, без повторов.
func Provision(ctx context.Context, cfg *config.Config, log *logger.HTTPLogger) error {
	return provision.EnsureDatabase(ctx, cfg.DB.URL, cfg.DB.AdminURL, provision.Options{
		Timeout:       cfg.DB.ProvisionTimeout,
		MaintenanceDB: cfg.DB.MaintenanceDB,
		Logger:        log,
	})
}

// New выполняет шаги старта 1-4. При ошибке после connect соединение закрывается.
func New(ctx context.Context, cfg *config.Config, log *logger.HTTPLogger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	if err := Provision(ctx, cfg, log); err != nil {
		return nil, err
	}

	store := repository.NewClient(cfg.DB, log)
	if err := store.Connect(ctx); err != nil {
		return nil, err
	}

	if cfg.Migrations.Enabled {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Disconnect()
			return nil, err
		}
	}

	a, err := Build(cfg, log, store)
	if err != nil {
		_ = store.Disconnect()
		return nil, err
	}
	return a, nil
}

// Build связывает уже подключённое хранилище с HTTP-слоем.
func Build(cfg *config.Config, log *logger.HTTPLogger, store *repository.Client) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	hasher, err := crypto.NewHasher(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("app.Build: %w", err)
	}

	// создаём репы
	repos := service.Repositories{
		Users:  repository.NewUsersRepository(store.DB()),
		Health: store,
	}
	// создаём сервисы
	svc := service.NewServices(repos, hasher, cfg, log)
	// создаём хандлер
	handler := api.NewHandler(svc, log, cfg.Server.MaxBodyBytes)
	// создаём роутер
	router := h.NewRouter(handler, h.OptionsFromConfig(cfg, middleware.NewMetrics()))

	return &App{
		cfg:   cfg,
		log:   log,
		store: store,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
			MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		},
	}, nil
}

// Handler — корневой HTTP-обработчик (для тестов и встраивания).
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Close закрывает соединение с базой без запуска сервера.
func (a *App) Close() error {
	return a.store.Disconnect()
}

// Run обслуживает запросы до отмены ctx, затем завершает сервер
// за ShutdownTimeout и закрывает соединение с базой.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.store.Disconnect(); err != nil {
			a.log.Warn("disconnect failed", zap.Error(err))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		a.log.Info("server started", zap.String("addr", a.server.Addr))

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		a.log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		return a.server.Shutdown(shutdownCtx)
	})

	// ожидание и единная обработка ошибок
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	a.log.Info("server gracefully stopped")
	return nil
}
