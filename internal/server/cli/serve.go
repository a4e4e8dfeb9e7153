package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/app"
)

// NewServeCmd создаёт команду запуска сервера.
//
// Сервер работает до SIGINT, SIGTERM или SIGQUIT, после чего
// корректно завершается с таймаутом server.shutdown_timeout.
//
// Пример использования:
//
//	users-api serve --config ./configs/server.yaml
func NewServeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := a.loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			// создаём контекст, отменяемый сигналом
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			srv, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Sugar().Errorf("startup failed: %v", err)
				return err
			}
			return srv.Run(ctx)
		},
	}
}
