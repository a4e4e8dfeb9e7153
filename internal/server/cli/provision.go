package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-users-api/internal/server/app"
)

// NewProvisionCmd создаёт команду, которая только гарантирует наличие базы.
// Удобно для init-контейнеров и первичной установки.
func NewProvisionCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Создать базу данных, если её нет",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := a.loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := app.Provision(cmd.Context(), cfg, log); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "database is ready")
			return nil
		},
	}
}
