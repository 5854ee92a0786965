package main

import (
	"errors"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/grimoireapp/grimoire-server/internal/config"
	"github.com/grimoireapp/grimoire-server/internal/di"
	"github.com/grimoireapp/grimoire-server/internal/di/providers"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
	"github.com/grimoireapp/grimoire-server/internal/logger"
	"github.com/grimoireapp/grimoire-server/internal/service"
)

func newInitDBCmd(flags *config.Flags) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the database and optionally a user",
		Long: `Create the SQLite schema in the data directory.

With --username and --password, also create that account with the default tags.
An existing username is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (username == "") != (password == "") {
				return errors.New("--username and --password must be given together")
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			injector := di.NewContainer(cfg)
			defer injector.Shutdown() //nolint:errcheck // closes the database

			if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
				return err
			}
			log := do.MustInvoke[*logger.Logger](injector)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database ready at %s\n", cfg.Storage.DatabasePath())

			if username == "" {
				return nil
			}

			authService, err := do.Invoke[*service.AuthService](injector)
			if err != nil {
				return err
			}

			user, err := authService.Register(cmd.Context(), service.Credentials{Username: username, Password: password})
			switch {
			case errors.Is(err, domainerrors.ErrAlreadyExists):
				log.Info("User already exists, skipping", "username", username)
				fmt.Fprintf(out, "User %q already exists\n", username)
				return nil
			case err != nil:
				return err
			}

			fmt.Fprintf(out, "Created user %q (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Create this user")
	cmd.Flags().StringVar(&password, "password", "", "Password for --username")
	return cmd
}
