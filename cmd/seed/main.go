package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/database"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/logging"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/seed"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var m seed.Manager

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the first TruckFlow manager",
		Long: `Connects with the server's DB_* settings, migrates the schema and
creates an active manager account. Does nothing if a manager already exists.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv(0)
			cfg := config.Load()
			logging.Setup(cfg.LogLevel)

			if err := database.Connect(cfg); err != nil {
				return err
			}
			defer database.Close(database.DB)

			if err := database.Migrate(database.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			user, err := seed.CreateManager(database.DB, m)
			if errors.Is(err, seed.ErrManagerExists) {
				fmt.Fprintln(cmd.OutOrStdout(), "manager already exists, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created manager %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&m.Name, "name", "", "manager display name")
	cmd.Flags().StringVar(&m.Email, "email", "", "login email")
	cmd.Flags().StringVar(&m.Password, "password", "", "initial password (min 8 chars)")
	cmd.Flags().StringVar(&m.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&m.Language, "lang", "en", "preferred language (en|el)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
