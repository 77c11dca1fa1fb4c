package main

import (
	"fmt"
	"os"
	"strconv"

	"appointment-scheduler/cmd/bootstrap"
	"appointment-scheduler/config"
	"appointment-scheduler/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.LoadConfig(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		bootstrap.SetupLogger(cfg.App.LogLevel)
		logrus.Info("Configuration loaded successfully")
		return cfg, nil
	}

	root := &cobra.Command{
		Use:           "appointment-scheduler",
		Short:         "Doctor appointment slot allocation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to the .env configuration file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Initialize application with all dependencies
			app, err := bootstrap.New(cfg)
			if err != nil {
				logrus.Errorf("Failed to initialize application: %v", err)
				return err
			}

			// Run the application
			app.Run()
			return nil
		},
	}

	root.AddCommand(serve, newMigrateCommand(loadConfig))
	return root
}

func newMigrateCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	run := func(fn func(*database.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := bootstrap.Migrate(cfg, fn); err != nil {
				logrus.Errorf("%v", err)
				return err
			}
			return nil
		}
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(m *database.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			logrus.Info("Migrations applied")
			return nil
		}),
	}

	down := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid steps %q", args[0])
				}
				steps = n
			}
			return run(func(m *database.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				logrus.Infof("Rolled back %d migration(s)", steps)
				return nil
			})(cmd, args)
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: run(func(m *database.Migrator) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
			return nil
		}),
	}

	migrateCmd.AddCommand(up, down, version)
	return migrateCmd
}
