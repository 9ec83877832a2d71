package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vedran77/switchboard/internal/config"
	"github.com/vedran77/switchboard/internal/logging"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "switchboard",
		Short:        "Account API with a WebSocket broadcast relay",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "YAML config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads configuration for cmd, whose flag set must carry the
// flags from config.RegisterFlags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(cmd.Flags(), path)
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.Setup(logging.Options{
		Service: "switchboard",
		Version: version,
		Format:  cfg.LogFormat,
		Debug:   cfg.Debug,
		Writer:  cmd.ErrOrStderr(),
	})
}
