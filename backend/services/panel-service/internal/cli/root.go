package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sensorpanel/backend/libs/logging"
	"sensorpanel/backend/services/panel-service/internal/app"
	"sensorpanel/backend/services/panel-service/internal/config"
	"sensorpanel/backend/services/panel-service/internal/display"
	"sensorpanel/backend/services/panel-service/internal/service"
)

type options struct {
	configPath string
}

// NewRootCommand builds the panel-service command tree. Without a
// sub-command it behaves like serve.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "panel-service",
		Short:         "Polls the measurements endpoint and shows the latest temperature and ozone readings",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config (falls back to CONFIG_FILE)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newOnceCommand(opts))
	rootCmd.AddCommand(newVersionCommand(version))
	return rootCmd
}

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the poller with the panel page, websocket feed and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newOnceCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single refresh and print the slot texts",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			defer application.Close()

			outcome, snap := application.RefreshOnce(cmd.Context())
			for _, slot := range display.Slots {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", slot, snap[slot])
			}
			if outcome == service.OutcomeFailed {
				return errors.New("refresh failed")
			}
			return nil
		},
	}
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the panel-service version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", version)
			return nil
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	application, logger, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	defer application.Close()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func bootstrap(opts *options) (*app.App, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(logging.Options{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		Service:  "panel-service",
	})
	if err != nil {
		return nil, nil, err
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		_ = logger.Sync()
		return nil, nil, err
	}
	return application, logger, nil
}
