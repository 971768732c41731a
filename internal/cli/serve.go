package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"ctchen222/tictactoe/internal/app"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/logger"
	"ctchen222/tictactoe/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// NewServeCmd runs the server. It is also the whole of the server binary.
func NewServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Long:  "Run the HTTP and websocket server.\n\nEnvironment variables:\n" + config.Usage(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return Serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "optional YAML config file")
	return cmd
}

// Serve runs the server until SIGINT or SIGTERM.
func Serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitOtel(ctx, cfg.Otel.Endpoint, cfg.Otel.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	gin.SetMode(app.GinMode(cfg.LogLevel))

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
