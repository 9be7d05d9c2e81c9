/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cheetah-game-platform/realtime/pkg/api"
	"github.com/cheetah-game-platform/realtime/pkg/capture"
	"github.com/cheetah-game-platform/realtime/pkg/config"
	"github.com/cheetah-game-platform/realtime/pkg/snapshot"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the netcodec REST API server. It lists codec layouts, encodes and
decodes records, and, when enabled in the configuration, stores snapshots and
records every request to a capture log.

Examples:
  netcodec serve
  netcodec serve --port 9000 --bind 0.0.0.0 --api-key mysecretkey
  netcodec serve --capture`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		applyServeFlags(cmd, e.config)

		if err := e.config.Validate(); err != nil {
			return err
		}
		if container == nil {
			return errors.New("dependency container not initialized")
		}

		opts := []api.Option{api.WithLogger(e.logger.Named("api"))}

		if e.config.Snapshots.Enabled {
			store, err := snapshot.Open(e.config.Snapshots.Dir, snapshot.WithSync(e.config.Snapshots.Sync))
			if err != nil {
				return fmt.Errorf("failed to open snapshot store: %w", err)
			}
			defer store.Close()
			opts = append(opts, api.WithSnapshots(store))
			e.logger.Info("snapshots enabled", zap.String("dir", e.config.Snapshots.Dir))
		}

		if e.config.Capture.Enabled {
			path, session := capture.SessionPath(e.config.Capture.Dir)
			writer, err := capture.NewWriter(capture.WriterConfig{
				FilePath:      path,
				FsyncInterval: e.config.Capture.FsyncInterval,
				BufferSize:    e.config.Capture.BufferSize,
			})
			if err != nil {
				return fmt.Errorf("failed to open capture log: %w", err)
			}
			defer writer.Close()
			opts = append(opts, api.WithRecorder(writer))
			e.logger.Info("capture enabled", zap.String("path", path), zap.Stringer("session", session))
		}

		server := container.GetServerFactory().CreateServer(e.registry, serverConfig(e.config.Server), opts...)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Printf("Starting netcodec server on %s:%d\n", e.config.Server.Bind, e.config.Server.Port)
		if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind server to (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key required in X-API-Key (overrides config)")
	serveCmd.Flags().Bool("capture", false, "Record every request to a capture log")
	serveCmd.Flags().Bool("snapshots", false, "Enable the snapshot store")
}

// applyServeFlags copies explicitly set flags over the configuration
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("bind") {
		cfg.Server.Bind, _ = flags.GetString("bind")
	}
	if flags.Changed("api-key") {
		cfg.Server.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("capture") {
		cfg.Capture.Enabled, _ = flags.GetBool("capture")
	}
	if flags.Changed("snapshots") {
		cfg.Snapshots.Enabled, _ = flags.GetBool("snapshots")
	}
}

func serverConfig(s config.Server) api.ServerConfig {
	return api.ServerConfig{
		Port:            s.Port,
		Bind:            s.Bind,
		APIKey:          s.APIKey,
		AllowedOrigins:  s.AllowedOrigins,
		MaxBodySize:     s.MaxBodySize,
		ShutdownTimeout: s.ShutdownTimeout,
	}
}
