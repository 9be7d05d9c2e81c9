/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/config"
	"github.com/cheetah-game-platform/realtime/pkg/di"
	"github.com/cheetah-game-platform/realtime/pkg/observability"
)

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

type envKey struct{}

// env is what PersistentPreRunE prepares for every command
type env struct {
	config   *config.Config
	logger   *zap.Logger
	registry *codec.Registry
}

func getEnv(cmd *cobra.Command) (*env, error) {
	e, ok := cmd.Context().Value(envKey{}).(*env)
	if !ok {
		return nil, errors.New("command environment not initialized")
	}
	return e, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netcodec",
	Short: "netcodec - binary codecs for realtime network records",
	Long: `netcodec encodes and decodes the relay's network records with compiled
positional codecs, inspects their wire layouts, reads capture logs and serves
the codec registry over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		logLevel, _ := cmd.Flags().GetString("log-level")

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logger, err := observability.SetupLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}

		if container == nil {
			return errors.New("dependency container not initialized")
		}
		reg, err := container.GetRegistryFactory()(logger)
		if err != nil {
			return fmt.Errorf("failed to build codec registry: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, envKey{}, &env{
			config:   cfg,
			logger:   logger,
			registry: reg,
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if e, err := getEnv(cmd); err == nil {
			_ = e.logger.Sync()
		}
	},
}

// loadConfig reads configPath, or the default path when it is empty. A missing
// default file yields the default configuration.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}
	configPath = config.GetDefaultConfigPath()
	if !config.ConfigExists(configPath) {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(configPath)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}
