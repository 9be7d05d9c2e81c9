/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cheetah-game-platform/realtime/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a configuration file with a generated API key and data directories
for captures and snapshots.

Examples:
  netcodec init
  netcodec init --config ./netcodec.yaml --data-dir ./data --print-key`,
	// The configuration does not exist yet, so skip the root setup
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Configuration already exists at %s (use --force to replace it)\n", configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(configPath, dataDir)
		if err != nil {
			return err
		}

		cmd.Printf("Configuration created at %s\n", configPath)
		cmd.Printf("Captures: %s\n", cfg.Capture.Dir)
		cmd.Printf("Snapshots: %s\n", cfg.Snapshots.Dir)
		if printKey {
			cmd.Printf("API Key: %s\n", cfg.Server.APIKey)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("data-dir", "d", "./data", "Directory for captures and snapshots")
	initCmd.Flags().Bool("force", false, "Replace an existing configuration")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
}
