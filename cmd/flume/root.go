package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flume",
	Short: "Flume is a configuration-driven batch pipeline orchestrator",
	Long: `Flume runs independently configured data domains as one batch: selection by
tags and allow-lists, serial or concurrent execution, per-domain error
isolation and cron-style scheduling, all described in YAML.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "flume.yaml", "Configuration file or directory")
}

// configPath resolves the --config flag, letting a positional argument
// override the default.
func configPath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("config")
	if !cmd.Flags().Changed("config") && len(args) > 0 {
		path = args[0]
	}
	return path
}
