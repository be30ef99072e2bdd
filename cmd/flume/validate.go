package main

import (
	"fmt"
	"os"

	"github.com/millrace/flume/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for consistency",
	Long:  `Validates domain definitions, I/O descriptors, schedules and runner coverage without executing anything.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Validate(cli.ValidateOptions{ConfigPath: configPath(cmd, args)}); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
