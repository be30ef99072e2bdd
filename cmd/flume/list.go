package main

import (
	"fmt"
	"os"

	"github.com/millrace/flume/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured domains",
	Long:  `Prints every configured domain with its selection state, tags and resolved cron schedule.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.List(cli.ListOptions{ConfigPath: configPath(cmd, args)}); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
