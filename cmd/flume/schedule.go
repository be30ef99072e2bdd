package main

import (
	"fmt"
	"os"

	"github.com/millrace/flume/internal/cli"
	"github.com/millrace/flume/internal/env"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the scheduler daemon",
	Long: `Starts the background scheduler, firing each schedulable domain on its cron
trigger until interrupted. With --http it also serves the management API
(health, domains, jobs, manual runs, metrics).`,
	Run: func(cmd *cobra.Command, args []string) {
		httpAddr, _ := cmd.Flags().GetString("http")

		err := cli.Schedule(cli.ScheduleOptions{
			ConfigPath: configPath(cmd, args),
			HTTPAddr:   httpAddr,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().String("http", env.String("FLUME_HTTP_ADDR", ""), "Serve the management API on this address (e.g. :9090)")
}
