package main

import (
	"fmt"
	"os"

	"github.com/millrace/flume/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured domains once",
	Long:  `Executes one batch: selects domains by the active filters, runs each pipeline and prints the per-domain report.`,
	Run: func(cmd *cobra.Command, args []string) {
		domains, _ := cmd.Flags().GetStringSlice("domains")
		strict, _ := cmd.Flags().GetBool("strict")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		jsonMode, _ := cmd.Flags().GetBool("json")

		err := cli.Run(cli.RunOptions{
			ConfigPath: configPath(cmd, args),
			Domains:    domains,
			Strict:     strict,
			DryRun:     dryRun,
			JSON:       jsonMode,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceP("domains", "d", nil, "Run only these domain ids")
	runCmd.Flags().Bool("strict", false, "Abort at the first domain failure")
	runCmd.Flags().Bool("dry-run", false, "Show the selection without executing")
	runCmd.Flags().Bool("json", false, "Print the report as JSON")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}
