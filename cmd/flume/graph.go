package main

import (
	"fmt"
	"os"

	"github.com/millrace/flume/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the domain lineage visualization",
	Long:  `Inspects the configuration and outputs a Mermaid diagram (graph TD) of the domains and the datasets they read and write.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Graph(cli.GraphOptions{ConfigPath: configPath(cmd, args)}); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
