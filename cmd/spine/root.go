package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spine",
	Short: "Spine is a DAG-workflow execution engine",
	Long: `Spine executes workflows described as directed acyclic graphs of work
items: a backward pass collects resources from successors, then a forward
pass runs the items in dependency order.`,
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
	rootCmd.PersistentFlags().String("file", "workflow.yaml", "Path to the workflow description")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
