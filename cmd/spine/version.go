package main

import (
	"fmt"

	"github.com/spf13/cobra"

	spine "github.com/fabianoP/spine-engine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of spine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spine version %s\n", spine.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
