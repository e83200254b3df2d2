package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fabianoP/spine-engine/internal/adapters/process"
	"github.com/fabianoP/spine-engine/internal/adapters/yamlfile"
	"github.com/fabianoP/spine-engine/internal/presentation/graph"
	"github.com/fabianoP/spine-engine/pkg/registry"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the workflow graph visualization",
	Long:  `Loads the workflow description and outputs a Mermaid diagram (graph TD) of the forward DAG.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if !cmd.Flags().Changed("file") && len(args) > 0 {
			file = args[0]
		}

		reg := registry.New()
		reg.Register(process.Kind, process.FromConfig)

		def, err := yamlfile.New(file, reg).Load(context.Background())
		if err != nil {
			fmt.Printf("Error loading workflow: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(def, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
