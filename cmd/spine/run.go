package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	spine "github.com/fabianoP/spine-engine"
	httpAdapter "github.com/fabianoP/spine-engine/internal/adapters/http"
	"github.com/fabianoP/spine-engine/internal/adapters/process"
	"github.com/fabianoP/spine-engine/internal/adapters/yamlfile"
	"github.com/fabianoP/spine-engine/internal/logging"
	"github.com/fabianoP/spine-engine/pkg/domain"
	"github.com/fabianoP/spine-engine/pkg/observability"
	"github.com/fabianoP/spine-engine/pkg/registry"
)

var runCmd = &cobra.Command{
	Use:   "run [workflow.yaml]",
	Short: "Execute a workflow description",
	Long: `Loads a YAML workflow description, builds the engine and runs both
passes to completion. SIGINT/SIGTERM stop the run cooperatively.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if !cmd.Flags().Changed("file") && len(args) > 0 {
			file = args[0]
		}
		listen, _ := cmd.Flags().GetString("listen")
		levelFlag, _ := cmd.Flags().GetString("log-level")

		level, err := logging.ParseLevel(levelFlag)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		logger := logging.New(level)

		reg := registry.New()
		reg.Register(process.Kind, process.FromConfig)

		promRegistry := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(promRegistry)
		if err != nil {
			fmt.Printf("Error setting up metrics: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		eng, err := spine.Load(ctx, yamlfile.New(file, reg),
			spine.WithLogger(logger),
			spine.WithLifecycleHooks(metrics.Hooks()),
		)
		if err != nil {
			fmt.Printf("Error loading workflow: %v\n", err)
			os.Exit(1)
		}

		if listen != "" {
			handler := httpAdapter.NewHandler(eng, httpAdapter.WithMetrics(promRegistry))
			go func() {
				logger.Info("status server listening", "addr", listen)
				if err := http.ListenAndServe(listen, handler); err != nil {
					logger.Error("status server stopped", "err", err)
				}
			}()
		}

		// SIGINT/SIGTERM stop the engine cooperatively; a second signal
		// kills the process the usual way.
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			logger.Info("received signal, stopping run", "signal", sig.String())
			eng.Stop()
			signal.Stop(sigs)
		}()

		runErr := eng.Run(ctx)
		printSummary(eng)

		switch {
		case runErr == nil:
			return
		case errors.Is(runErr, domain.ErrStopped):
			os.Exit(130)
		default:
			os.Exit(1)
		}
	},
}

func printSummary(eng *spine.Engine) {
	report := eng.Report()
	fmt.Printf("state: %s\n", report.State)

	ids := make([]string, 0, len(report.Forward))
	for id := range report.Forward {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  %-20s backward=%-10s forward=%s\n", id, report.Backward[id], report.Forward[id])
	}
}

func init() {
	runCmd.Flags().String("listen", "", "Address for the status/metrics HTTP server (e.g. :2112)")
	rootCmd.AddCommand(runCmd)
}
