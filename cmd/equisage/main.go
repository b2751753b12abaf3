// EquiSage — multi-stage stock analysis pipeline.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/equisage/equisage/api"
	"github.com/equisage/equisage/internal/agent"
	"github.com/equisage/equisage/internal/config"
	"github.com/equisage/equisage/internal/datasource"
	"github.com/equisage/equisage/internal/report"
	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, populated by PersistentPreRunE.
var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "equisage",
	Short: "EquiSage — multi-stage stock analysis pipeline",
	Long: `EquiSage analyzes a single stock ticker through four independent
stages (technical, fundamental, sentiment, risk) over shared market
data and aggregates them into a weighted investment report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		log = logging.New(level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("EquiSage %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER [TICKER...]",
	Short: "Run the full analysis pipeline on one or more stocks",
	Long:  "Fetch market data for each ticker, run all analysis stages, and print the aggregated reports.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		parallel := cfg.Analysis.ParallelStages
		if cmd.Flags().Changed("parallel") {
			parallel, _ = cmd.Flags().GetBool("parallel")
		}

		fetcher := datasource.NewMarketFetcher(datasource.FetchOptions{
			CacheTTL:  time.Duration(cfg.Fetch.CacheTTL) * time.Second,
			NewsLimit: cfg.Fetch.NewsLimit,
		}, log)
		orch := agent.NewOrchestrator(agent.OrchestratorConfig{
			Store:    store.New(),
			Fetcher:  fetcher,
			Parallel: parallel,
			Logger:   log,
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute*time.Duration(len(args)))
		defer cancel()

		return runAnalyses(ctx, orch, args, asJSON, os.Stdout)
	},
}

// runAnalyses runs the pipeline for each ticker in turn, printing every
// report it gets. A failed ticker is reported but does not stop the batch;
// the error lists all failures at the end.
func runAnalyses(ctx context.Context, orch *agent.Orchestrator, tickers []string, asJSON bool, out io.Writer) error {
	var failed []string
	for _, raw := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))

		rep, err := orch.RunAnalysis(ctx, ticker)
		if err != nil {
			log.Error().Str("ticker", ticker).Err(err).Msg("analysis failed")
			failed = append(failed, ticker)
			continue
		}

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			continue
		}
		fmt.Fprint(out, report.RenderText(rep))
	}

	if len(failed) > 0 {
		return fmt.Errorf("analysis failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the report as JSON")
	analyzeCmd.Flags().Bool("parallel", false, "run analysis stages concurrently")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := api.NewServer(cfg, log)
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		return srv.ListenAndServe(addr)
	},
}
