// cmd/agentbench/run.go
package agentbench

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentbench/agentbench/internal/backend"
	"github.com/agentbench/agentbench/internal/config"
	"github.com/agentbench/agentbench/internal/harness"
	"github.com/agentbench/agentbench/internal/tools"
	"github.com/agentbench/agentbench/internal/trace"
)

var (
	modelsCSV    string
	outPath      string
	concurrency  int
	timeout      time.Duration
	temperature  float64
	otlpEndpoint string
	debug        bool
)

// runCmd represents the 'run' command, which executes the full benchmark
// suite against every selected model and writes the JSON report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark suite against the configured models",
	Long: `The 'run' command sends every prompt in the evaluation suite to each selected
model, collects per-run outcomes, aggregates them into per-model summaries,
applies the selection rule, and writes the report as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		return runBenchmark(cmd.Context(), cfg)
	},
}

// buildConfig assembles the immutable run configuration from the config file
// and the command's flags.
func buildConfig() (config.Config, error) {
	hosts, err := config.LoadHosts(viper.GetString("config"))
	if err != nil {
		return config.Config{}, err
	}
	return config.Config{
		Hosts:          hosts,
		Models:         config.SplitModels(modelsCSV),
		OutputPath:     outPath,
		Concurrency:    concurrency,
		RequestTimeout: timeout,
		Temperature:    temperature,
		OTLPEndpoint:   otlpEndpoint,
		Debug:          debug,
	}, nil
}

// buildBackends turns resolved (host, model) pairs into backend clients.
func buildBackends(refs []config.ModelRef) []backend.Backend {
	out := make([]backend.Backend, len(refs))
	for i, ref := range refs {
		if ref.Host.Type == config.HostTypeOpenAI {
			out[i] = backend.NewOpenAI(ref.Host.URL, ref.Model)
		} else {
			out[i] = backend.NewOllama(ref.Host.URL, ref.Model)
		}
	}
	return out
}

func runBenchmark(ctx context.Context, cfg config.Config) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
		pp.Println(cfg)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	refs, err := cfg.Selected()
	if err != nil {
		return err
	}
	backends := buildBackends(refs)
	runID := uuid.NewString()

	var exporter harness.Exporter
	if cfg.OTLPEndpoint != "" {
		exp, err := trace.New(ctx, cfg.OTLPEndpoint, runID, logger)
		if err != nil {
			// Observability never blocks a benchmark run.
			logger.Warn("trace exporter unavailable, continuing without export", "error", err)
		} else {
			exporter = exp
			defer func() {
				shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				exp.Shutdown(shCtx)
			}()
		}
	}

	report, err := harness.Run(ctx, harness.Options{
		Models:         backends,
		Tools:          tools.DefaultRegistry(),
		Concurrency:    cfg.Concurrency,
		RequestTimeout: cfg.RequestTimeout,
		Temperature:    cfg.Temperature,
		RunID:          runID,
		Exporter:       exporter,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	if err := harness.WriteReport(cfg.OutputPath, report); err != nil {
		return err
	}
	logger.Info("report written", "path", cfg.OutputPath, "run_id", report.RunID)

	fmt.Println(harness.RenderSummaries(report))
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&modelsCSV, "models", "", "comma-separated models to benchmark (default: every configured model)")
	runCmd.Flags().StringVar(&outPath, "out", "results/results.json", "path for the JSON report")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 2, "how many models to benchmark at once")
	runCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "per-request timeout")
	runCmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature sent to every backend")
	runCmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP endpoint for trace export (empty disables export)")
	runCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging and dump the resolved configuration")
}
