package detect

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"

	idx "github.com/detagtor/detagtor/internal/index"
	"github.com/detagtor/detagtor/internal/match"
	"github.com/detagtor/detagtor/internal/observe"
	"github.com/detagtor/detagtor/internal/report"
	"github.com/detagtor/detagtor/pkg/shared"
	"github.com/detagtor/detagtor/pkg/shared/config"
	"github.com/detagtor/detagtor/pkg/shared/httpclient"
	"github.com/detagtor/detagtor/pkg/shared/logger"
)

// RunOptionsDetect holds the arguments for the detect command.
type RunOptionsDetect struct {
	URL        string
	Input      string
	Headers    []string
	Format     string
	Top        int
	Threads    int
	RateLimit  float64
	Exhaustive bool
}

var (
	AppConfig          *config.Config
	detectOptions      RunOptionsDetect
	exampleDetectUsage = `  # Detect the deployed version against a knowledge base
  detagtor detect https://shop.example.com/ -i juice-shop.index.json

  # Pass an extra header and print the top 5 candidates as JSON
  detagtor detect https://shop.example.com/ -i app.index.json -H "Authorization: Bearer abc" --format json --top 5

  # Fetch every known file instead of stopping early
  detagtor detect https://shop.example.com/ -i app.index.json --exhaustive

  # Emit a SARIF report for pipeline consumption
  detagtor detect https://shop.example.com/ -i app.index.json --format sarif > findings.sarif`
)

// DetectCmd represents the detect command.
var DetectCmd = &cobra.Command{
	Use:                   "detect URL --input/-i FILE [--header/-H HEADER] [--format FORMAT] [--top N] [--exhaustive]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleDetectUsage,
	Short:                 "Detect the tagged version of a deployed web application",
	RunE:                  runDetectCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runDetectCommand executes the detect command.
func runDetectCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	log := logger.NewLogger(AppConfig, "core-detect")

	if err := validateDetectArgs(&detectOptions, args); err != nil {
		log.Error("invalid detect arguments", "error", err)
		return err
	}

	knowledge, err := loadIndex(detectOptions.Input)
	if err != nil {
		log.Error("failed to load index", "path", detectOptions.Input, "error", err)
		return err
	}

	paths := knowledge.RankedPaths()
	if len(paths) == 0 {
		log.Error("index contains no paths, nothing can be observed")
		return errEmptyIndex
	}
	log.Info("starting detection", "target", detectOptions.URL, "tags", len(knowledge.Tags), "paths", len(paths), "exhaustive", detectOptions.Exhaustive)

	headers, err := mergeHeaders(AppConfig.Detect.Headers, detectOptions.Headers)
	if err != nil {
		log.Error("invalid header", "error", err)
		return err
	}
	rewrites, err := compileRewrites(AppConfig.Detect.Patterns)
	if err != nil {
		log.Error("invalid rewrite pattern", "error", err)
		return err
	}

	collector := observe.NewCollector(log, httpclient.InitializeRestyClient(log, AppConfig), observe.Options{
		Concurrency:       detectOptions.Threads,
		RequestsPerSecond: detectOptions.RateLimit,
		Headers:           headers,
		Rewrites:          rewrites,
	})

	var set observe.Set
	if detectOptions.Exhaustive {
		set, err = collector.Collect(cmd.Context(), detectOptions.URL, paths)
	} else {
		set, err = collector.CollectBatches(cmd.Context(), detectOptions.URL, paths, narrowedToOneTag(knowledge))
	}
	if err != nil {
		log.Error("observation collection failed", "error", err)
		return err
	}
	log.Info("observations collected", "attempted", len(set), "observed", set.Observed())

	result := match.Evaluate(knowledge, set, detectOptions.URL)
	if result.Undetermined {
		log.Warn("result is undetermined, no observed file matched any tag")
	} else if result.Ambiguous {
		log.Warn("result is ambiguous, top candidates are tied", "score", result.Ranked[0].Score)
	}

	format, err := report.ParseFormat(detectOptions.Format)
	if err != nil {
		log.Error("invalid report format", "error", err)
		return err
	}
	if err := report.Write(os.Stdout, result, format, detectOptions.Top); err != nil {
		log.Error("failed to write report", "error", err)
		return err
	}

	log.Info("detect command completed successfully", "runId", result.RunID)
	return nil
}

// narrowedToOneTag stops collection once the observed fingerprints pin
// the deployment down to a single candidate tag.
func narrowedToOneTag(knowledge *idx.Index) func(observe.Set) bool {
	return func(set observe.Set) bool {
		candidates, narrowed := candidateTags(knowledge, set)
		return narrowed && len(candidates) == 1
	}
}

// Initialize flags for the detect command.
func init() {
	DetectCmd.Flags().StringVarP(&detectOptions.Input, "input", "i", "", "Index file to read the knowledge base from. Use '-' for stdin.")
	DetectCmd.Flags().StringArrayVarP(&detectOptions.Headers, "header", "H", nil, "Extra header to include in every request, as 'Name: value'. Repeatable.")
	DetectCmd.Flags().StringVarP(&detectOptions.Format, "format", "f", "text", "Report format: text, json or sarif.")
	DetectCmd.Flags().IntVar(&detectOptions.Top, "top", 10, "Number of candidates to report. 0 reports all.")
	DetectCmd.Flags().IntVarP(&detectOptions.Threads, "threads", "j", runtime.NumCPU(), "Number of concurrent retrievals.")
	DetectCmd.Flags().Float64Var(&detectOptions.RateLimit, "rate-limit", 0, "Maximum requests per second against the target. 0 disables throttling.")
	DetectCmd.Flags().BoolVar(&detectOptions.Exhaustive, "exhaustive", false, "Fetch every known file instead of stopping once a single tag remains.")
}
