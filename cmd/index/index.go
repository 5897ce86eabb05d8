package index

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/detagtor/detagtor/internal/artifact"
	"github.com/detagtor/detagtor/internal/filter"
	"github.com/detagtor/detagtor/internal/history"
	idx "github.com/detagtor/detagtor/internal/index"
	"github.com/detagtor/detagtor/pkg/shared"
	"github.com/detagtor/detagtor/pkg/shared/config"
	"github.com/detagtor/detagtor/pkg/shared/logger"
)

// RunOptionsIndex holds the arguments for the index command.
type RunOptionsIndex struct {
	Repository    string
	Output        string
	TargetDir     string
	Threads       int
	Include       []string
	Exclude       []string
	IncludeDir    []string
	ExcludeDir    []string
	IncludePrefix []string
	ExcludePrefix []string
	AuthType      string
	SSHKey        string
	Username      string
	Token         string
	S3Bucket      string
	S3Key         string
	S3Region      string
}

var (
	AppConfig         *config.Config
	indexOptions      RunOptionsIndex
	exampleIndexUsage = `  # Index a local clone, all files except .git
  detagtor index /path/to/repo -o juice-shop.index.json

  # Index only static assets
  detagtor index /path/to/repo --include "*.{css,js,png,svg}" -o app.index.json

  # Index the public/ folder of a remote repository with 8 workers
  detagtor index https://github.com/juice-shop/juice-shop.git --include-prefix public -j 8

  # Index and share the knowledge base via S3
  detagtor index /path/to/repo --s3-bucket kb-bucket --s3-key juice-shop/index.json`
)

// IndexCmd represents the index command.
var IndexCmd = &cobra.Command{
	Use:                   "index {REPO_PATH | REPO_URL} [--include PATTERN] [--exclude PATTERN] [-o FILE] [-j THREADS]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleIndexUsage,
	Short:                 "Build a fingerprint knowledge base from a source repository's tags",
	RunE:                  runIndexCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runIndexCommand executes the index command.
func runIndexCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	log := logger.NewLogger(AppConfig, "core-index")

	if err := validateIndexArgs(&indexOptions, args); err != nil {
		log.Error("invalid index arguments", "error", err)
		return err
	}

	repoPath := indexOptions.Repository
	repoName := repoNameFromTarget(repoPath)

	if isRemoteURL(repoPath) {
		cloned, err := cloneRepository(cmd.Context(), log, &indexOptions)
		if err != nil {
			log.Error("failed to clone repository", "url", repoPath, "error", err)
			return err
		}
		repoPath = cloned
	}

	rules := buildFilterRules(&indexOptions)
	provider, err := history.Open(log, repoPath, rules)
	if err != nil {
		log.Error("failed to open repository", "path", repoPath, "error", err)
		return err
	}

	tags, err := provider.Tags()
	if err != nil {
		log.Error("failed to enumerate tags", "path", repoPath, "error", err)
		return err
	}
	log.Info("indexing repository", "repository", repoName, "tags", len(tags), "threads", indexOptions.Threads)

	started := time.Now()
	res, err := idx.Build(log, provider, tags, indexOptions.Threads)
	if err != nil {
		log.Error("index build failed", "error", err)
		return err
	}
	for tag, tagErr := range res.Skipped {
		log.Warn("tag skipped", "tag", tag, "error", tagErr)
	}
	log.Info("index built", "tags", len(res.Index.Tags), "paths", len(res.Index.Paths()), "elapsed", time.Since(started).Round(time.Millisecond))

	outputPath := indexOptions.Output
	if outputPath == "" {
		outputPath = artifact.IndexFileName(repoName, time.Now())
	}
	if err := artifact.SaveIndexJSON(log, res.Index, outputPath); err != nil {
		log.Error("failed to save index", "path", outputPath, "error", err)
		return err
	}

	if indexOptions.S3Bucket != "" {
		key := indexOptions.S3Key
		if key == "" {
			key = filepath.Base(outputPath)
		}
		if err := artifact.UploadS3(log, indexOptions.S3Region, indexOptions.S3Bucket, key, outputPath); err != nil {
			log.Error("failed to upload index", "bucket", indexOptions.S3Bucket, "error", err)
			return err
		}
	}

	log.Info("index command completed successfully")
	return nil
}

// buildFilterRules assembles the inclusion rules, falling back to the
// defaults when no rule was given.
func buildFilterRules(o *RunOptionsIndex) *filter.Rules {
	rules := &filter.Rules{
		Include:       o.Include,
		Exclude:       o.Exclude,
		IncludeDir:    o.IncludeDir,
		ExcludeDir:    o.ExcludeDir,
		IncludePrefix: o.IncludePrefix,
		ExcludePrefix: o.ExcludePrefix,
	}
	rules.ExcludeDir = append(rules.ExcludeDir, filter.Default().ExcludeDir...)
	return rules
}

// Initialize flags for the index command.
func init() {
	IndexCmd.Flags().StringVarP(&indexOptions.Output, "output", "o", "", "File to write the index to. Defaults to <repo>_<timestamp>.detagtor-index.json.")
	IndexCmd.Flags().IntVarP(&indexOptions.Threads, "threads", "j", runtime.NumCPU(), "Number of tags to index concurrently.")
	IndexCmd.Flags().StringSliceVar(&indexOptions.Include, "include", nil, "Include only files whose base name matches PATTERN, e.g. \"*.{css,js}\".")
	IndexCmd.Flags().StringSliceVar(&indexOptions.Exclude, "exclude", nil, "Exclude all files whose base name matches PATTERN.")
	IndexCmd.Flags().StringSliceVar(&indexOptions.IncludeDir, "include-dir", nil, "Include only directories whose base name matches PATTERN.")
	IndexCmd.Flags().StringSliceVar(&indexOptions.ExcludeDir, "exclude-dir", nil, "Exclude all directories whose base name matches PATTERN.")
	IndexCmd.Flags().StringSliceVar(&indexOptions.IncludePrefix, "include-prefix", nil, "Include only paths under PREFIX.")
	IndexCmd.Flags().StringSliceVar(&indexOptions.ExcludePrefix, "exclude-prefix", nil, "Exclude all paths under PREFIX.")
	IndexCmd.Flags().StringVar(&indexOptions.TargetDir, "target-dir", "", "Directory to clone a remote repository into. Defaults to a temporary directory.")
	IndexCmd.Flags().StringVar(&indexOptions.AuthType, "auth-type", "", "Auth type for cloning: http, ssh-key or ssh-agent.")
	IndexCmd.Flags().StringVar(&indexOptions.SSHKey, "ssh-key", "", "Path to an SSH private key for cloning.")
	IndexCmd.Flags().StringVar(&indexOptions.Username, "username", os.Getenv("DETAGTOR_USERNAME"), "Username for HTTP auth when cloning.")
	IndexCmd.Flags().StringVar(&indexOptions.Token, "token", os.Getenv("DETAGTOR_TOKEN"), "Token for HTTP auth when cloning.")
	IndexCmd.Flags().StringVar(&indexOptions.S3Bucket, "s3-bucket", "", "S3 bucket to upload the built index to.")
	IndexCmd.Flags().StringVar(&indexOptions.S3Key, "s3-key", "", "S3 object key for the uploaded index. Defaults to the output file name.")
	IndexCmd.Flags().StringVar(&indexOptions.S3Region, "s3-region", "", "AWS region of the S3 bucket.")
}
