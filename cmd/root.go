package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/detagtor/detagtor/cmd/detect"
	"github.com/detagtor/detagtor/cmd/index"
	"github.com/detagtor/detagtor/cmd/version"
	"github.com/detagtor/detagtor/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "detagtor [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Detagtor detects tagged versions of deployed web applications.",
		Long: `Detagtor builds a knowledge base of content fingerprints from every tag of a
web application's source repository, then compares files retrieved from a live
deployment against it to rank which tagged release is running.

Use the 'index' command to build the knowledge base, then the 'detect' command
to run the detection against a target URL.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(index.IndexCmd)
	rootCmd.AddCommand(detect.DetectCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func initConfig() {
	explicit := cfgFile != ""
	if !explicit {
		cfgFile = "config.yml"
	}

	var err error
	AppConfig, err = config.LoadConfig(cfgFile, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	index.Init(AppConfig)
	detect.Init(AppConfig)
}
