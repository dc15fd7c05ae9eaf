package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/akashuv-21/parase/internal/logger"
	"github.com/akashuv-21/parase/internal/types"
	cfgPkg "github.com/akashuv-21/parase/pkg/config"
	"github.com/akashuv-21/parase/pkg/processor"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

// options holds the command line flags shared by all commands.
type options struct {
	configPath    string
	labelPath     string
	predPath      string
	mode          string
	ignoreClasses []string
	workers       int
	dbURL         string
	jsonOutput    bool
	verbose       bool
	noProgress    bool
	addr          string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "parase",
		Short: "Evaluate document parsing results against ground truth",
		Long: `Scores a prediction corpus against its ground truth.
Layout mode computes the NID text similarity of each page. Table mode
computes TEDS and TEDS-S over the tables of each page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.SetVerbose(opts.verbose)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config file")
	pf.IntVar(&opts.workers, "workers", 0, "number of documents scored in parallel (default: number of CPUs)")
	pf.StringVar(&opts.dbURL, "db-url", "", "PostgreSQL connection string for storing results")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	f := rootCmd.Flags()
	f.StringVar(&opts.labelPath, "label-path", "", "path to the ground truth file")
	f.StringVar(&opts.predPath, "pred-path", "", "path to the prediction file")
	f.StringVar(&opts.mode, "mode", "layout", "mode for evaluation (layout/table)")
	f.StringSliceVar(&opts.ignoreClasses, "ignore-classes", processor.DefaultIgnoreClasses(),
		"layout classes to ignore, used only for layout evaluation")
	f.BoolVar(&opts.jsonOutput, "json", false, "output the report as JSON")
	f.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")
	rootCmd.MarkFlagRequired("label-path")
	rootCmd.MarkFlagRequired("pred-path")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig reads the config file and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command, opts *options) (*cfgPkg.Config, error) {
	cfg, err := cfgPkg.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Evaluation.Mode = opts.mode
	}
	if flags.Changed("ignore-classes") {
		cfg.Evaluation.IgnoreClasses = opts.ignoreClasses
	}
	if flags.Changed("workers") {
		cfg.Evaluation.Workers = opts.workers
	}
	if flags.Changed("db-url") {
		cfg.Database.URL = opts.dbURL
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = opts.addr
	}
	if opts.noProgress {
		cfg.UI.Progress = false
	}
	if !cfg.UI.Color {
		color.NoColor = true
	}

	if _, ok := types.ParseMode(cfg.Evaluation.Mode); !ok {
		return nil, errors.Errorf("%s mode not supported", cfg.Evaluation.Mode)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, errors.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	return cfg, nil
}
