package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/akashuv-21/parase/internal/types"
	cfgPkg "github.com/akashuv-21/parase/pkg/config"
	"github.com/akashuv-21/parase/pkg/corpus"
	"github.com/akashuv-21/parase/pkg/evaluator"
	"github.com/akashuv-21/parase/pkg/store"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func runEvaluate(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	mode := types.Mode(cfg.Evaluation.Mode)
	out := cmd.OutOrStdout()

	if !opts.jsonOutput {
		printArguments(out, opts.labelPath, opts.predPath, cfg)
	}

	gt, pred, err := corpus.LoadPair(opts.labelPath, opts.predPath)
	if err != nil {
		return err
	}

	evalOpts := evaluator.Options{
		Mode:             mode,
		Workers:          cfg.Evaluation.Workers,
		IgnoreClasses:    cfg.Evaluation.IgnoreClasses,
		StringsToRemove:  cfg.Evaluation.StringsToRemove,
		NormalizeUnicode: cfg.Evaluation.NormalizeUnicode,
		IgnoreNodes:      cfg.Table.IgnoreNodes,
	}

	var bar *progressbar.ProgressBar
	if cfg.UI.Progress && !opts.jsonOutput {
		if total := evaluator.Total(mode, gt, pred); total > 0 {
			bar = getProgressBar(total, "Evaluating documents")
			evalOpts.OnProgress = func(string) { bar.Add(1) }
		}
	}

	report, err := evaluator.Evaluate(cmd.Context(), evalOpts, gt, pred)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	switch {
	case errors.Is(err, evaluator.ErrNoTables):
		if !opts.jsonOutput {
			fmt.Fprintln(out, color.YellowString("[Warning] %s.", capitalize(err.Error())))
		}
	case err != nil:
		return err
	}

	if cfg.Database.URL != "" {
		if err := saveReport(cmd, cfg, opts, report); err != nil {
			return err
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "failed to encode report")
	}

	printScores(out, report)
	return nil
}

func printArguments(out io.Writer, labelPath, predPath string, cfg *cfgPkg.Config) {
	fmt.Fprintln(out, "Arguments:")
	fmt.Fprintf(out, "  label_path: %s\n", labelPath)
	fmt.Fprintf(out, "  pred_path: %s\n", predPath)
	fmt.Fprintf(out, "  ignore_classes_for_layout: [%s]\n", strings.Join(cfg.Evaluation.IgnoreClasses, ", "))
	fmt.Fprintf(out, "  mode: %s\n", cfg.Evaluation.Mode)
	fmt.Fprintln(out, strings.Repeat("-", 50))
}

func printScores(out io.Writer, report *types.Report) {
	switch report.Mode {
	case types.ModeLayout:
		fmt.Fprintf(out, "NID Score: %s\n", color.GreenString("%.4f", report.NID))
	case types.ModeTable:
		fmt.Fprintf(out, "TEDS Score: %s\n", color.GreenString("%.4f", report.TEDS))
		fmt.Fprintf(out, "TEDS-S Score: %s\n", color.GreenString("%.4f", report.TEDSS))
	}
}

func saveReport(cmd *cobra.Command, cfg *cfgPkg.Config, opts *options, report *types.Report) error {
	rs, err := store.NewWithConfig(cmd.Context(), store.StoreConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.TableName,
		BatchSize:  cfg.Database.BatchSize,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize result store")
	}
	defer rs.Close()

	run := types.Run{
		Mode:          report.Mode,
		LabelPath:     opts.labelPath,
		PredPath:      opts.predPath,
		IgnoreClasses: cfg.Evaluation.IgnoreClasses,
		CreatedAt:     time.Now(),
	}
	id, err := rs.Save(cmd.Context(), run, report)
	if err != nil {
		return err
	}
	if !opts.jsonOutput {
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Stored run %d", id))
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
