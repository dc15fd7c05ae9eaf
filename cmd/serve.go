package main

import (
	"github.com/akashuv-21/parase/internal/logger"
	"github.com/akashuv-21/parase/pkg/store"
	"github.com/akashuv-21/parase/server"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the evaluation server",
		Long: `Serves POST /evaluate for one-shot evaluations and GET /ws for
evaluations that stream per-document progress.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	serveCmd.Flags().StringVar(&opts.addr, "addr", ":8080", "address to listen on")
	return serveCmd
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	srvConfig := server.Config{
		Addr:             cfg.Server.Addr,
		RateLimit:        cfg.Server.RateLimit,
		Burst:            cfg.Server.Burst,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		Workers:          cfg.Evaluation.Workers,
		StringsToRemove:  cfg.Evaluation.StringsToRemove,
		NormalizeUnicode: cfg.Evaluation.NormalizeUnicode,
		IgnoreNodes:      cfg.Table.IgnoreNodes,
	}

	if cfg.Database.URL != "" {
		rs, err := store.NewWithConfig(cmd.Context(), store.StoreConfig{
			ConnString: cfg.Database.URL,
			TableName:  cfg.Database.TableName,
			BatchSize:  cfg.Database.BatchSize,
		})
		if err != nil {
			return errors.Wrap(err, "failed to initialize result store")
		}
		defer rs.Close()
		srvConfig.Store = rs
	} else {
		logger.Info("no database configured, reports are not stored")
	}

	return server.New(srvConfig).ListenAndServe(cmd.Context())
}
