package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fundrecon/internal/config"
	"github.com/jackzampolin/fundrecon/internal/recon"
	"github.com/jackzampolin/fundrecon/internal/source"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Extract, then re-extract whenever reports or configuration change",
	Long: `Watch runs extract once and then keeps the output up to date: adding,
replacing or removing a report in the input directory triggers a new run
once the directory has been quiet for watch.debounce. Edits to the config
file are picked up as well.

Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := loadConfig(cmd, runBindings...)
		if err != nil {
			return err
		}

		cfg := runConfig(cmd, cm).Resolved()
		exts := cfg.Input.Extensions
		if len(exts) == 0 {
			exts = source.DefaultExtensions
		}
		w := recon.NewWatcher(recon.WatcherConfig{
			Dir:            cfg.Input.Dir,
			Extensions:     exts,
			Debounce:       cfg.Watch.Debounce,
			SettleAttempts: cfg.Watch.SettleAttempts,
			SettleDelay:    cfg.Watch.SettleDelay,
			Logger:         logger,
		})

		if cm.ConfigFile() != "" {
			cm.OnChange(func(c *config.Config) {
				logger.Info("configuration changed", "file", cm.ConfigFile(), "catalog", c.Catalog)
				w.Trigger()
			})
			cm.WatchConfig()
		}

		logger.Info("watching for reports", "dir", cfg.Input.Dir, "extensions", exts)
		return w.Run(cmd.Context(), func(ctx context.Context) error {
			req, err := recon.FromConfig(runConfig(cmd, cm), logger)
			if err != nil {
				return err
			}
			summary, err := recon.Run(ctx, req)
			if err != nil {
				return err
			}
			return printer.Print(summary)
		})
	},
}

func init() {
	addRunFlags(watchCmd)
}
