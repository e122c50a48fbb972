package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fundrecon/internal/config"
	"github.com/jackzampolin/fundrecon/internal/render"
	"github.com/jackzampolin/fundrecon/version"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string

	printer *render.Printer
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fundrecon",
	Short: "Extract financial line items from fund annual reports",
	Long: `fundrecon reads a directory of fund annual reports, locates every line item
of a table catalog in each report and writes one consolidated table with a
column per fund and a row per line item.

Catalogs describe where tables start and end and which labels to look for:
  - nl: Dutch-language reports (balance sheet, P&L, cash flow, notes, key figures)
  - en: English-language reports (balance sheet, P&L, cash flow)
Custom catalogs are YAML files; see "fundrecon catalog show nl".`,
	Version:      version.GitRelease,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		printer = render.NewPrinter(cmd.OutOrStdout(), format)

		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		level, err := config.ParseLogLevel(logLevel)
		if err != nil {
			return err
		}
		setLogger(cmd.ErrOrStderr(), level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.fundrecon/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "text", "output format: text, yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (default: config log_level)",
	)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func setLogger(w io.Writer, level slog.Level) {
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// flagBinding maps a config key to the command-line flag that overrides it.
type flagBinding struct {
	key  string
	flag string
}

// loadConfig reads configuration and applies flag overrides. Unless
// --log-level was given, the logger is rebuilt at the configured level.
func loadConfig(cmd *cobra.Command, bindings ...flagBinding) (*config.Manager, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	for _, b := range bindings {
		if err := cm.BindFlag(b.key, cmd.Flags().Lookup(b.flag)); err != nil {
			return nil, err
		}
	}

	if logLevel == "" {
		level, err := config.ParseLogLevel(cm.Get().LogLevel)
		if err != nil {
			return nil, err
		}
		setLogger(cmd.ErrOrStderr(), level)
	}
	if f := cm.ConfigFile(); f != "" {
		logger.Debug("loaded config", "file", f)
	}
	return cm, nil
}
