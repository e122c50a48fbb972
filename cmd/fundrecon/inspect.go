package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fundrecon/internal/pipeline"
	"github.com/jackzampolin/fundrecon/internal/recon"
	"github.com/jackzampolin/fundrecon/internal/source"
)

var inspectText bool

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show which regions and line items are found in one report",
	Long: `Inspect runs the catalog against a single report and prints, for every
region, whether it was found and how much text it holds, and for every line
item whether it was found and the value read.

Use --text to print the flattened text the catalog patterns are matched
against, which helps when writing a catalog for a new report layout.

Examples:
  fundrecon inspect "./reports/Alpha fund.pdf"
  fundrecon inspect --catalog ./catalogs/custom.yaml report.html -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		cm, err := loadConfig(cmd,
			flagBinding{"catalog", "catalog"},
			flagBinding{"identifier", "identifier"},
		)
		if err != nil {
			return err
		}
		cfg := cm.Get().Resolved()

		pages, err := source.DefaultRegistry(logger).Read(cmd.Context(), path)
		if err != nil {
			return err
		}
		if inspectText {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), pipeline.Flatten(pages))
			return err
		}

		cat, err := recon.ResolveCatalog(cfg)
		if err != nil {
			return err
		}
		pattern, err := recon.CompileIdentifier(cfg.Identifier)
		if err != nil {
			return err
		}
		if pattern == nil {
			pattern = cat.Identifier
		}
		id, err := source.Identifier(pattern, path)
		if err != nil {
			id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			logger.Warn("using file name as document name", "error", err)
		}

		p, err := pipeline.New(pipeline.Config{Catalog: cat, Logger: logger})
		if err != nil {
			return err
		}
		return printer.Print(p.Inspect(pipeline.Document{ID: id, Path: path, Pages: pages}))
	},
}

func init() {
	inspectCmd.Flags().String("catalog", "", "built-in catalog name or path to a catalog file (config: catalog)")
	inspectCmd.Flags().String("identifier", "", "file-name pattern whose first group names the fund (config: identifier)")
	inspectCmd.Flags().BoolVar(&inspectText, "text", false, "print the flattened document text instead")
}
