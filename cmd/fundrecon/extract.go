package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/fundrecon/internal/config"
	"github.com/jackzampolin/fundrecon/internal/recon"
)

// runBindings are the flags shared by extract and watch.
var runBindings = []flagBinding{
	{"input.dir", "input"},
	{"input.extensions", "ext"},
	{"output.path", "out"},
	{"output.format", "format"},
	{"output.audit_path", "audit"},
	{"catalog", "catalog"},
	{"identifier", "identifier"},
	{"workers", "workers"},
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("input", "", "directory of annual reports (config: input.dir)")
	f.StringSlice("ext", nil, "document extensions to read, e.g. .pdf,.txt (config: input.extensions)")
	f.String("out", "", "consolidated output file (config: output.path)")
	f.String("format", "", "output format: csv or xlsx (config: output.format)")
	f.String("audit", "", "also write a per-document audit report to this file (config: output.audit_path)")
	f.String("catalog", "", "built-in catalog name or path to a catalog file (config: catalog)")
	f.String("identifier", "", "file-name pattern whose first group names the fund (config: identifier)")
	f.Int("workers", 0, "documents processed in parallel, 0 = one per CPU (config: workers)")
	f.Bool("strict", false, "abort on the first document that cannot be identified or read")
}

// runConfig returns the current configuration with --strict applied.
func runConfig(cmd *cobra.Command, cm *config.Manager) *config.Config {
	cfg := *cm.Get()
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		cfg.OnError = config.OnErrorAbort
	}
	return &cfg
}

func extract(cmd *cobra.Command, cm *config.Manager) error {
	req, err := recon.FromConfig(runConfig(cmd, cm), logger)
	if err != nil {
		return err
	}
	summary, err := recon.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printer.Print(summary)
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract all reports in the input directory into one table",
	Long: `Extract reads every report in the input directory, locates each line item
of the catalog and writes the consolidated table.

Reports whose file name does not yield a fund name, or that cannot be read,
are skipped and listed in the summary. Use --strict to abort instead.

Examples:
  fundrecon extract --input ./reports --out ./out/2023.csv
  fundrecon extract --catalog en --format xlsx --out ./out/2023.xlsx
  fundrecon extract --audit ./out/audit.csv -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := loadConfig(cmd, runBindings...)
		if err != nil {
			return err
		}
		return extract(cmd, cm)
	},
}

func init() {
	addRunFlags(extractCmd)
}
