package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fundrecon/internal/catalog"
	"github.com/jackzampolin/fundrecon/internal/config"
	"github.com/jackzampolin/fundrecon/internal/home"
	"github.com/jackzampolin/fundrecon/internal/recon"
)

// catalogInfo summarizes a compiled catalog for list and show.
type catalogInfo struct {
	Name    string      `json:"name" yaml:"name"`
	Source  string      `json:"source" yaml:"source"` // "builtin" or a file path
	Locale  string      `json:"locale" yaml:"locale"`
	Regions int         `json:"regions" yaml:"regions"`
	Items   int         `json:"items" yaml:"items"`
	Tables  []tableInfo `json:"tables,omitempty" yaml:"tables,omitempty"`
}

type tableInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Region  string   `json:"region" yaml:"region"`
	Grammar string   `json:"grammar" yaml:"grammar"`
	Slot    int      `json:"slot" yaml:"slot"`
	Keys    []string `json:"keys" yaml:"keys"`
}

func describe(c *catalog.Catalog, source string, withTables bool) catalogInfo {
	info := catalogInfo{
		Name:    c.Name,
		Source:  source,
		Locale:  string(c.Policy),
		Regions: len(c.Regions.Specs()),
		Items:   c.ItemCount(),
	}
	if !withTables {
		return info
	}
	for _, t := range c.Tables {
		ti := tableInfo{Name: t.Name, Region: t.Region, Grammar: t.Grammar.Name(), Slot: t.Slot}
		for _, item := range t.Items {
			ti.Keys = append(ti.Keys, item.Key)
		}
		info.Tables = append(info.Tables, ti)
	}
	return info
}

type catalogList []catalogInfo

func (l catalogList) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLOCALE\tREGIONS\tITEMS\tSOURCE")
	for _, c := range l {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", c.Name, c.Locale, c.Regions, c.Items, c.Source)
	}
	return tw.Flush()
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List, show and validate table catalogs",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in catalogs and those in the home catalogs directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var list catalogList
		for _, name := range catalog.Builtins() {
			c, err := catalog.Builtin(name)
			if err != nil {
				return err
			}
			list = append(list, describe(c, "builtin", false))
		}

		cm, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		h, err := home.New(config.ResolveEnvVars(cm.Get().Home))
		if err != nil {
			return err
		}
		names, err := h.Catalogs()
		if err != nil {
			return err
		}
		for _, name := range names {
			path := h.CatalogPath(name)
			c, err := catalog.LoadFile(path)
			if err != nil {
				logger.Warn("skipping invalid catalog", "path", path, "error", err)
				continue
			}
			list = append(list, describe(c, path, false))
		}
		return printer.Print(list)
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show NAME|PATH",
	Short: "Print a catalog",
	Long: `Show prints a catalog. In text mode the catalog source is printed, which is
a good starting point for a custom catalog:

  fundrecon catalog show nl > custom.yaml

With -o yaml or -o json the compiled tables and keys are printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := args[0]
		cm, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg := *cm.Get()
		cfg.Catalog = ref
		c, err := recon.ResolveCatalog(&cfg)
		if err != nil {
			return err
		}
		if printer.Structured() {
			return printer.Print(describe(c, ref, true))
		}

		data, err := catalog.BuiltinSource(ref)
		if err != nil {
			h, herr := home.New(config.ResolveEnvVars(cfg.Home))
			if herr != nil {
				return herr
			}
			data, err = os.ReadFile(h.CatalogPath(ref))
			if err != nil {
				data, err = os.ReadFile(ref)
			}
			if err != nil {
				return err
			}
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate PATH...",
	Short: "Check catalog files for errors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			c, err := catalog.LoadFile(path)
			if err != nil {
				failed++
				logger.Error("invalid catalog", "path", path, "error", err)
				continue
			}
			printer.Printf("%s: ok (%d tables, %d items)\n", path, len(c.Tables), c.ItemCount())
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d catalogs invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
