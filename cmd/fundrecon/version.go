package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/fundrecon/version"
)

type versionInfo struct {
	Release string `json:"release" yaml:"release"`
	Go      string `json:"go" yaml:"go"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if printer.Structured() {
			return printer.Print(versionInfo{
				Release: version.GitRelease,
				Go:      version.GoInfo,
				Commit:  version.GitCommit,
				Date:    version.GitCommitDate,
			})
		}
		printer.Printf("fundrecon %s\n", version.GitRelease)
		printer.Printf("  Go:     %s\n", version.GoInfo)
		printer.Printf("  Commit: %s\n", version.GitCommit)
		printer.Printf("  Date:   %s\n", version.GitCommitDate)
		return nil
	},
}
