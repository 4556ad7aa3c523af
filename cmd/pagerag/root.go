package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "pagerag",
		Short: "Convert PDF documents into page-aware retrieval chunks",
		Long: `pagerag reads PDF files page by page, detects tables, removes table
text from the surrounding prose and splits each page into overlapping
chunks tagged with their source file and page number.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(newConvertCmd(g))
	return root
}
