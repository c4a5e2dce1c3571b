package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for spider.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spider",
		Short: "Template-driven web crawler",
		Long: `spider crawls web sites described by chains of XPath templates.

A spider starts from the seed URLs of its first template. Every page is
downloaded, its fields are extracted with XPath, optional hooks rewrite
the values, and the rows are saved to the configured sinks. The URLs in
the template's "next" field are crawled with the following template.

Spiders are defined in spider.yaml. Run 'spider init' to create one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
