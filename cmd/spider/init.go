package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/spider/internal/config"
)

//go:embed templates/spider.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample spider.yaml",
		Long: `Initialize writes a sample crawl definition to spider.yaml.

The generated file includes:
- A list/detail spider with a hook on each stage
- Commented examples for every dedup backend and sink

Examples:
  # Create spider.yaml in the current directory
  spider init

  # Create the definition at a specific path
  spider init -o crawls/news.yaml

  # Force overwrite an existing file
  spider init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the crawl definition")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite an existing file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("crawl definition already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/spider.yaml")
	if err != nil {
		return fmt.Errorf("failed to read sample definition: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write crawl definition: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created crawl definition: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to describe your spiders, then run:")
	fmt.Fprintln(out, "  spider validate")
	fmt.Fprintln(out, "  spider run")

	return nil
}
