package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/spider/internal/engine"
	"github.com/nao1215/spider/internal/extract"
	"github.com/nao1215/spider/internal/model"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a crawl definition without fetching",
		Long: `Validate loads the crawl definition, builds every template chain and
checks the seed URLs and compiles every XPath expression. Nothing is
fetched or saved.

Examples:
  spider validate
  spider validate -c crawls/news.yaml`,
		Args: cobra.NoArgs,
		RunE: runValidateCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Crawl definition path (default: ./spider.yaml, then the XDG config directory)")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	def, err := loadDefinition(configPath)
	if err != nil {
		return err
	}

	ex := extract.New()
	out := cmd.OutOrStdout()
	var errs []error
	for _, sp := range def.Spiders {
		chain, err := sp.Chain()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := validateChain(ex, sp.Name, chain); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "ok  %s (%d templates)\n", sp.Name, chain.Len())
	}

	return errors.Join(errs...)
}

// validateChain checks what run would reject before fetching: malformed
// seed URLs and XPath that does not compile.
func validateChain(ex *extract.Extractor, name string, chain *model.Chain) error {
	for _, seed := range chain.Root().SeedURLs() {
		if !engine.ValidURL(seed) {
			return fmt.Errorf("spider %q: %w: %q", name, engine.ErrMalformedURL, seed)
		}
	}
	for i := range chain.Len() {
		if err := ex.Validate(chain.At(i)); err != nil {
			return fmt.Errorf("spider %q template %d: %w", name, i, err)
		}
	}
	return nil
}
