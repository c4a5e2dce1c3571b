package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/spider/internal/config"
	"github.com/nao1215/spider/internal/engine"
	"github.com/nao1215/spider/internal/extract"
)

// TestRunValidateCmd tests checking definitions without fetching.
func TestRunValidateCmd(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, def string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
		if err := os.WriteFile(path, []byte(def), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("valid definition", func(t *testing.T) {
		t.Parallel()

		path := writeDefinition(t, "https://blog.example.com/", filepath.Join(t.TempDir(), "x.tsv"))
		output, err := execute(t, "validate", "-c", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "ok  blog (2 templates)") {
			t.Errorf("unexpected output %q", output)
		}
	})

	t.Run("invalid xpath", func(t *testing.T) {
		t.Parallel()

		path := write(t, `
spiders:
  - name: broken
    templates:
      - urls: [https://a.example.com/]
        expressions: {x: "//p[@"}
`)
		_, err := execute(t, "validate", "-c", path)
		if !errors.Is(err, extract.ErrInvalidExpression) {
			t.Errorf("expected ErrInvalidExpression, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "broken") {
			t.Errorf("expected error naming the spider, got %v", err)
		}
	})

	t.Run("malformed seed URL", func(t *testing.T) {
		t.Parallel()

		path := write(t, `
spiders:
  - name: typo
    templates:
      - urls: [not-a-url]
        expressions: {x: //p}
`)
		output, err := execute(t, "validate", "-c", path)
		if !errors.Is(err, engine.ErrMalformedURL) {
			t.Errorf("expected ErrMalformedURL, got %v", err)
		}
		if strings.Contains(output, "ok  typo") {
			t.Errorf("malformed seed must not validate, got %q", output)
		}
	})

	t.Run("next field without expression", func(t *testing.T) {
		t.Parallel()

		path := write(t, `
spiders:
  - name: a
    templates:
      - urls: [https://a.example.com/]
        expressions: {x: //p}
        next: y
`)
		if _, err := execute(t, "validate", "-c", path); err == nil {
			t.Error("expected error for unknown next field")
		}
	})
}
