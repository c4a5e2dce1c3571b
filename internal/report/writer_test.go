package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/spider/internal/engine"
	"github.com/nao1215/spider/internal/runner"
)

// sampleResults returns one healthy and one failed spider.
func sampleResults() []runner.Result {
	return []runner.Result{
		{
			Name:  "books",
			State: engine.Finished,
			Stats: engine.Stats{Processed: 11, Saved: 10, RowsSaved: 10, Enqueued: 11, Elapsed: 1500 * time.Millisecond},
		},
		{
			Name:  "news",
			State: engine.Failed,
			Stats: engine.Stats{Processed: 1, Enqueued: 3, Elapsed: 200 * time.Millisecond},
			Err:   errors.New("malformed URL: \"/about\""),
		},
	}
}

// TestNewSummary tests aggregation of batch results.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	s := NewSummary(sampleResults())

	if len(s.Spiders) != 2 || s.Spiders[1].Name != "news" {
		t.Fatalf("unexpected spiders %+v", s.Spiders)
	}
	if s.Failed != 1 || s.OK() {
		t.Errorf("expected one failure, got %d", s.Failed)
	}
	if s.Total.Processed != 12 || s.Total.RowsSaved != 10 || s.Total.Enqueued != 14 {
		t.Errorf("unexpected totals %+v", s.Total)
	}
	if s.Total.Elapsed != 1500*time.Millisecond {
		t.Errorf("expected the longest elapsed time, got %s", s.Total.Elapsed)
	}
	if s.Spiders[0].Error != "" || s.Spiders[1].Error == "" {
		t.Error("only the failed spider should carry an error")
	}
}

// TestNewWriter tests format selection.
func TestNewWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   any
	}{
		{"", &TextWriter{}},
		{"text", &TextWriter{}},
		{"JSON", &JSONWriter{}},
		{"markdown", &MarkdownWriter{}},
		{"md", &MarkdownWriter{}},
	}

	for _, tt := range tests {
		w, err := NewWriter(tt.format, &bytes.Buffer{})
		if err != nil {
			t.Errorf("NewWriter(%q): unexpected error: %v", tt.format, err)
			continue
		}
		switch tt.want.(type) {
		case *TextWriter:
			if _, ok := w.(*TextWriter); !ok {
				t.Errorf("NewWriter(%q) = %T", tt.format, w)
			}
		case *JSONWriter:
			if _, ok := w.(*JSONWriter); !ok {
				t.Errorf("NewWriter(%q) = %T", tt.format, w)
			}
		case *MarkdownWriter:
			if _, ok := w.(*MarkdownWriter); !ok {
				t.Errorf("NewWriter(%q) = %T", tt.format, w)
			}
		}
	}

	if _, err := NewWriter("xml", &bytes.Buffer{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

// TestTextWriter tests the terminal report.
func TestTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewTextWriter(&buf).Write(NewSummary(sampleResults()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"SPIDER RUN SUMMARY",
		"[ OK ] books",
		"[FAIL] news",
		"failed: malformed URL",
		"10 saved (10 rows)",
		"1.5s",
		"TOTAL: 2 spider(s), 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestJSONWriter tests the JSON report.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output decodes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(NewSummary(sampleResults())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			Spiders []struct {
				Name  string `json:"name"`
				State string `json:"state"`
				Error string `json:"error"`
				Stats struct {
					RowsSaved int `json:"rows_saved"`
				} `json:"stats"`
			} `json:"spiders"`
			Failed int `json:"failed"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if got.Failed != 1 || got.Spiders[0].State != "finished" || got.Spiders[1].State != "failed" {
			t.Errorf("unexpected summary %+v", got)
		}
		if got.Spiders[0].Stats.RowsSaved != 10 {
			t.Errorf("expected 10 rows, got %d", got.Spiders[0].Stats.RowsSaved)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("compact output should be a single line")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(NewSummary(sampleResults())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"spiders\"") {
			t.Errorf("expected indented output:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown report.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("table chart and alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(NewSummary(sampleResults())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Spider Run Summary",
			"`books`",
			"**Total**",
			"mermaid",
			"pie",
			"[!CAUTION]",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("no rows means no chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		results := []runner.Result{{Name: "empty", State: engine.Finished}}
		if _, err := NewMarkdownWriter(&buf).Write(NewSummary(results)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("chart should be omitted without saved rows")
		}
		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Errorf("expected tip alert:\n%s", buf.String())
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&js))

	n, err := mw.Write(NewSummary(sampleResults()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("both writers should receive output")
	}
}
