package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TextWriter outputs human-readable text reports for terminal display.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in human-readable format.
func (w *TextWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("SPIDER RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	for _, s := range summary.Spiders {
		fmt.Fprintf(&sb, "[%s] %s\n", marker(s), s.Name)
		fmt.Fprintf(&sb, "  Status:    %s\n", statusText(s))
		fmt.Fprintf(&sb, "  Pages:     %d processed, %d skipped, %d failed, %d enqueued\n",
			s.Stats.Processed, s.Stats.Skipped, s.Stats.Failed, s.Stats.Enqueued)
		fmt.Fprintf(&sb, "  Saves:     %d saved (%d rows), %d failed\n",
			s.Stats.Saved, s.Stats.RowsSaved, s.Stats.SaveFailed)
		fmt.Fprintf(&sb, "  Elapsed:   %s\n\n", s.Stats.Elapsed.Round(time.Millisecond))
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "TOTAL: %d spider(s), %d failed, %d page(s), %d row(s) saved\n",
		len(summary.Spiders), summary.Failed, summary.Total.Processed, summary.Total.RowsSaved)

	return w.output.Write([]byte(sb.String()))
}

func marker(s SpiderSummary) string {
	if s.Error != "" {
		return "FAIL"
	}
	return " OK "
}
