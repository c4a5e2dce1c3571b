package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Spider Run Summary")
	md.PlainText("")

	w.writeTable(md, summary)
	w.writeChart(md, summary)
	w.writeAlert(md, summary)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated at %s*", summary.GeneratedAt.Format(time.RFC3339))

	return len(md.String()), md.Build()
}

// writeTable writes one row per spider plus a total row.
func (w *MarkdownWriter) writeTable(md *markdown.Markdown, summary *Summary) {
	rows := make([][]string, 0, len(summary.Spiders)+1)
	for _, s := range summary.Spiders {
		rows = append(rows, []string{
			"`" + s.Name + "`",
			statusText(s),
			strconv.Itoa(s.Stats.Processed),
			strconv.Itoa(s.Stats.Skipped),
			strconv.Itoa(s.Stats.Saved),
			strconv.Itoa(s.Stats.SaveFailed),
			strconv.Itoa(s.Stats.RowsSaved),
			s.Stats.Elapsed.Round(time.Millisecond).String(),
		})
	}
	rows = append(rows, []string{
		"**Total**",
		strconv.Itoa(summary.Failed) + " failed",
		strconv.Itoa(summary.Total.Processed),
		strconv.Itoa(summary.Total.Skipped),
		strconv.Itoa(summary.Total.Saved),
		strconv.Itoa(summary.Total.SaveFailed),
		strconv.Itoa(summary.Total.RowsSaved),
		summary.Total.Elapsed.Round(time.Millisecond).String(),
	})

	md.Table(markdown.TableSet{
		Header: []string{"Spider", "Status", "Processed", "Skipped", "Saved", "Save failed", "Rows", "Elapsed"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeChart writes a mermaid pie chart of saved rows per spider.
func (w *MarkdownWriter) writeChart(md *markdown.Markdown, summary *Summary) {
	if summary.Total.RowsSaved == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Rows Saved"),
		piechart.WithShowData(true),
	)
	for _, s := range summary.Spiders {
		if s.Stats.RowsSaved > 0 {
			chart.LabelAndIntValue(s.Name, uint64(s.Stats.RowsSaved))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *Summary) {
	switch {
	case summary.Failed > 0:
		md.Cautionf("%d of %d spider(s) failed.", summary.Failed, len(summary.Spiders))
	case summary.Total.SaveFailed > 0:
		md.Warningf("%d save(s) failed; those pages will be crawled again.", summary.Total.SaveFailed)
	default:
		md.Tip("All spiders finished.")
	}
	md.PlainText("")
}
