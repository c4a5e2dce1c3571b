package sink

import (
	"context"
	"io"
	"sync"

	"github.com/nao1215/markdown"

	"github.com/nao1215/spider/internal/model"
)

// Console writes each matrix as a Markdown table, titled by its tag.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console sink writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Save implements Sink.
func (c *Console) Save(_ context.Context, matrix model.Matrix, tag string) error {
	if err := checkMatrix(matrix); err != nil {
		return err
	}

	title := tag
	if title == "" {
		title = "result"
	}

	rows := matrix.Records()
	if rows == nil {
		rows = [][]string{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return markdown.NewMarkdown(c.w).
		H2(title).
		Table(markdown.TableSet{
			Header: matrix.Header(),
			Rows:   rows,
		}).
		PlainText("").
		Build()
}
