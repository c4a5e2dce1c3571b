package transform

import (
	"fmt"
	"slices"

	"github.com/nao1215/spider/internal/model"
)

// Transform builds the matrix for page from its template's field aliases.
// It returns nil when the template persists nothing.
//
// For list pages the selected columns must all have the same length;
// otherwise ErrRowCountMismatch is returned and nothing is truncated.
// Detail pages are exempt because extraction already yields one row.
func Transform(page *model.Page) (model.Matrix, error) {
	aliases := page.Template.Aliases()
	if len(aliases) == 0 {
		return nil, nil
	}

	var (
		header   []string
		columns  [][]string
		deferred model.Fields
	)
	for _, a := range aliases {
		col, ok := page.Values[a.Value]
		if !ok {
			deferred = append(deferred, a)
			continue
		}
		header = append(header, a.Name)
		columns = append(columns, col)
	}

	rows := page.Rows
	if len(columns) > 0 {
		rows = len(columns[0])
		if page.Template.IsList() {
			for i, col := range columns[1:] {
				if len(col) != rows {
					return nil, fmt.Errorf("%w: column %q has %d values, column %q has %d",
						ErrRowCountMismatch, header[0], rows, header[i+1], len(col))
				}
			}
		}
	}

	matrix := make(model.Matrix, rows+1)
	matrix[0] = header
	for r := 1; r <= rows; r++ {
		record := make([]string, len(columns), len(columns)+len(deferred))
		for c, col := range columns {
			if r-1 < len(col) {
				record[c] = col[r-1]
			}
		}
		matrix[r] = record
	}

	parentDone := false
	var literals model.Fields
	for _, a := range deferred {
		if a.Value != model.ParentSentinel {
			literals = append(literals, a)
			continue
		}
		if !parentDone {
			matrix = appendColumn(matrix, a.Name, page.ParentURL)
			parentDone = true
		}
	}
	for _, a := range literals {
		matrix = appendColumn(matrix, a.Name, a.Value)
	}

	return matrix, nil
}

// appendColumn adds a column named name whose value is v in every row.
func appendColumn(m model.Matrix, name, v string) model.Matrix {
	m[0] = append(slices.Clip(m[0]), name)
	for r := 1; r < len(m); r++ {
		m[r] = append(m[r], v)
	}
	return m
}
