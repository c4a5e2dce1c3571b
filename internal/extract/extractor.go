package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/nao1215/spider/internal/model"
)

// Extractor turns fetched content into page values.
//
// Compiled expressions are cached per Extractor. The cache is safe for
// concurrent use, but a compiled expression keeps evaluation state, so
// each spider should own its Extractor.
type Extractor struct {
	mu     sync.Mutex
	cache  map[string]*xpath.Expr
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		cache:  make(map[string]*xpath.Expr),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate compiles every path expression of tmpl.
func (e *Extractor) Validate(tmpl *model.Template) error {
	for _, f := range tmpl.Expressions() {
		if !model.IsPath(f.Value) {
			continue
		}
		if _, err := e.compile(f.Value); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

// Extract evaluates the expressions of tmpl against body.
// It returns the values keyed by field name and the row count.
// Every returned column has exactly rows elements.
func (e *Extractor) Extract(tmpl *model.Template, body []byte) (map[string][]string, int, error) {
	exprs := tmpl.Expressions()

	var doc *html.Node
	rows := -1
	values := make(map[string][]string, len(exprs))

	for _, f := range exprs {
		if !model.IsPath(f.Value) {
			continue
		}
		expr, err := e.compile(f.Value)
		if err != nil {
			return nil, 0, fmt.Errorf("field %q: %w", f.Name, err)
		}

		if doc == nil {
			doc, err = htmlquery.Parse(bytes.NewReader(body))
			if err != nil {
				return nil, 0, fmt.Errorf("failed to parse document: %w", err)
			}
		}

		col := evaluate(expr, doc)
		if !tmpl.IsList() {
			col = []string{joinTrimmed(col)}
		}
		values[f.Name] = col

		if rows < 0 {
			rows = len(col)
		}
	}

	if rows < 0 {
		rows = 0
		if !tmpl.IsList() {
			rows = 1
		}
	}

	for _, f := range exprs {
		if model.IsPath(f.Value) {
			continue
		}
		col := make([]string, rows)
		for i := range col {
			col[i] = f.Value
		}
		values[f.Name] = col
	}

	e.logger.Debug("extracted values",
		"template", tmpl.String(),
		"rows", rows,
	)
	return values, rows, nil
}

func (e *Extractor) compile(selector string) (*xpath.Expr, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if expr, ok := e.cache[selector]; ok {
		return expr, nil
	}
	expr, err := xpath.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidExpression, selector, err)
	}
	e.cache[selector] = expr
	return expr, nil
}

// evaluate runs expr and returns the matched node texts.
// Scalar results (count, string, boolean functions) yield one element.
func evaluate(expr *xpath.Expr, doc *html.Node) []string {
	switch v := expr.Evaluate(htmlquery.CreateXPathNavigator(doc)).(type) {
	case *xpath.NodeIterator:
		var out []string
		for v.MoveNext() {
			out = append(out, v.Current().Value())
		}
		return out
	case string:
		return []string{v}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(v)}
	default:
		return nil
	}
}

func joinTrimmed(texts []string) string {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(strings.TrimSpace(t))
	}
	return b.String()
}
