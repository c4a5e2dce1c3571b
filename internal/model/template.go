package model

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// HookFunc is a lifecycle callback invoked with the page being processed.
// A returned error marks the page as failed; the crawl continues.
type HookFunc func(ctx context.Context, page *Page) error

// Hooks is the capability set of lifecycle callbacks attached to a template.
// Nil slots are no-ops.
type Hooks struct {
	// BeforeDownload runs before the URL is validated and checked for duplicates.
	BeforeDownload HookFunc

	// AfterDownload runs after the page values have been extracted.
	AfterDownload HookFunc

	// BeforeSave runs after the matrix is built and before it reaches the sink.
	BeforeSave HookFunc
}

// TemplateSpec is the declarative input for NewTemplate.
type TemplateSpec struct {
	// SeedURLs are the start URLs. Only meaningful on the root template.
	SeedURLs []string

	// Expressions maps a field name to a selector. Selectors starting with
	// PathMarker are evaluated against the page; others are literals.
	Expressions Fields

	// Next names the expression whose values are the next level's URLs.
	Next string

	// Tag is the destination label passed to the sink.
	Tag string

	// Aliases maps a persisted column name to a source: an expression key,
	// the ParentSentinel, or a literal. Empty means nothing is saved.
	Aliases Fields

	// List selects list semantics (one row per match) instead of detail
	// semantics (all matches concatenated into one row).
	List bool

	// Render asks the fetcher to execute scripts before capturing content.
	Render bool

	// Method is the HTTP method used to fetch pages (GET or POST).
	Method string

	// Form is the POST form body.
	Form map[string]string

	// Header holds extra request headers.
	Header map[string]string

	// Hooks are the lifecycle callbacks.
	Hooks Hooks
}

// Template describes one level of the crawl chain.
// It is immutable after NewTemplate returns; use Chain to link templates.
type Template struct {
	seedURLs    []string
	expressions Fields
	next        string
	tag         string
	aliases     Fields
	list        bool
	render      bool
	method      string
	form        map[string]string
	header      map[string]string
	hooks       Hooks

	// child and level are assigned once by NewChain.
	child *Template
	level int
}

// NewTemplate validates spec and returns a Template.
// Seed URLs are not required here because only the root template uses
// them; NewChain enforces that the root has at least one.
func NewTemplate(spec TemplateSpec) (*Template, error) {
	if len(spec.Expressions) == 0 {
		return nil, ErrNoExpressions
	}
	if err := spec.Expressions.validate(); err != nil {
		return nil, fmt.Errorf("expressions: %w", err)
	}
	if err := spec.Aliases.validate(); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	if spec.Next != "" && !spec.Expressions.Has(spec.Next) {
		return nil, fmt.Errorf("%w: %q", ErrNextNotExpression, spec.Next)
	}

	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("unsupported method %q: must be GET or POST", spec.Method)
	}

	return &Template{
		seedURLs:    slices.Clone(spec.SeedURLs),
		expressions: spec.Expressions.Clone(),
		next:        spec.Next,
		tag:         spec.Tag,
		aliases:     spec.Aliases.Clone(),
		list:        spec.List,
		render:      spec.Render,
		method:      method,
		form:        maps.Clone(spec.Form),
		header:      maps.Clone(spec.Header),
		hooks:       spec.Hooks,
	}, nil
}

// SeedURLs returns a copy of the seed URLs.
func (t *Template) SeedURLs() []string { return slices.Clone(t.seedURLs) }

// Expressions returns the field expressions in declaration order.
func (t *Template) Expressions() Fields { return t.expressions.Clone() }

// Next returns the name of the field supplying child URLs, or "".
func (t *Template) Next() string { return t.next }

// Tag returns the sink destination label.
func (t *Template) Tag() string { return t.tag }

// Aliases returns the persisted-name → source mapping in declaration order.
func (t *Template) Aliases() Fields { return t.aliases.Clone() }

// Persists reports whether pages of this template are saved.
func (t *Template) Persists() bool { return len(t.aliases) > 0 }

// IsList reports whether the template uses list semantics.
func (t *Template) IsList() bool { return t.list }

// Render reports whether pages need script execution before capture.
func (t *Template) Render() bool { return t.render }

// Method returns the HTTP method used to fetch pages.
func (t *Template) Method() string { return t.method }

// Form returns a copy of the POST form body.
func (t *Template) Form() map[string]string { return maps.Clone(t.form) }

// Header returns a copy of the extra request headers.
func (t *Template) Header() map[string]string { return maps.Clone(t.header) }

// Hooks returns the lifecycle callbacks.
func (t *Template) Hooks() Hooks { return t.hooks }

// Child returns the next template in the chain, or nil for the last one.
func (t *Template) Child() *Template { return t.child }

// Level returns the zero-based position of the template in its chain.
func (t *Template) Level() int { return t.level }

// String returns a short description used in logs.
func (t *Template) String() string {
	kind := "detail"
	if t.list {
		kind = "list"
	}
	return fmt.Sprintf("%s#%d(%s)", kind, t.level, strings.Join(t.expressions.Names(), ","))
}
