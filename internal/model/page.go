package model

import "fmt"

// Page is one unit of crawl work: a URL bound to the template that governs
// it, plus the state produced while it is processed.
//
// Design decision: A page holds a non-owning pointer to its template.
// Many pages share one template and none of them modify it, so the
// template needs no copying or locking.
type Page struct {
	// ParentURL is the URL of the page that produced this one.
	// Empty for seed pages.
	ParentURL string

	// URL is the address fetched for this page.
	URL string

	// Template governs extraction and saving for this page.
	Template *Template

	// Values maps a field name to its extracted column.
	// Empty until extraction runs.
	Values map[string][]string

	// Rows is the row count established by extraction.
	Rows int

	// Matrix is the transformed, header-first table. Nil until the
	// template's aliases are applied.
	Matrix Matrix
}

// NewSeedPage creates a page for one of the root template's seed URLs.
func NewSeedPage(url string, tmpl *Template) *Page {
	return &Page{URL: url, Template: tmpl}
}

// NewChildPage creates a page derived from parent's next-field value.
func NewChildPage(parent *Page, url string) *Page {
	return &Page{
		ParentURL: parent.URL,
		URL:       url,
		Template:  parent.Template.Child(),
	}
}

// HasParent reports whether the page was derived from another page.
func (p *Page) HasParent() bool {
	return p.ParentURL != ""
}

// Extracted reports whether extraction has populated the page values.
func (p *Page) Extracted() bool {
	return p.Values != nil
}

// NextURLs returns the values of the template's next field, or nil when
// the template has no next field or no child template.
func (p *Page) NextURLs() []string {
	if p.Template == nil || p.Template.Next() == "" || p.Template.Child() == nil {
		return nil
	}
	return p.Values[p.Template.Next()]
}

// String returns a short description used in logs.
func (p *Page) String() string {
	return fmt.Sprintf("page(%s <- %q)", p.URL, p.ParentURL)
}
