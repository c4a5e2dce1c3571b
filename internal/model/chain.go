package model

import "fmt"

// Chain is a finite, linear sequence of templates: a list page, then a
// detail page, then optionally further levels.
//
// Design decision: We build the whole chain at once from an ordered slice
// instead of appending children to a mutable tail. The chain is linked
// exactly once, so cycles and branches cannot be expressed and nothing
// can change it after the crawl starts.
type Chain struct {
	templates []*Template
}

// NewChain links the given templates in order and validates the result.
// The templates are copied, so the arguments can be reused in other chains.
func NewChain(templates ...*Template) (*Chain, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyChain
	}
	for i, t := range templates {
		if t == nil {
			return nil, fmt.Errorf("template %d is nil", i)
		}
	}
	if len(templates[0].seedURLs) == 0 {
		return nil, ErrNoSeedURLs
	}

	linked := make([]*Template, len(templates))
	for i, t := range templates {
		cp := *t
		cp.level = i
		cp.child = nil
		linked[i] = &cp
	}
	for i := 0; i < len(linked)-1; i++ {
		linked[i].child = linked[i+1]
	}

	return &Chain{templates: linked}, nil
}

// Root returns the first template of the chain.
func (c *Chain) Root() *Template {
	return c.templates[0]
}

// Len returns the number of templates.
func (c *Chain) Len() int {
	return len(c.templates)
}

// At returns the template at level i.
func (c *Chain) At(i int) *Template {
	return c.templates[i]
}

// Templates returns the templates in order. The slice is a copy.
func (c *Chain) Templates() []*Template {
	out := make([]*Template, len(c.templates))
	copy(out, c.templates)
	return out
}
