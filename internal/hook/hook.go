package hook

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/spider/internal/model"
)

// Names of the built-in hooks.
const (
	ResolveLinks  = "resolve_links"
	TrimSpace     = "trim_space"
	DropFragments = "drop_fragments"
)

var registry = map[string]model.HookFunc{
	ResolveLinks:  resolveLinks,
	TrimSpace:     trimSpace,
	DropFragments: dropFragments,
}

// Lookup returns the built-in hook registered under name.
func Lookup(name string) (model.HookFunc, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Names returns the registered hook names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Compose runs fns in order and stops at the first error.
// Nil entries are skipped. It returns nil when no hook remains.
func Compose(fns ...model.HookFunc) model.HookFunc {
	var chain []model.HookFunc
	for _, fn := range fns {
		if fn != nil {
			chain = append(chain, fn)
		}
	}
	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	}
	return func(ctx context.Context, page *model.Page) error {
		for _, fn := range chain {
			if err := fn(ctx, page); err != nil {
				return err
			}
		}
		return nil
	}
}

// resolveLinks makes every value of the next column absolute against the
// page URL, so relative hrefs become fetchable child URLs.
func resolveLinks(_ context.Context, page *model.Page) error {
	next := page.Template.Next()
	if next == "" {
		return nil
	}
	base, err := url.Parse(page.URL)
	if err != nil {
		return fmt.Errorf("resolve links: invalid page URL %q: %w", page.URL, err)
	}

	col := page.Values[next]
	for i, v := range col {
		ref, err := url.Parse(strings.TrimSpace(v))
		if err != nil {
			// Left as is; the engine rejects it when it becomes a page.
			continue
		}
		col[i] = base.ResolveReference(ref).String()
	}
	return nil
}

// trimSpace trims surrounding whitespace from every extracted value.
func trimSpace(_ context.Context, page *model.Page) error {
	for _, col := range page.Values {
		for i, v := range col {
			col[i] = strings.TrimSpace(v)
		}
	}
	return nil
}

// dropFragments strips the "#fragment" part of every next-column value.
func dropFragments(_ context.Context, page *model.Page) error {
	next := page.Template.Next()
	if next == "" {
		return nil
	}
	col := page.Values[next]
	for i, v := range col {
		if before, _, found := strings.Cut(v, "#"); found {
			col[i] = before
		}
	}
	return nil
}
