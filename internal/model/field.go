package model

import "fmt"

// PathMarker is the prefix that marks a selector as an extraction expression.
// Any other selector is a literal constant.
const PathMarker = "/"

// ParentSentinel is the alias source that stands for the parent page URL.
const ParentSentinel = "pid"

// Field is one named entry of an ordered mapping.
// In expressions, Value is a selector. In field aliases, Name is the
// persisted column name and Value is the source name.
type Field struct {
	Name  string
	Value string
}

// Fields is an ordered mapping from name to value.
//
// Design decision: We use a slice instead of a Go map because declaration
// order is significant. The first extraction expression decides the row
// count of a page and the alias order decides the column order of the
// saved matrix. Go maps have no stable iteration order.
type Fields []Field

// Get returns the value for name and whether it exists.
func (f Fields) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// Has reports whether name is declared.
func (f Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Names returns the declared names in order.
func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, field := range f {
		names[i] = field.Name
	}
	return names
}

// Clone returns a copy that shares no backing array with f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	copy(out, f)
	return out
}

// validate checks that names are non-empty and unique.
func (f Fields) validate() error {
	seen := make(map[string]struct{}, len(f))
	for _, field := range f {
		if field.Name == "" {
			return ErrEmptyFieldName
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateField, field.Name)
		}
		seen[field.Name] = struct{}{}
	}
	return nil
}

// IsPath reports whether selector is an extraction expression rather than a literal.
func IsPath(selector string) bool {
	return len(selector) >= len(PathMarker) && selector[:len(PathMarker)] == PathMarker
}
