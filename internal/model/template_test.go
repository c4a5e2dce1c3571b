package model

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

// validSpec returns a minimal valid list template spec.
// Tests modify specific fields to test validation rules.
func validSpec() TemplateSpec {
	return TemplateSpec{
		SeedURLs:    []string{"http://list.example.com"},
		Expressions: Fields{{Name: "link", Value: "//a/@href"}},
		Next:        "link",
		List:        true,
	}
}

// TestNewTemplate tests template construction and validation.
func TestNewTemplate(t *testing.T) {
	t.Parallel()

	t.Run("valid spec builds a template", func(t *testing.T) {
		t.Parallel()

		tmpl, err := NewTemplate(validSpec())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !tmpl.IsList() {
			t.Error("expected list template")
		}
		if tmpl.Next() != "link" {
			t.Errorf("expected next 'link', got %q", tmpl.Next())
		}
		if tmpl.Method() != http.MethodGet {
			t.Errorf("expected default method GET, got %q", tmpl.Method())
		}
		if tmpl.Persists() {
			t.Error("template without aliases must not persist")
		}
	})

	t.Run("empty expressions returns ErrNoExpressions", func(t *testing.T) {
		t.Parallel()

		spec := validSpec()
		spec.Expressions = nil
		spec.Next = ""

		if _, err := NewTemplate(spec); !errors.Is(err, ErrNoExpressions) {
			t.Errorf("expected ErrNoExpressions, got %v", err)
		}
	})

	t.Run("next field not in expressions returns ErrNextNotExpression", func(t *testing.T) {
		t.Parallel()

		spec := validSpec()
		spec.Next = "href"

		if _, err := NewTemplate(spec); !errors.Is(err, ErrNextNotExpression) {
			t.Errorf("expected ErrNextNotExpression, got %v", err)
		}
	})

	t.Run("duplicate expression returns ErrDuplicateField", func(t *testing.T) {
		t.Parallel()

		spec := validSpec()
		spec.Expressions = append(spec.Expressions, Field{Name: "link", Value: "//b"})

		if _, err := NewTemplate(spec); !errors.Is(err, ErrDuplicateField) {
			t.Errorf("expected ErrDuplicateField, got %v", err)
		}
	})

	t.Run("empty alias name returns ErrEmptyFieldName", func(t *testing.T) {
		t.Parallel()

		spec := validSpec()
		spec.Aliases = Fields{{Name: "", Value: "link"}}

		if _, err := NewTemplate(spec); !errors.Is(err, ErrEmptyFieldName) {
			t.Errorf("expected ErrEmptyFieldName, got %v", err)
		}
	})

	t.Run("method is normalized and validated", func(t *testing.T) {
		t.Parallel()

		spec := validSpec()
		spec.Method = " post "
		tmpl, err := NewTemplate(spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tmpl.Method() != http.MethodPost {
			t.Errorf("expected POST, got %q", tmpl.Method())
		}

		spec.Method = "DELETE"
		if _, err := NewTemplate(spec); err == nil {
			t.Error("expected error for DELETE method")
		}
	})

	t.Run("spec is copied", func(t *testing.T) {
		t.Parallel()

		spec := validSpec()
		spec.Form = map[string]string{"q": "go"}
		tmpl, err := NewTemplate(spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		spec.SeedURLs[0] = "http://changed.example.com"
		spec.Expressions[0].Value = "//changed"
		spec.Form["q"] = "changed"

		if tmpl.SeedURLs()[0] != "http://list.example.com" {
			t.Error("seed URLs were mutated through the TemplateSpec")
		}
		if v, _ := tmpl.Expressions().Get("link"); v != "//a/@href" {
			t.Error("expressions were mutated through the TemplateSpec")
		}
		if tmpl.Form()["q"] != "go" {
			t.Error("form was mutated through the TemplateSpec")
		}
	})

	t.Run("hooks are kept", func(t *testing.T) {
		t.Parallel()

		called := false
		spec := validSpec()
		spec.Hooks.AfterDownload = func(_ context.Context, _ *Page) error {
			called = true
			return nil
		}
		tmpl, err := NewTemplate(spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := tmpl.Hooks().AfterDownload(context.Background(), &Page{}); err != nil {
			t.Fatalf("unexpected hook error: %v", err)
		}
		if !called {
			t.Error("expected hook to be called")
		}
		if tmpl.Hooks().BeforeSave != nil {
			t.Error("unset hook should be nil")
		}
	})
}

// TestIsPath tests selector classification.
func TestIsPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		selector string
		want     bool
	}{
		{"/html/body", true},
		{"//a/@href", true},
		{"T0", false},
		{"", false},
		{"pid", false},
		{" /a", false},
	}

	for _, tt := range tests {
		if got := IsPath(tt.selector); got != tt.want {
			t.Errorf("IsPath(%q) = %v, want %v", tt.selector, got, tt.want)
		}
	}
}

// TestFields tests ordered field lookups.
func TestFields(t *testing.T) {
	t.Parallel()

	f := Fields{{Name: "b", Value: "2"}, {Name: "a", Value: "1"}}

	if v, ok := f.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if f.Has("c") {
		t.Error("Has(c) should be false")
	}
	names := f.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Names() should keep declaration order, got %v", names)
	}
}
