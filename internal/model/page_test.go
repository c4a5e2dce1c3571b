package model

import "testing"

// TestMatrix tests header and record access on a matrix.
func TestMatrix(t *testing.T) {
	t.Parallel()

	t.Run("header and records", func(t *testing.T) {
		t.Parallel()

		m := Matrix{{"a", "b"}, {"1", "2"}, {"3", "4"}}

		if got := m.Header(); len(got) != 2 || got[0] != "a" {
			t.Errorf("unexpected header %v", got)
		}
		if m.RowCount() != 2 {
			t.Errorf("expected 2 rows, got %d", m.RowCount())
		}
		if m.Column("b") != 1 {
			t.Errorf("expected column b at 1, got %d", m.Column("b"))
		}
		if m.Column("z") != -1 {
			t.Error("missing column should be -1")
		}

		maps := m.Maps()
		if len(maps) != 2 || maps[1]["b"] != "4" {
			t.Errorf("unexpected maps %v", maps)
		}
	})

	t.Run("empty matrix", func(t *testing.T) {
		t.Parallel()

		var m Matrix
		if m.Header() != nil || m.Records() != nil || m.RowCount() != 0 {
			t.Error("empty matrix should have no header, records or rows")
		}
	})

	t.Run("header only", func(t *testing.T) {
		t.Parallel()

		m := Matrix{{"a"}}
		if m.RowCount() != 0 {
			t.Errorf("expected 0 rows, got %d", m.RowCount())
		}
		if len(m.Maps()) != 0 {
			t.Error("expected no maps")
		}
	})
}

// TestPageExtracted tests the extraction state of a page.
func TestPageExtracted(t *testing.T) {
	t.Parallel()

	page := &Page{URL: "http://a"}
	if page.Extracted() {
		t.Error("new page should not be extracted")
	}
	if page.HasParent() {
		t.Error("seed page should have no parent")
	}

	page.Values = map[string][]string{}
	if !page.Extracted() {
		t.Error("page with values should be extracted")
	}
}
