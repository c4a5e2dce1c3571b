package model

// Matrix is a row-major table whose first row holds the column headers.
type Matrix [][]string

// Header returns the header row, or nil for an empty matrix.
func (m Matrix) Header() []string {
	if len(m) == 0 {
		return nil
	}
	return m[0]
}

// Records returns the data rows (everything after the header).
func (m Matrix) Records() [][]string {
	if len(m) <= 1 {
		return nil
	}
	return m[1:]
}

// RowCount returns the number of data rows.
func (m Matrix) RowCount() int {
	if len(m) == 0 {
		return 0
	}
	return len(m) - 1
}

// Column returns the index of the named header column, or -1.
func (m Matrix) Column(name string) int {
	for i, h := range m.Header() {
		if h == name {
			return i
		}
	}
	return -1
}

// Maps converts each data row into a header → value map.
func (m Matrix) Maps() []map[string]string {
	header := m.Header()
	records := m.Records()
	out := make([]map[string]string, len(records))
	for i, rec := range records {
		row := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				row[h] = rec[j]
			}
		}
		out[i] = row
	}
	return out
}
