package layout

import "strings"

// HeaderMap maps a normalized header to its 1-based column.
type HeaderMap map[string]int

// NormalizeHeader trims and case-folds a header for lookup.
func NormalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// BuildHeaderMap indexes a header row. Blank cells are skipped; a repeated
// header resolves to its rightmost occurrence.
func BuildHeaderMap(row []string) HeaderMap {
	m := make(HeaderMap, len(row))
	for i, header := range row {
		if key := NormalizeHeader(header); key != "" {
			m[key] = i + 1
		}
	}
	return m
}

// Column resolves a header to its column.
func (m HeaderMap) Column(header string) (int, bool) {
	col, ok := m[NormalizeHeader(header)]
	return col, ok
}

// Has reports whether the header is present.
func (m HeaderMap) Has(header string) bool {
	_, ok := m[NormalizeHeader(header)]
	return ok
}

func (m HeaderMap) set(header string, col int) {
	m[NormalizeHeader(header)] = col
}
