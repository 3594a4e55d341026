package docmerge

import (
	"sort"
	"strings"
)

// AutoMap proposes a placeholder-to-column mapping. Each placeholder is
// resolved through three tiers, taking the first column in column-list
// order that matches:
//
//  1. exact match
//  2. case-insensitive exact match
//  3. case-insensitive substring match, in either direction
//
// Placeholders with no match in any tier are omitted from the result;
// the caller decides whether unmapped placeholders are an error.
func AutoMap(placeholders, columns []string) map[string]string {
	mapping := make(map[string]string, len(placeholders))

	for _, ph := range placeholders {
		if col, ok := matchColumn(ph, columns); ok {
			mapping[ph] = col
		}
	}

	return mapping
}

func matchColumn(placeholder string, columns []string) (string, bool) {
	for _, col := range columns {
		if col == placeholder {
			return col, true
		}
	}

	for _, col := range columns {
		if strings.EqualFold(col, placeholder) {
			return col, true
		}
	}

	lower := strings.ToLower(placeholder)
	for _, col := range columns {
		colLower := strings.ToLower(col)
		if strings.Contains(colLower, lower) || strings.Contains(lower, colLower) {
			return col, true
		}
	}

	return "", false
}

// ValidateMapping returns the mapped column names that no longer exist
// in the given column list, sorted alphabetically. An empty result
// means the mapping is usable as-is. Mappings go stale when a new data
// file is loaded over an old mapping.
func ValidateMapping(mapping map[string]string, columns []string) []string {
	existing := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		existing[col] = struct{}{}
	}

	var stale []string
	seen := make(map[string]struct{})
	for _, col := range mapping {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		stale = append(stale, col)
	}

	sort.Strings(stale)
	return stale
}
