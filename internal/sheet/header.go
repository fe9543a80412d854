// AngelaMos | 2026
// header.go

package sheet

import (
	"fmt"
	"sort"
	"strings"

	"fiscaldesk/internal/core"
)

const (
	FieldLegalName   = "legal_name"
	FieldCNPJ        = "cnpj"
	FieldTaxRegime   = "tax_regime"
	FieldResponsible = "responsible"
)

var requiredFields = []string{
	FieldLegalName,
	FieldCNPJ,
	FieldTaxRegime,
	FieldResponsible,
}

// accentFold maps the accented characters that show up in Portuguese
// spreadsheet headers onto their bare ASCII forms.
var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

// NormalizeHeader folds a header cell into its canonical matching form:
// lowercase, accents stripped, runs of whitespace collapsed to a single
// underscore.
func NormalizeHeader(cell string) string {
	lowered := strings.ToLower(strings.TrimSpace(cell))

	var b strings.Builder
	b.Grow(len(lowered))
	lastUnderscore := false
	for _, r := range lowered {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}

	return strings.TrimSuffix(b.String(), "_")
}

// HeaderMap maps canonical field names to the column index that carries
// them in a given workbook.
type HeaderMap map[string]int

// ResolveHeader matches a header row against the configured alias sets.
// Aliases are compared in normalized form; the first column matching an
// alias of a field claims that field. A header row missing any required
// field is rejected wholesale.
func ResolveHeader(row []string, aliases map[string][]string) (HeaderMap, error) {
	normalizedAliases := make(map[string]string)
	for field, names := range aliases {
		for _, name := range names {
			key := NormalizeHeader(name)
			if _, taken := normalizedAliases[key]; !taken {
				normalizedAliases[key] = field
			}
		}
	}

	resolved := make(HeaderMap)
	for col, cell := range row {
		field, ok := normalizedAliases[NormalizeHeader(cell)]
		if !ok {
			continue
		}
		if _, taken := resolved[field]; taken {
			continue
		}
		resolved[field] = col
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := resolved[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, core.ValidationError(fmt.Sprintf(
			"header row is missing required columns: %s",
			strings.Join(missing, ", ")))
	}

	return resolved, nil
}

// Value extracts a field's cell from a row, trimmed. Rows shorter than
// the header yield empty strings for the trailing columns.
func (h HeaderMap) Value(row []string, field string) string {
	col, ok := h[field]
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
