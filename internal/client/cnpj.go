// AngelaMos | 2026
// cnpj.go

package client

import (
	"fmt"
	"strings"

	"fiscaldesk/internal/core"
)

const CNPJLength = 14

// NormalizeCNPJ strips everything but digits, so "12.345.678/0001-99"
// and "12345678000199" compare equal.
func NormalizeCNPJ(raw string) string {
	var sb strings.Builder
	sb.Grow(CNPJLength)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// ParseCNPJ normalizes and validates the length in one step.
func ParseCNPJ(raw string) (string, error) {
	cnpj := NormalizeCNPJ(raw)
	if len(cnpj) != CNPJLength {
		return "", fmt.Errorf(
			"cnpj must have %d digits, got %d: %w",
			CNPJLength, len(cnpj), core.ErrInvalidInput)
	}
	return cnpj, nil
}
