// AngelaMos | 2026
// cnpj_test.go

package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscaldesk/internal/core"
)

func TestNormalizeCNPJ(t *testing.T) {
	assert.Equal(t, "12345678000199", NormalizeCNPJ("12.345.678/0001-99"))
	assert.Equal(t, "12345678000199", NormalizeCNPJ(" 12345678000199 "))
	assert.Equal(t, "00000000000000", NormalizeCNPJ("00.000.000/0000-00"))
	assert.Equal(t, "", NormalizeCNPJ("no digits here"))
}

func TestParseCNPJ(t *testing.T) {
	cnpj, err := ParseCNPJ("12.345.678/0001-99")
	require.NoError(t, err)
	assert.Equal(t, "12345678000199", cnpj)

	_, err = ParseCNPJ("1234567800019")
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = ParseCNPJ("123456780001990")
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = ParseCNPJ("")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}
