// AngelaMos | 2026
// header_test.go

package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscaldesk/internal/core"
)

func testAliases() map[string][]string {
	return map[string][]string{
		"legal_name": {
			"razao_social", "razao", "nome", "empresa", "cliente",
		},
		"cnpj": {
			"cnpj", "cnpj_cpf", "documento",
		},
		"tax_regime": {
			"regime_tributario", "regime", "tributacao",
		},
		"responsible": {
			"responsavel_fiscal", "responsavel", "resp_fiscal",
		},
	}
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "razao_social", NormalizeHeader("Razão Social"))
	assert.Equal(t, "razao_social", NormalizeHeader("RAZAO   SOCIAL"))
	assert.Equal(t, "razao_social", NormalizeHeader("  razão\tsocial  "))
	assert.Equal(t, "responsavel", NormalizeHeader("Responsável"))
	assert.Equal(t, "regime_tributario", NormalizeHeader("Regime Tributário"))
	assert.Equal(t, "cnpj", NormalizeHeader("CNPJ"))
	assert.Equal(t, "", NormalizeHeader("   "))
}

func TestResolveHeaderToleratesAccentsAndCase(t *testing.T) {
	row := []string{"Razao Social", "CNPJ", "Regime", "Responsavel"}

	resolved, err := ResolveHeader(row, testAliases())
	require.NoError(t, err)

	assert.Equal(t, 0, resolved[FieldLegalName])
	assert.Equal(t, 1, resolved[FieldCNPJ])
	assert.Equal(t, 2, resolved[FieldTaxRegime])
	assert.Equal(t, 3, resolved[FieldResponsible])
}

func TestResolveHeaderFirstMatchWins(t *testing.T) {
	// two columns alias the legal name; the leftmost claims the field
	row := []string{"Empresa", "Razão Social", "CNPJ", "Regime", "Responsável"}

	resolved, err := ResolveHeader(row, testAliases())
	require.NoError(t, err)
	assert.Equal(t, 0, resolved[FieldLegalName])
}

func TestResolveHeaderIgnoresUnknownColumns(t *testing.T) {
	row := []string{"ID", "Razão Social", "CNPJ", "Telefone", "Regime", "Responsável"}

	resolved, err := ResolveHeader(row, testAliases())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved[FieldLegalName])
	assert.Equal(t, 2, resolved[FieldCNPJ])
	assert.Equal(t, 4, resolved[FieldTaxRegime])
	assert.Equal(t, 5, resolved[FieldResponsible])
}

func TestResolveHeaderMissingColumns(t *testing.T) {
	row := []string{"Razão Social", "Telefone"}

	_, err := ResolveHeader(row, testAliases())
	require.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Contains(t, err.Error(), "cnpj")
	assert.Contains(t, err.Error(), "tax_regime")
	assert.Contains(t, err.Error(), "responsible")
	assert.NotContains(t, err.Error(), "legal_name")
}

func TestHeaderMapValueShortRow(t *testing.T) {
	resolved := HeaderMap{
		FieldLegalName: 0,
		FieldCNPJ:      3,
	}

	row := []string{"  ACME  "}
	assert.Equal(t, "ACME", resolved.Value(row, FieldLegalName))
	assert.Equal(t, "", resolved.Value(row, FieldCNPJ))
	assert.Equal(t, "", resolved.Value(row, FieldTaxRegime))
}
