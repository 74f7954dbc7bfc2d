package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestFieldSetJSONAlwaysHasSixKeys(t *testing.T) {
	var fs FieldSet
	fs.Set(FieldOSNum, str("4521"))

	b, err := json.Marshal(fs)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Len(t, m, 6)
	assert.Equal(t, "4521", m["os_num"])
	for _, f := range []string{"data", "cnpj", "valor_total", "solicitante", "descricao"} {
		v, ok := m[f]
		assert.True(t, ok, f)
		assert.Nil(t, v, f)
	}
}

func TestExtractionResultJSONIsFlat(t *testing.T) {
	res := ExtractionResult{Engine: EnginePatternGenerative}
	res.Set(FieldValorTotal, str("500,00"))

	b, err := json.Marshal(res)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Len(t, m, 7)
	assert.Equal(t, "pattern+generative", m["engine"])
	assert.Equal(t, "500,00", m["valor_total"])
	assert.True(t, res.Escalated())
}

func TestSetBlankIsAbsent(t *testing.T) {
	var fs FieldSet
	fs.Set(FieldDescricao, str("   "))
	assert.False(t, fs.Has(FieldDescricao))

	fs.Set(FieldDescricao, str("x"))
	fs.Set(FieldDescricao, nil)
	assert.Nil(t, fs.Get(FieldDescricao))
}

func TestMergePrefersReceiver(t *testing.T) {
	var primary, fallback FieldSet
	primary.Set(FieldOSNum, str("4521"))
	fallback.Set(FieldOSNum, str("9999"))
	fallback.Set(FieldValorTotal, str("500,00"))

	merged := primary.Merge(fallback)

	assert.Equal(t, "4521", *merged.OSNum)
	assert.Equal(t, "500,00", *merged.ValorTotal)
	assert.Nil(t, merged.CNPJ)
	// Inputs are untouched.
	assert.Nil(t, primary.ValorTotal)
}

func TestMissingAndPresent(t *testing.T) {
	var fs FieldSet
	assert.Equal(t, AllFields, fs.Missing())
	assert.Empty(t, fs.Present())

	fs.Set(FieldCNPJ, str("12.345.678/0001-90"))
	assert.Equal(t, []Field{FieldCNPJ}, fs.Present())
	assert.NotContains(t, fs.Missing(), FieldCNPJ)
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" Valor_Total ")
	require.NoError(t, err)
	assert.Equal(t, FieldValorTotal, f)

	_, err = ParseField("total")
	assert.Error(t, err)
}
