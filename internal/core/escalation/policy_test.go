package escalation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/ordex/internal/core/model"
)

func fieldSet(fields ...model.Field) model.FieldSet {
	var fs model.FieldSet
	for _, f := range fields {
		v := "x"
		fs.Set(f, &v)
	}
	return fs
}

func TestDefaultPolicy(t *testing.T) {
	p := NewPolicy()
	assert.Equal(t, DefaultCriticalFields, p.CriticalFields())

	tests := []struct {
		name    string
		present []model.Field
		want    bool
	}{
		{"empty", nil, true},
		{"all critical", []model.Field{model.FieldOSNum, model.FieldDescricao, model.FieldValorTotal}, false},
		{"missing valor_total", []model.Field{model.FieldOSNum, model.FieldDescricao}, true},
		{"missing os_num", []model.Field{model.FieldDescricao, model.FieldValorTotal, model.FieldCNPJ}, true},
		{"only non-critical", []model.Field{model.FieldData, model.FieldCNPJ, model.FieldSolicitante}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.NeedsFallback(fieldSet(tt.present...)))
		})
	}
}

func TestNonCriticalAbsenceNeverEscalates(t *testing.T) {
	p := NewPolicy()
	fs := fieldSet(model.FieldOSNum, model.FieldDescricao, model.FieldValorTotal)

	assert.False(t, p.NeedsFallback(fs))
	assert.Empty(t, p.MissingCritical(fs))
}

func TestCustomPolicy(t *testing.T) {
	p := NewPolicy(model.FieldCNPJ)

	assert.True(t, p.NeedsFallback(fieldSet(model.FieldOSNum)))
	assert.False(t, p.NeedsFallback(fieldSet(model.FieldCNPJ)))
	assert.Equal(t, []model.Field{model.FieldCNPJ}, p.MissingCritical(model.FieldSet{}))
}
