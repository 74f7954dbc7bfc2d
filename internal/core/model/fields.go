package model

import (
	"fmt"
	"strings"
)

// Field names one of the six extracted service-order attributes.
type Field string

const (
	FieldOSNum       Field = "os_num"
	FieldData        Field = "data"
	FieldCNPJ        Field = "cnpj"
	FieldValorTotal  Field = "valor_total"
	FieldSolicitante Field = "solicitante"
	FieldDescricao   Field = "descricao"
)

// AllFields lists every field in response order.
var AllFields = []Field{
	FieldOSNum,
	FieldData,
	FieldCNPJ,
	FieldValorTotal,
	FieldSolicitante,
	FieldDescricao,
}

// ParseField resolves a field name as it appears in JSON and config files.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllFields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", name)
}

// FieldSet holds the six extracted values. A nil pointer means the field
// was not extracted; it is never represented by an empty string.
type FieldSet struct {
	OSNum       *string `json:"os_num"`
	Data        *string `json:"data"`
	CNPJ        *string `json:"cnpj"`
	ValorTotal  *string `json:"valor_total"`
	Solicitante *string `json:"solicitante"`
	Descricao   *string `json:"descricao"`
}

// Value returns a present value for s, or nil when s is blank.
func Value(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func (fs *FieldSet) slot(f Field) **string {
	switch f {
	case FieldOSNum:
		return &fs.OSNum
	case FieldData:
		return &fs.Data
	case FieldCNPJ:
		return &fs.CNPJ
	case FieldValorTotal:
		return &fs.ValorTotal
	case FieldSolicitante:
		return &fs.Solicitante
	case FieldDescricao:
		return &fs.Descricao
	}
	return nil
}

// Get returns the value of f, nil if absent or unknown.
func (fs FieldSet) Get(f Field) *string {
	if p := fs.slot(f); p != nil {
		return *p
	}
	return nil
}

// Set stores v under f. Blank values are stored as absent.
func (fs *FieldSet) Set(f Field, v *string) {
	p := fs.slot(f)
	if p == nil {
		return
	}
	if v != nil {
		v = Value(*v)
	}
	*p = v
}

// Has reports whether f holds a value.
func (fs FieldSet) Has(f Field) bool {
	return fs.Get(f) != nil
}

// Missing returns the absent fields in AllFields order.
func (fs FieldSet) Missing() []Field {
	var out []Field
	for _, f := range AllFields {
		if !fs.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Present returns the fields holding a value in AllFields order.
func (fs FieldSet) Present() []Field {
	var out []Field
	for _, f := range AllFields {
		if fs.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Merge fills the gaps of fs with values from fallback. A value already
// present in fs is never replaced.
func (fs FieldSet) Merge(fallback FieldSet) FieldSet {
	out := fs
	for _, f := range AllFields {
		if !out.Has(f) {
			out.Set(f, fallback.Get(f))
		}
	}
	return out
}
