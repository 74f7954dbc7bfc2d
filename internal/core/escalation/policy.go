// Package escalation decides when pattern output needs the generative fallback.
package escalation

import "github.com/agenthands/ordex/internal/core/model"

// DefaultCriticalFields are the fields most often written as free prose,
// whose absence triggers the fallback unless configured otherwise.
var DefaultCriticalFields = []model.Field{
	model.FieldOSNum,
	model.FieldDescricao,
	model.FieldValorTotal,
}

// Policy is a pure predicate over a FieldSet.
type Policy struct {
	critical []model.Field
}

// NewPolicy builds a policy over the given critical fields, or over
// DefaultCriticalFields when none are given.
func NewPolicy(critical ...model.Field) *Policy {
	if len(critical) == 0 {
		critical = DefaultCriticalFields
	}
	return &Policy{critical: append([]model.Field(nil), critical...)}
}

// CriticalFields returns a copy of the configured critical set.
func (p *Policy) CriticalFields() []model.Field {
	return append([]model.Field(nil), p.critical...)
}

// NeedsFallback is true iff any critical field is absent in fs.
func (p *Policy) NeedsFallback(fs model.FieldSet) bool {
	return len(p.MissingCritical(fs)) > 0
}

// MissingCritical lists the critical fields absent in fs.
func (p *Policy) MissingCritical(fs model.FieldSet) []model.Field {
	var out []model.Field
	for _, f := range p.critical {
		if !fs.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
