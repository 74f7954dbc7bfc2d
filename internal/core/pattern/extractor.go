// Package pattern extracts service-order fields with fixed regular expressions.
package pattern

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agenthands/ordex/internal/core/model"
)

type rule struct {
	field model.Field
	re    *regexp.Regexp
	group int
}

// Text pulled from PDFs often separates "R$" or "OS" from the value with a
// no-break space, which \s alone does not match.
const space = `[\s\p{Zs}]`

var rules = []rule{
	{model.FieldOSNum, regexp.MustCompile(`(?i)(?:OS|Ordem de Servi[cç]o)` + space + `*(?:n[ºo]` + space + `*)?(\d{3,})`), 1},
	{model.FieldData, regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`), 1},
	{model.FieldCNPJ, regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`), 0},
	{model.FieldValorTotal, regexp.MustCompile(`R\$` + space + `*([\d.,]+)`), 1},
	{model.FieldSolicitante, regexp.MustCompile(`(?i)(?:Solicitante|Respons[aá]vel)` + space + `*[:\-]` + space + `*(.+)`), 1},
	{model.FieldDescricao, regexp.MustCompile(`(?i)(?:Descri[cç][aã]o|Objeto)` + space + `*[:\-]` + space + `*(.+)`), 1},
}

// Extractor is the stateless pattern extractor. The zero value is ready to use.
type Extractor struct{}

// Extract applies every field rule to text independently and keeps the
// first match of each.
func (Extractor) Extract(text string) model.FieldSet {
	return Extract(text)
}

// Extract is the package-level form of Extractor.Extract.
func Extract(text string) model.FieldSet {
	var fs model.FieldSet
	for _, r := range rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		// Line captures may carry a CR from Windows line endings.
		v := strings.TrimRightFunc(m[r.group], unicode.IsSpace)
		fs.Set(r.field, &v)
	}
	return fs
}
