package extraction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/agenthands/ordex/internal/core/common"
	"github.com/agenthands/ordex/internal/core/model"
)

// ErrInvalidResponse wraps every reason a generative response is rejected.
var ErrInvalidResponse = errors.New("invalid generative response")

const fieldSetSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "os_num":      {"type": ["string", "null"]},
    "data":        {"type": ["string", "null"]},
    "cnpj":        {"type": ["string", "null"]},
    "valor_total": {"type": ["string", "null"]},
    "solicitante": {"type": ["string", "null"]},
    "descricao":   {"type": ["string", "null"]}
  }
}`

var schema = jsonschema.MustCompileString("fieldset.json", fieldSetSchema)

// ParseFields turns a raw generative response into a FieldSet. Numbers are
// coerced to their literal text, blank strings become absent and keys outside
// the six fields are dropped; anything else that does not fit the schema
// rejects the whole response.
func ParseFields(raw string) (model.FieldSet, []string, error) {
	obj, err := common.ParseJSON[map[string]any](raw)
	if err != nil {
		return model.FieldSet{}, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	dropped := sanitize(obj)

	if err := schema.Validate(obj); err != nil {
		return model.FieldSet{}, dropped, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var fs model.FieldSet
	for _, f := range model.AllFields {
		if s, ok := obj[string(f)].(string); ok {
			fs.Set(f, &s)
		}
	}
	return fs, dropped, nil
}

func sanitize(m map[string]any) []string {
	var dropped []string
	known := make(map[string]struct{}, len(model.AllFields))
	for _, f := range model.AllFields {
		known[string(f)] = struct{}{}
	}

	for k, v := range m {
		if _, ok := known[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		switch t := v.(type) {
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				m[k] = nil
				continue
			}
			m[k] = s
		}
	}
	return dropped
}
