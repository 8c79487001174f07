package validator

import (
	"fmt"

	"github.com/ashutoshrp06/sitesmith/internal/types"
)

type ArgumentValidator struct{}

func NewArgumentValidator() *ArgumentValidator {
	return &ArgumentValidator{}
}

// Validate checks model-supplied arguments against a tool descriptor and
// returns them as strings. Unknown keys are ignored.
func (v *ArgumentValidator) Validate(desc types.ToolDescriptor, args map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(desc.Parameters))

	for _, p := range desc.Parameters {
		raw, exists := args[p.Name]
		if !exists || raw == nil {
			if p.Required {
				return nil, fmt.Errorf("missing required parameter: %s", p.Name)
			}
			continue
		}

		switch val := raw.(type) {
		case string:
			out[p.Name] = val
		case fmt.Stringer:
			out[p.Name] = val.String()
		default:
			if p.Type == "string" {
				return nil, fmt.Errorf("parameter %s must be a string, got %T", p.Name, raw)
			}
			out[p.Name] = fmt.Sprint(val)
		}
	}

	return out, nil
}
