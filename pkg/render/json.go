package render

import (
	"encoding/json"

	"github.com/BrennerSpear/clarity/pkg/errors"
)

// RenderJSON renders a diagram as pretty-printed JSON, the machine-facing
// counterpart of [RenderSVG]. The document round-trips through
// [ParseDiagram].
func RenderJSON(d Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram")
	}
	return append(data, '\n'), nil
}

// ParseDiagram decodes a diagram JSON document.
func ParseDiagram(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	return d, nil
}
