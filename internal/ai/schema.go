package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const requestSchema = `{
  "type": "object",
  "required": ["input_data"],
  "properties": {
    "input_data": {
      "type": "array",
      "minItems": 1,
      "maxItems": 1,
      "items": {
        "type": "object",
        "required": ["fields", "values"],
        "properties": {
          "fields": {"type": "array", "items": {"type": "string"}},
          "values": {
            "type": "array",
            "maxItems": 10,
            "items": {"type": "array", "items": {"type": ["string", "integer"]}}
          }
        }
      }
    }
  }
}`

var requestSchemaLoader = gojsonschema.NewStringLoader(requestSchema)

// ValidateRequest checks a request against the wire contract before it is
// sent: one input block, at most ten rows, string or integer cells, and
// every row as wide as the field list.
func ValidateRequest(req *ScoringRequest) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	result, err := gojsonschema.Validate(requestSchemaLoader, gojsonschema.NewGoLoader(req))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %s", strings.Join(errs, "; "))
	}
	block := req.InputData[0]
	for i, row := range block.Values {
		if len(row) != len(block.Fields) {
			return fmt.Errorf("request validation failed: row %d has %d values for %d fields", i, len(row), len(block.Fields))
		}
	}
	return nil
}
