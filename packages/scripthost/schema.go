package scripthost

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// fixtureSchema validates hostfiles before they are unmarshaled, so a typo
// in a fixture surfaces as a configuration error instead of a silently
// defaulted field.
const fixtureSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "takesnap hostfile",
  "type": "object",
  "required": ["panels"],
  "additionalProperties": false,
  "properties": {
    "frame": {"type": "integer", "minimum": 0},
    "selection": {"type": "array", "items": {"type": "string"}},
    "panels": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "camera": {"type": "string"},
          "hidden": {"type": "boolean"},
          "flags": {
            "type": "object",
            "additionalProperties": {"type": "boolean"}
          },
          "unsupportedFlags": {"type": "array", "items": {"type": "string"}},
          "isolate": {
            "type": "object",
            "additionalProperties": false,
            "properties": {"state": {"type": "boolean"}}
          },
          "capture": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "returns": {"enum": ["string", "list", "none", "invalid"]},
              "pattern": {"type": "boolean"},
              "fail": {"enum": ["", "error", "missing", "empty"]},
              "fill": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"}
            }
          }
        }
      }
    }
  }
}`

// ValidateFixture checks raw hostfile JSON against the fixture schema.
func ValidateFixture(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(fixtureSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validating hostfile: %w", err)
	}
	if result.Valid() {
		return nil
	}

	findings := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		findings = append(findings, desc.String())
	}
	return fmt.Errorf("invalid hostfile: %s", strings.Join(findings, "; "))
}
