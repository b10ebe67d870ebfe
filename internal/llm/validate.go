package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema guards raw extraction responses before sanitization: the
// top-level value must be an object, and "wines", when present, must be null
// or a list. Anything else is a parse failure. Item shapes stay
// unconstrained here; sanitization coerces them field by field.
var payloadSchema = jsonschema.MustCompileString("payload.json", `{
	"type": "object",
	"properties": {
		"wines": {"type": ["array", "null"]}
	}
}`)

func validatePayload(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := payloadSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
