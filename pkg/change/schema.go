package change

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"gitlab.com/tozd/go/errors"
)

// SchemaID identifies the published rule list schema.
const SchemaID = "https://github.com/walteh/multichange/schema/changes.json"

// Schema returns the JSON Schema describing a saved rule list. No field is
// required since imports fill in defaults.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(List{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "multichange rule list"
	s.Description = "Ordered find/replace rules applied in sequence to each document."

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Errorf("marshaling schema: %w", err)
	}
	return data, nil
}
