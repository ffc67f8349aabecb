package ruleset

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema describing declaration files, for editors
// and for validating files outside of Go.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(new(documentFile))
	s.Title = "formguard rule declarations"
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ruleset: encode schema: %w", err)
	}
	return out, nil
}
