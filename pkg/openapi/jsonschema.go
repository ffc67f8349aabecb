package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formguard/pkg/ruleset"
)

// ErrNoProperties is returned for a schema that declares no properties.
var ErrNoProperties = errors.New("openapi: schema declares no properties")

// SchemaDeclarations derives rules from a standalone JSON Schema object
// written as JSON or YAML. Its properties map to fields the same way a request
// body does. The ruleset is named form, or the schema title when form is
// empty. $ref pointers are not followed; referenced properties are skipped.
func SchemaDeclarations(ctx context.Context, doc Document, form string) (ruleset.Ruleset, error) {
	if err := ctx.Err(); err != nil {
		return ruleset.Ruleset{}, err
	}
	data, err := schemaJSON(doc.Raw())
	if err != nil {
		return ruleset.Ruleset{}, fmt.Errorf("openapi: decode schema %s: %w", doc.Location(), err)
	}

	var schema openapi3.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return ruleset.Ruleset{}, fmt.Errorf("openapi: decode schema %s: %w", doc.Location(), err)
	}
	if len(schema.Properties) == 0 && len(schema.AllOf) == 0 {
		return ruleset.Ruleset{}, fmt.Errorf("%w: %s", ErrNoProperties, doc.Location())
	}
	if form == "" {
		form = schema.Title
	}
	return declare(form, doc.Location(), &schema), nil
}

func schemaJSON(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}
	if trimmed[0] == '{' {
		return trimmed, nil
	}
	var value any
	if err := yaml.Unmarshal(trimmed, &value); err != nil {
		return nil, err
	}
	return json.Marshal(value)
}
