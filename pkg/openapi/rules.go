package openapi

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/ruleset"
)

// MessagesExtension lets a property override the message of its derived
// rules: `x-validation-messages: {minLength: "Too short"}`.
const MessagesExtension = "x-validation-messages"

// ErrOperationNotFound is returned when the document has no such operation.
var ErrOperationNotFound = errors.New("openapi: operation not found")

var formMediaTypes = []string{
	"application/x-www-form-urlencoded",
	"multipart/form-data",
	"application/json",
}

// Operations lists the operation ids of a document in sorted order.
// Operations without an id are listed as "<method>:<path>".
func Operations(ctx context.Context, doc Document) ([]string, error) {
	spec, err := parse(ctx, doc)
	if err != nil {
		return nil, err
	}
	var out []string
	for id := range operations(spec) {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Declarations derives the rules of every request body property of the
// operation. Nested object properties are named "parent.child". Fields come
// out sorted by name.
func Declarations(ctx context.Context, doc Document, operationID string) (ruleset.Ruleset, error) {
	spec, err := parse(ctx, doc)
	if err != nil {
		return ruleset.Ruleset{}, err
	}
	op, ok := operations(spec)[operationID]
	if !ok {
		return ruleset.Ruleset{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	schema := requestSchema(op)
	if schema == nil {
		return ruleset.Ruleset{}, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}

	return declare(operationID, doc.Location(), schema), nil
}

func declare(form, source string, schema *openapi3.Schema) ruleset.Ruleset {
	rs := ruleset.Ruleset{Form: form, Source: source}
	collect(&rs, "", schema)
	sort.SliceStable(rs.Fields, func(i, j int) bool {
		return rs.Fields[i].Name < rs.Fields[j].Name
	})
	return rs
}

func parse(ctx context.Context, doc Document) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return spec, nil
}

func operations(spec *openapi3.T) map[string]*openapi3.Operation {
	out := make(map[string]*openapi3.Operation)
	if spec.Paths == nil {
		return out
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out[id] = op
		}
	}
	return out
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range formMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func collect(rs *ruleset.Ruleset, prefix string, schema *openapi3.Schema) {
	properties, required := flatten(schema)
	for name, ref := range properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		prop := ref.Value
		if hasType(prop, openapi3.TypeObject) && len(prop.Properties) > 0 {
			collect(rs, path, prop)
			continue
		}
		list := propertyRules(prop, slices.Contains(required, name))
		if len(list) == 0 {
			continue
		}
		applyMessages(list, prop.Extensions)
		rs.Fields = append(rs.Fields, model.FieldConfig{Name: path, Rules: list})
	}
}

// flatten merges allOf members into the schema's own properties.
func flatten(schema *openapi3.Schema) (openapi3.Schemas, []string) {
	properties := make(openapi3.Schemas, len(schema.Properties))
	for name, ref := range schema.Properties {
		properties[name] = ref
	}
	required := slices.Clone(schema.Required)
	for _, member := range schema.AllOf {
		if member == nil || member.Value == nil {
			continue
		}
		props, req := flatten(member.Value)
		for name, ref := range props {
			if _, exists := properties[name]; !exists {
				properties[name] = ref
			}
		}
		required = append(required, req...)
	}
	return properties, required
}

func propertyRules(prop *openapi3.Schema, required bool) []model.Rule {
	var out []model.Rule
	if required {
		out = append(out, model.Rule{Name: model.RuleRequired})
	}

	switch {
	case hasType(prop, openapi3.TypeString):
		switch strings.ToLower(prop.Format) {
		case "email", "idn-email":
			out = append(out, model.Rule{Name: model.RuleEmail})
		case "uri", "url", "iri":
			out = append(out, model.Rule{Name: model.RuleURL})
		}
		if prop.MinLength > 0 {
			out = append(out, model.Rule{Name: model.RuleMinLength, Param: int(prop.MinLength)})
		}
		if prop.MaxLength != nil {
			out = append(out, model.Rule{Name: model.RuleMaxLength, Param: int(*prop.MaxLength)})
		}
		if prop.Pattern != "" {
			out = append(out, model.Rule{Name: model.RulePattern, Param: prop.Pattern})
		}
	case hasType(prop, openapi3.TypeInteger), hasType(prop, openapi3.TypeNumber):
		if hasType(prop, openapi3.TypeInteger) {
			out = append(out, model.Rule{Name: model.RuleInteger})
		} else {
			out = append(out, model.Rule{Name: model.RuleNumeric})
		}
		if prop.Min != nil {
			out = append(out, model.Rule{Name: model.RuleMin, Param: *prop.Min})
		}
		if prop.Max != nil {
			out = append(out, model.Rule{Name: model.RuleMax, Param: *prop.Max})
		}
	case hasType(prop, openapi3.TypeArray):
		if prop.MinItems > 0 {
			out = append(out, model.Rule{Name: model.RuleArrayMin, Param: int(prop.MinItems)})
		}
		if prop.MaxItems != nil {
			out = append(out, model.Rule{Name: model.RuleArrayMax, Param: int(*prop.MaxItems)})
		}
	}
	return out
}

func applyMessages(list []model.Rule, extensions map[string]any) {
	raw, ok := extensions[MessagesExtension].(map[string]any)
	if !ok {
		return
	}
	for i := range list {
		if msg, ok := raw[string(list[i].Name)].(string); ok {
			list[i].Message = msg
		}
	}
}

func hasType(schema *openapi3.Schema, kind string) bool {
	if schema.Type == nil {
		return false
	}
	return slices.Contains(schema.Type.Slice(), kind)
}
