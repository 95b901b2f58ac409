package goform

import (
	"sort"

	"github.com/reoring/goform/jsonschema"
)

// JSONSchema describes the data objects a schema list produces. Transparent
// composites merge their properties into the enclosing object; fields under a
// conditional are never listed as required since they may be hidden.
func JSONSchema(schema []Schema) *jsonschema.Schema {
	out := objectSchema(schema)
	out.Schema = jsonschema.Draft
	return out
}

func objectSchema(schema []Schema) *jsonschema.Schema {
	obj := jsonschema.Object()
	collectProperties(obj, schema, true)
	sort.Strings(obj.Required)
	return obj
}

func collectProperties(obj *jsonschema.Schema, schema []Schema, requirable bool) {
	for _, s := range schema {
		if s == nil {
			continue
		}
		m := s.Meta()
		if Transparent(s) {
			_, cond := s.(*ConditionalSchema)
			if c, ok := s.(*ColumnSchema); ok {
				for _, col := range c.Columns {
					collectProperties(obj, col, requirable)
				}
				continue
			}
			collectProperties(obj, Children(s), requirable && !cond)
			continue
		}
		if _, dup := obj.Properties[m.Name]; dup {
			continue
		}
		prop := propertySchema(s)
		if prop == nil {
			continue
		}
		obj.Properties[m.Name] = prop
		if requirable && m.Required {
			obj.Required = append(obj.Required, m.Name)
		}
	}
}

func propertySchema(s Schema) *jsonschema.Schema {
	m := s.Meta()
	var out *jsonschema.Schema
	switch n := s.(type) {
	case *ConstantSchema:
		out = &jsonschema.Schema{Const: n.Value, ReadOnly: true}
	case *StringSchema:
		out = &jsonschema.Schema{Type: "string", Format: n.Format}
	case *IntegerSchema:
		out = &jsonschema.Schema{Type: "integer"}
		if n.ValueMin != nil {
			out.Minimum = jsonschema.Float(float64(*n.ValueMin))
		}
		if n.ValueMax != nil {
			out.Maximum = jsonschema.Float(float64(*n.ValueMax))
		}
	case *FloatSchema:
		out = &jsonschema.Schema{Type: "number"}
	case *BooleanSchema:
		out = &jsonschema.Schema{Type: "boolean"}
	case *SelectSchema:
		out = &jsonschema.Schema{Enum: optionValues(n.Options)}
	case *MultiSelectSchema:
		out = &jsonschema.Schema{Type: "array", UniqueItems: true, Items: &jsonschema.Schema{Enum: optionValues(n.Options)}}
	case *DurationSchema:
		out = jsonschema.Object()
		for _, k := range []string{"hours", "minutes", "seconds"} {
			out.Properties[k] = &jsonschema.Schema{Type: "integer", Minimum: jsonschema.Float(0)}
		}
		if n.EnableMillisecond {
			out.Properties["milliseconds"] = &jsonschema.Schema{Type: "integer", Minimum: jsonschema.Float(0)}
		}
		out.AdditionalProperties = false
	case *ExpandableSchema:
		if n.Multiple {
			out = &jsonschema.Schema{Type: "array", Items: objectSchema(n.Schema)}
		} else {
			out = objectSchema(n.Schema)
		}
		out.Title = n.Title
	case *GridSchema:
		out = objectSchema(n.Schema)
	case *ConditionalSchema:
		out = objectSchema(n.Schema)
		out.Required = nil
	case *DictionarySchema:
		out = objectSchema(n.Schema)
	case *ColumnSchema:
		out = objectSchema(Children(n))
	case *SelectorSchema:
		out = &jsonschema.Schema{Description: "selector"}
	default:
		out = &jsonschema.Schema{Description: string(s.Kind())}
	}
	if m.Description != nil && m.Description.SuggestedValue != nil {
		out.Default = m.Description.SuggestedValue
	} else if m.Default != nil {
		out.Default = m.Default
	}
	return out
}

func optionValues(opts []Option) []any {
	if len(opts) == 0 {
		return nil
	}
	out := make([]any, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
