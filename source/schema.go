package source

import (
	"fmt"
	"sort"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/rules"
)

// LoadSchema decodes a schema list written in the wire format:
//
//	- name: host
//	  type: string
//	  required: true
//	- type: grid
//	  name: ""
//	  schema: [...]
//	- name: target
//	  selector: {entity: {domain: light}}
//
// Option maps keep the order they were written in.
func LoadSchema(b []byte, f Format) ([]goform.Schema, error) {
	return LoadSchemaAt(b, f, "")
}

// LoadSchemaAt decodes the schema list found at pointer inside the document,
// for example "/schema" in a request body. Issue paths are reported from the
// document root.
func LoadSchemaAt(b []byte, f Format, pointer string) ([]goform.Schema, error) {
	v, err := decode(b, f)
	if err != nil {
		return nil, err
	}
	at := goform.ParsePointer(pointer)
	v, ok := lookup(v, pointer)
	if !ok {
		return nil, goform.AppendIssues(nil, at.Issue(goform.CodeParseError, at.Pointer()+" is required"))
	}
	return fromValue(v, at)
}

// SchemaFromValue converts an already decoded document into a schema list. A
// single object is accepted as a one-element list. Errors are goform.Issues
// whose paths point into the document. Plain maps carry no key order, so
// option maps given this way are sorted by value.
func SchemaFromValue(v any) ([]goform.Schema, error) {
	return fromValue(v, goform.RootPath())
}

func fromValue(v any, at goform.PathRef) ([]goform.Schema, error) {
	if _, ok := asMap(v); ok {
		v = []any{v}
	}
	var iss goform.Issues
	out := schemaList(v, at, &iss)
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case *object:
		return t.vals, true
	case map[string]any:
		return t, true
	case goform.Data:
		return map[string]any(t), true
	default:
		return nil, false
	}
}

type decoder struct {
	at  goform.PathRef
	m   map[string]any
	iss *goform.Issues
}

func (d decoder) fail(key, format string, args ...any) {
	at := d.at
	if key != "" {
		at = at.Field(key)
	}
	*d.iss = goform.AppendIssues(*d.iss, at.Issue(goform.CodeParseError, fmt.Sprintf(format, args...)))
}

func (d decoder) str(key string) string {
	raw, ok := d.m[key]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		d.fail(key, "%s must be a string", key)
	}
	return s
}

func (d decoder) flag(key string) bool {
	raw, ok := d.m[key]
	if !ok || raw == nil {
		return false
	}
	b, ok := raw.(bool)
	if !ok {
		d.fail(key, "%s must be a boolean", key)
	}
	return b
}

func (d decoder) bound(keys ...string) *int {
	for _, key := range keys {
		raw, ok := d.m[key]
		if !ok || raw == nil {
			continue
		}
		n, ok := goform.ToInt(raw)
		if !ok {
			d.fail(key, "%s must be an integer", key)
			return nil
		}
		return goform.Bound(n)
	}
	return nil
}

func schemaList(v any, at goform.PathRef, iss *goform.Issues) []goform.Schema {
	if v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		*iss = goform.AppendIssues(*iss, at.Issue(goform.CodeParseError, fmt.Sprintf("schema must be a list, got %T", v)))
		return nil
	}
	out := make([]goform.Schema, 0, len(items))
	for i, it := range items {
		if s := schemaNode(it, at.Index(i), iss); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func schemaNode(v any, at goform.PathRef, iss *goform.Issues) goform.Schema {
	m, ok := asMap(v)
	if !ok {
		*iss = goform.AppendIssues(*iss, at.Issue(goform.CodeParseError, fmt.Sprintf("schema node must be an object, got %T", v)))
		return nil
	}
	d := decoder{at: at, m: m, iss: iss}
	base := goform.Base{
		Name:     d.str("name"),
		Required: d.flag("required"),
		Disabled: d.flag("disabled"),
		Default:  ToData(lower(m["default"])),
	}
	if raw, ok := m["description"]; ok && raw != nil {
		dm, ok := asMap(raw)
		if !ok {
			d.fail("description", "description must be an object")
		} else {
			dd := decoder{at: at.Field("description"), m: dm, iss: iss}
			base.Description = &goform.Description{SuggestedValue: ToData(lower(dm["suggested_value"])), Suffix: dd.str("suffix")}
		}
	}

	typ := d.str("type")
	if typ == "" {
		if sel, ok := m["selector"]; ok {
			sm, ok := lower(sel).(map[string]any)
			if !ok {
				d.fail("selector", "selector must be an object")
				return nil
			}
			return &goform.SelectorSchema{Base: base, Selector: sm}
		}
		d.fail("type", "node needs a type or a selector")
		return nil
	}

	switch goform.Kind(typ) {
	case goform.KindConstant:
		return &goform.ConstantSchema{Base: base, Value: lower(m["value"])}
	case goform.KindString:
		return &goform.StringSchema{Base: base, Format: d.str("format")}
	case goform.KindInteger:
		return &goform.IntegerSchema{Base: base, ValueMin: d.bound("valueMin", "value_min"), ValueMax: d.bound("valueMax", "value_max")}
	case goform.KindFloat:
		return &goform.FloatSchema{Base: base}
	case goform.KindBoolean:
		return &goform.BooleanSchema{Base: base}
	case goform.KindSelect:
		return &goform.SelectSchema{Base: base, Options: options(d)}
	case goform.KindMultiSelect:
		return &goform.MultiSelectSchema{Base: base, Options: options(d)}
	case goform.KindPositiveTimePeriodDict:
		return &goform.DurationSchema{Base: base, EnableMillisecond: d.flag("enableMillisecond") || d.flag("enable_millisecond")}
	case goform.KindGrid:
		return &goform.GridSchema{Base: base, ColumnMinWidth: d.str("column_min_width"), Schema: schemaList(m["schema"], at.Field("schema"), iss)}
	case goform.KindExpandable:
		return &goform.ExpandableSchema{
			Base:     base,
			Title:    d.str("title"),
			Icon:     d.str("icon"),
			Flatten:  d.flag("flatten"),
			Expanded: d.flag("expanded"),
			Multiple: d.flag("multiple"),
			Schema:   schemaList(m["schema"], at.Field("schema"), iss),
		}
	case goform.KindConditional:
		n := &goform.ConditionalSchema{Base: base, Schema: schemaList(m["schema"], at.Field("schema"), iss)}
		for _, key := range []string{"conditions", "condition"} {
			raw, ok := m[key]
			if !ok {
				continue
			}
			c, err := rules.Parse(lower(raw))
			if err != nil {
				if ci, ok := goform.AsIssues(err); ok {
					for _, it := range ci {
						it.Path = rebase(at.Field(key), it.Path)
						*iss = goform.AppendIssues(*iss, it)
					}
				}
				return nil
			}
			n.Condition = c.Predicate()
			break
		}
		return n
	case goform.KindDictionary:
		return &goform.DictionarySchema{Base: base, Optional: d.flag("optional"), Schema: schemaList(m["schema"], at.Field("schema"), iss)}
	case goform.KindColumn:
		n := &goform.ColumnSchema{Base: base}
		cols, ok := m["columns"].([]any)
		if !ok && m["columns"] != nil {
			d.fail("columns", "columns must be a list of schema lists")
		}
		for i, col := range cols {
			n.Columns = append(n.Columns, schemaList(col, at.Field("columns").Index(i), iss))
		}
		return n
	default:
		opts := map[string]any{}
		for k, v := range m {
			switch k {
			case "name", "type", "required", "disabled", "default", "description":
				continue
			}
			opts[k] = lower(v)
		}
		return &goform.CustomSchema{Base: base, Type: typ, Options: opts}
	}
}

// rebase joins a pointer produced relative to a sub-document onto at.
func rebase(at goform.PathRef, rel string) string {
	p := at
	for _, seg := range goform.ParsePointer(rel).Segments() {
		p = p.Field(seg)
	}
	return p.Pointer()
}

// options accepts [[value, label], ...], [value, ...] or {value: label}.
// A map lists its options in document order.
func options(d decoder) []goform.Option {
	raw, ok := d.m["options"]
	if !ok || raw == nil {
		return nil
	}
	if m, ok := asMap(raw); ok {
		var keys []string
		if o, ok := raw.(*object); ok {
			keys = o.keys
		} else {
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
		}
		out := make([]goform.Option, 0, len(keys))
		for _, k := range keys {
			label, _ := m[k].(string)
			out = append(out, goform.Option{Value: k, Label: label})
		}
		return out
	}
	items, ok := raw.([]any)
	if !ok {
		d.fail("options", "options must be a list or an object")
		return nil
	}
	out := make([]goform.Option, 0, len(items))
	for i, it := range items {
		switch t := it.(type) {
		case []any:
			if len(t) == 0 {
				d.fail("options", "option %d is empty", i)
				continue
			}
			o := goform.Option{Value: lower(t[0])}
			if len(t) > 1 {
				o.Label = fmt.Sprint(t[1])
			}
			out = append(out, o)
		case *object, map[string]any:
			om, _ := asMap(t)
			label, _ := om["label"].(string)
			out = append(out, goform.Option{Value: lower(om["value"]), Label: label})
		default:
			out = append(out, goform.Option{Value: t})
		}
	}
	return out
}
