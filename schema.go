package goform

// Kind is the type tag of a schema node.
type Kind string

const (
	KindConstant               Kind = "constant"
	KindString                 Kind = "string"
	KindInteger                Kind = "integer"
	KindFloat                  Kind = "float"
	KindBoolean                Kind = "boolean"
	KindSelect                 Kind = "select"
	KindMultiSelect            Kind = "multi_select"
	KindPositiveTimePeriodDict Kind = "positive_time_period_dict"

	KindGrid        Kind = "grid"
	KindExpandable  Kind = "expandable"
	KindConditional Kind = "conditional"
	KindDictionary  Kind = "dictionary"
	KindColumn      Kind = "column"

	KindSelector Kind = "selector"
)

// Description carries presentational hints attached to a node.
type Description struct {
	SuggestedValue any    `json:"suggested_value,omitempty" yaml:"suggested_value,omitempty"`
	Suffix         string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// Base holds the fields every schema node shares. An empty Name marks a
// transparent node whose data merges into its parent's object.
type Base struct {
	Name        string
	Required    bool
	Disabled    bool
	Default     any // nil means no default
	Description *Description
}

// Meta returns the common fields of a node.
func (b Base) Meta() Base { return b }

func (Base) isSchema() {}

// Schema is one node of a form definition. Implementations are the *XxxSchema
// types of this package; Kind is declared on pointer receivers so nodes are
// always used by pointer.
type Schema interface {
	Kind() Kind
	Meta() Base
	isSchema()
}

// Option is one [value, label] pair of a select or multi_select node.
type Option struct {
	Value any
	Label string
}

// ConstantSchema displays a fixed value.
type ConstantSchema struct {
	Base
	Value any
}

// StringSchema is a free text field. Format is passed to the widget as the
// input type (e.g. "password", "email").
type StringSchema struct {
	Base
	Format string
}

// IntegerSchema is a whole number. Setting both bounds switches the widget
// into range (slider) mode.
type IntegerSchema struct {
	Base
	ValueMin *int
	ValueMax *int
}

// FloatSchema is a decimal number.
type FloatSchema struct{ Base }

// BooleanSchema is a checkbox/switch.
type BooleanSchema struct{ Base }

// SelectSchema picks one value from an ordered option list.
type SelectSchema struct {
	Base
	Options []Option
}

// MultiSelectSchema picks any number of values.
type MultiSelectSchema struct {
	Base
	Options []Option
}

// DurationSchema is a positive_time_period_dict: {hours, minutes, seconds}.
type DurationSchema struct {
	Base
	EnableMillisecond bool
}

// GridSchema lays out its nodes in columns. It does not change the data shape
// when unnamed.
type GridSchema struct {
	Base
	ColumnMinWidth string
	Schema         []Schema
}

// ExpandableSchema wraps nodes in a collapsible panel. With Multiple set the
// data for the node is a list of objects, one per repetition.
type ExpandableSchema struct {
	Base
	Title    string
	Icon     string
	Flatten  bool
	Expanded bool
	Multiple bool
	Schema   []Schema
}

// ConditionalSchema renders its nodes only while Condition holds for the
// ambient data object. A nil Condition always holds.
type ConditionalSchema struct {
	Base
	Condition func(Data) bool
	Schema    []Schema
}

// DictionarySchema nests its nodes under its own key. Optional adds a
// toggle that controls whether the key exists at all.
type DictionarySchema struct {
	Base
	Optional bool
	Schema   []Schema
}

// ColumnSchema renders independent schemas side by side against one data
// object.
type ColumnSchema struct {
	Base
	Columns [][]Schema
}

// SelectorSchema is delegated whole to the selector renderer.
type SelectorSchema struct {
	Base
	Selector map[string]any
}

// CustomSchema is a leaf of a type this package does not model. It renders
// through whatever widget is registered for Type.
type CustomSchema struct {
	Base
	Type    string
	Options map[string]any
}

func (*ConstantSchema) Kind() Kind    { return KindConstant }
func (*StringSchema) Kind() Kind      { return KindString }
func (*IntegerSchema) Kind() Kind     { return KindInteger }
func (*FloatSchema) Kind() Kind       { return KindFloat }
func (*BooleanSchema) Kind() Kind     { return KindBoolean }
func (*SelectSchema) Kind() Kind      { return KindSelect }
func (*MultiSelectSchema) Kind() Kind { return KindMultiSelect }
func (*DurationSchema) Kind() Kind    { return KindPositiveTimePeriodDict }
func (*GridSchema) Kind() Kind        { return KindGrid }
func (*ExpandableSchema) Kind() Kind  { return KindExpandable }
func (*ConditionalSchema) Kind() Kind { return KindConditional }
func (*DictionarySchema) Kind() Kind  { return KindDictionary }
func (*ColumnSchema) Kind() Kind      { return KindColumn }
func (*SelectorSchema) Kind() Kind    { return KindSelector }
func (c *CustomSchema) Kind() Kind    { return Kind(c.Type) }

// Bound is a helper for IntegerSchema limits.
func Bound(n int) *int { return &n }

// IsComposite reports whether s groups other nodes.
func IsComposite(s Schema) bool {
	switch s.(type) {
	case *GridSchema, *ExpandableSchema, *ConditionalSchema, *DictionarySchema, *ColumnSchema:
		return true
	default:
		return false
	}
}

// Transparent reports whether s shares its parent's data object instead of
// owning a key: unnamed nodes and flattened single expandables.
func Transparent(s Schema) bool {
	if s.Meta().Name == "" {
		return true
	}
	if e, ok := s.(*ExpandableSchema); ok && e.Flatten && !e.Multiple {
		return true
	}
	return false
}

// Children returns the nodes directly nested in a composite, columns
// concatenated in order.
func Children(s Schema) []Schema {
	switch n := s.(type) {
	case *GridSchema:
		return n.Schema
	case *ExpandableSchema:
		return n.Schema
	case *ConditionalSchema:
		return n.Schema
	case *DictionarySchema:
		return n.Schema
	case *ColumnSchema:
		var out []Schema
		for _, col := range n.Columns {
			out = append(out, col...)
		}
		return out
	default:
		return nil
	}
}

// ContainsSelector reports whether any node reachable from schema is a
// selector.
func ContainsSelector(schema []Schema) bool {
	for _, s := range schema {
		if s == nil {
			continue
		}
		if _, ok := s.(*SelectorSchema); ok {
			return true
		}
		if ContainsSelector(Children(s)) {
			return true
		}
	}
	return false
}
