package rules

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	goform "github.com/reoring/goform"
)

// Op defines the comparison operators of a Condition.
type Op string

const (
	Eq    Op = "eq"
	Ne    Op = "ne"
	Lt    Op = "lt"
	Le    Op = "le"
	Gt    Op = "gt"
	Ge    Op = "ge"
	In    Op = "in"
	NotIn Op = "not_in"
	Set   Op = "set"
	Unset Op = "unset"
)

var knownOps = map[Op]bool{Eq: true, Ne: true, Lt: true, Le: true, Gt: true, Ge: true, In: true, NotIn: true, Set: true, Unset: true}

// Condition is a declarative visibility predicate over a form's data object.
// Either Field/Op/Value describe a simple comparison, or All/Any compose
// nested conditions.
type Condition struct {
	Field string      `json:"field,omitempty" yaml:"field,omitempty"`
	Op    Op          `json:"op,omitempty" yaml:"op,omitempty"`
	Value any         `json:"value,omitempty" yaml:"value,omitempty"`
	All   []Condition `json:"all,omitempty" yaml:"all,omitempty"`
	Any   []Condition `json:"any,omitempty" yaml:"any,omitempty"`
}

// If builds a condition that evaluates a field against a value using an operator.
// The field is a key of the data object or a JSON Pointer like "/net/port".
func If(field string, op Op, want any) Condition {
	return Condition{Field: normalizePath(field), Op: op, Value: want}
}

// IfAll builds a condition that requires all conditions to hold.
func IfAll(conds ...Condition) Condition { return Condition{All: conds} }

// IfAny builds a condition that requires any condition to hold.
func IfAny(conds ...Condition) Condition { return Condition{Any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Condition) And(others ...Condition) Condition {
	conds := append([]Condition{c}, others...)
	return IfAll(conds...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Condition) Or(others ...Condition) Condition {
	conds := append([]Condition{c}, others...)
	return IfAny(conds...)
}

// Eval reports whether the condition holds for data.
func (c Condition) Eval(data goform.Data) bool {
	// composite AND
	if len(c.All) > 0 {
		for _, it := range c.All {
			if !it.Eval(data) {
				return false
			}
		}
		return true
	}
	// composite OR
	if len(c.Any) > 0 {
		for _, it := range c.Any {
			if it.Eval(data) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAtPathWithin(map[string]any(data), strings.TrimPrefix(normalizePath(c.Field), "/"))
	switch c.Op {
	case Set:
		return ok && cur != nil
	case Unset:
		return !ok || cur == nil
	}
	if !ok {
		return c.Op == Ne || c.Op == NotIn
	}
	return compare(cur, c.Op, c.Value)
}

// Predicate adapts the condition to ConditionalSchema.Condition.
func (c Condition) Predicate() func(goform.Data) bool {
	return c.Eval
}

// Compile parses a decoded document and returns its predicate.
func Compile(raw any) (func(goform.Data) bool, error) {
	c, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return c.Predicate(), nil
}

// Parse converts a decoded JSON/YAML value into a Condition. Accepted shapes:
//
//	{field: mode, op: eq, value: advanced}
//	{all: [...]} / {any: [...]}
//	[...]                       // same as {all: [...]}
//	{mode: advanced, port: 80}  // shorthand: every key equals its value
func Parse(raw any) (Condition, error) {
	return parseAt(raw, goform.RootPath())
}

func parseAt(raw any, at goform.PathRef) (Condition, error) {
	switch t := raw.(type) {
	case []any:
		conds, err := parseList(t, at)
		if err != nil {
			return Condition{}, err
		}
		return IfAll(conds...), nil
	case goform.Data:
		return parseMap(map[string]any(t), at)
	case map[string]any:
		return parseMap(t, at)
	default:
		return Condition{}, goform.AppendIssues(nil, at.Issue(goform.CodeParseError, fmt.Sprintf("condition must be an object or a list, got %T", raw)))
	}
}

func parseList(items []any, at goform.PathRef) ([]Condition, error) {
	out := make([]Condition, 0, len(items))
	for i, it := range items {
		c, err := parseAt(it, at.Index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func parseMap(m map[string]any, at goform.PathRef) (Condition, error) {
	if v, ok := m["all"]; ok {
		items, ok := v.([]any)
		if !ok {
			return Condition{}, goform.AppendIssues(nil, at.Field("all").Issue(goform.CodeParseError, "all must be a list"))
		}
		conds, err := parseList(items, at.Field("all"))
		if err != nil {
			return Condition{}, err
		}
		return IfAll(conds...), nil
	}
	if v, ok := m["any"]; ok {
		items, ok := v.([]any)
		if !ok {
			return Condition{}, goform.AppendIssues(nil, at.Field("any").Issue(goform.CodeParseError, "any must be a list"))
		}
		conds, err := parseList(items, at.Field("any"))
		if err != nil {
			return Condition{}, err
		}
		return IfAny(conds...), nil
	}
	if f, ok := m["field"]; ok {
		field, ok := f.(string)
		if !ok || field == "" {
			return Condition{}, goform.AppendIssues(nil, at.Field("field").Issue(goform.CodeParseError, "field must be a non-empty string"))
		}
		op := Eq
		if raw, ok := m["op"]; ok {
			s, _ := raw.(string)
			op = Op(strings.ToLower(s))
			if !knownOps[op] {
				return Condition{}, goform.AppendIssues(nil, at.Field("op").Issue(goform.CodeParseError, fmt.Sprintf("unknown operator %v", raw), "op", raw))
			}
		}
		return If(field, op, m["value"]), nil
	}
	if len(m) == 0 {
		return Condition{}, goform.AppendIssues(nil, at.Issue(goform.CodeParseError, "empty condition"))
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	conds := make([]Condition, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, If(k, Eq, m[k]))
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return IfAll(conds...), nil
}

// ------- helpers -------

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

func valueAtPathWithin(v any, rel string) (any, bool) {
	if rel == "" {
		return v, true
	}
	cur := reflect.ValueOf(v)
	parts := strings.Split(rel, "/")
	for _, seg := range parts {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if !cur.IsValid() {
			return nil, false
		}
		for cur.Kind() == reflect.Interface || cur.Kind() == reflect.Pointer {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		switch cur.Kind() {
		case reflect.Struct:
			found := false
			rt := cur.Type()
			for i := 0; i < rt.NumField(); i++ {
				sf := rt.Field(i)
				if !sf.IsExported() {
					continue
				}
				if structKey(sf) == seg {
					cur = cur.Field(i)
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			// For collection, seg should be an index
			idx, ok := tryParseInt(seg)
			if !ok {
				return nil, false
			}
			if idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	for (cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) && !cur.IsNil() {
		cur = cur.Elem()
	}
	if !cur.IsValid() {
		return nil, false
	}
	return cur.Interface(), true
}

// structKey returns the json key of a struct field (e.g. Duration.Hours ->
// "hours").
func structKey(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
		return name
	}
	return sf.Name
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return equal(cur, want)
	case Ne:
		return !equal(cur, want)
	case In, NotIn:
		found := false
		rv := reflect.ValueOf(want)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				if equal(cur, rv.Index(i).Interface()) {
					found = true
					break
				}
			}
		}
		if op == In {
			return found
		}
		return !found
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

// equal treats numbers of different Go types as equal when their values
// match, so 80 from YAML and 80.0 from JSON compare equal.
func equal(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		x, _ := goform.ToFloat(a)
		y, _ := goform.ToFloat(b)
		return x == y
	}
	return reflect.DeepEqual(a, b)
}

func compareOrdered(cur any, op Op, want any) bool {
	if isNumber(cur) && isNumber(want) {
		a, _ := goform.ToFloat(cur)
		b, _ := goform.ToFloat(want)
		return ordered(a, b, op)
	}
	as, aok := cur.(string)
	bs, bok := want.(string)
	if aok && bok {
		return ordered(strings.Compare(as, bs), 0, op)
	}
	return false
}

func ordered[N int | float64](a, b N, op Op) bool {
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	default:
		return false
	}
}

func isNumber(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		_, ok := v.(interface{ Float64() (float64, error) })
		return ok
	}
}

func tryParseInt(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
