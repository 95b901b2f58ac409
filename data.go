package goform

import (
	"math"
	"strconv"
	"strings"
)

// Data is the untyped key/value object a form reads from and writes into.
// Keys are schema names; values are strings, numbers, booleans, string lists,
// Duration, nested Data or []Data.
type Data map[string]any

type unset struct{}

// Unset, passed as a change value, removes the key instead of storing a value.
var Unset any = unset{}

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v any) bool {
	_, ok := v.(unset)
	return ok
}

// With returns a copy of d with key set to v. d is not modified.
func (d Data) With(key string, v any) Data {
	out := make(Data, len(d)+1)
	for k, val := range d {
		out[k] = val
	}
	out[key] = v
	return out
}

// Without returns a copy of d lacking key. d is not modified.
func (d Data) Without(key string) Data {
	out := make(Data, len(d))
	for k, val := range d {
		if k == key {
			continue
		}
		out[k] = val
	}
	return out
}

// Clone returns a shallow copy.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (d Data) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Duration is the value of a positive_time_period_dict field.
type Duration struct {
	Hours        int `json:"hours" yaml:"hours"`
	Minutes      int `json:"minutes" yaml:"minutes"`
	Seconds      int `json:"seconds" yaml:"seconds"`
	Milliseconds int `json:"milliseconds,omitempty" yaml:"milliseconds,omitempty"`
}

// String renders the duration as H:MM:SS.
func (d Duration) String() string {
	s := strconv.Itoa(d.Hours) + ":" + pad2(d.Minutes) + ":" + pad2(d.Seconds)
	if d.Milliseconds != 0 {
		s += "." + strconv.Itoa(d.Milliseconds)
	}
	return s
}

func pad2(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// ParseDuration accepts "H:MM:SS", "MM:SS" or "SS" with an optional
// ".mmm" suffix.
func ParseDuration(s string) (Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Duration{}, false
	}
	var d Duration
	if i := strings.IndexByte(s, '.'); i >= 0 {
		ms, err := strconv.Atoi(s[i+1:])
		if err != nil || ms < 0 {
			return Duration{}, false
		}
		d.Milliseconds = ms
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Duration{}, false
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Duration{}, false
		}
		nums[i] = n
	}
	switch len(nums) {
	case 3:
		d.Hours, d.Minutes, d.Seconds = nums[0], nums[1], nums[2]
	case 2:
		d.Minutes, d.Seconds = nums[0], nums[1]
	case 1:
		d.Seconds = nums[0]
	}
	return d, true
}

// AsDuration accepts Duration, *Duration, or a map with numeric
// hours/minutes/seconds/milliseconds entries.
func AsDuration(v any) (Duration, bool) {
	switch t := v.(type) {
	case Duration:
		return t, true
	case *Duration:
		if t == nil {
			return Duration{}, false
		}
		return *t, true
	case Data:
		return durationFromMap(t)
	case map[string]any:
		return durationFromMap(t)
	case string:
		return ParseDuration(t)
	default:
		return Duration{}, false
	}
}

func durationFromMap(m map[string]any) (Duration, bool) {
	var d Duration
	fields := []struct {
		key string
		dst *int
	}{{"hours", &d.Hours}, {"minutes", &d.Minutes}, {"seconds", &d.Seconds}, {"milliseconds", &d.Milliseconds}}
	found := false
	for _, f := range fields {
		raw, ok := m[f.key]
		if !ok {
			continue
		}
		n, ok := ToInt(raw)
		if !ok {
			return Duration{}, false
		}
		*f.dst = n
		found = true
	}
	return d, found
}

// AsData accepts Data or map[string]any.
func AsData(v any) (Data, bool) {
	switch t := v.(type) {
	case Data:
		return t, true
	case map[string]any:
		return Data(t), true
	default:
		return nil, false
	}
}

// AsDataList accepts []Data, []map[string]any or []any of objects. Entries
// that are not objects become empty Data; the engine itself keeps them as
// they are.
func AsDataList(v any) ([]Data, bool) {
	switch t := v.(type) {
	case []Data:
		return t, true
	case []map[string]any:
		out := make([]Data, len(t))
		for i, m := range t {
			out[i] = Data(m)
		}
		return out, true
	case []any:
		out := make([]Data, len(t))
		for i, e := range t {
			d, ok := AsData(e)
			if !ok {
				d = Data{}
			}
			out[i] = d
		}
		return out, true
	default:
		return nil, false
	}
}

// ToInt converts numeric values (and numeric strings) to int. Floats must be
// integral.
func ToInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		if n, ok := v.(interface{ Int64() (int64, error) }); ok {
			i, err := n.Int64()
			return int(i), err == nil
		}
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// ToFloat converts numeric values (and numeric strings) to float64.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		if n, ok := ToInt(v); ok {
			return float64(n), true
		}
		if n, ok := v.(interface{ Float64() (float64, error) }); ok {
			f, err := n.Float64()
			return f, err == nil
		}
		return 0, false
	}
}

// AsBool accepts bool and the strings true/false/on/off/yes/no/1/0.
func AsBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "on", "yes", "1":
			return true, true
		case "false", "off", "no", "0":
			return false, true
		}
	}
	return false, false
}

// listEntries returns the entries of a list value without normalizing them.
func listEntries(v any) []any {
	switch t := v.(type) {
	case []Data:
		out := make([]any, len(t))
		for i, d := range t {
			out[i] = d
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = Data(m)
		}
		return out
	case []any:
		return t
	default:
		return nil
	}
}

// dataList is the stored form of a list: []Data when every entry is an
// object, otherwise the entries unchanged as []any.
func dataList(entries []any) any {
	out := make([]Data, len(entries))
	for i, e := range entries {
		d, ok := AsData(e)
		if !ok {
			return entries
		}
		out[i] = d
	}
	return out
}
