package widget_test

import (
	"reflect"
	"testing"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/widget"
)

func newForm() *goform.Form {
	r := goform.NewRegistry()
	widget.Register(r)
	return goform.New(goform.Options{Registry: r})
}

// edit renders schema against data, changes the element at id to raw and
// returns the emitted data.
func edit(t *testing.T, schema []goform.Schema, data goform.Data, id string, raw any) (goform.Data, error) {
	t.Helper()
	var got goform.Data
	calls := 0
	root := newForm().Render(goform.Props{Schema: schema, Data: data, OnChange: func(d goform.Data) {
		calls++
		got = d
	}})
	el := root.Find(id)
	if el == nil {
		t.Fatalf("no element %s", id)
	}
	err := el.Change(raw)
	if err == nil && calls != 1 {
		t.Fatalf("expected one change, got %d", calls)
	}
	if err != nil && calls != 0 {
		t.Fatalf("failed change emitted %d events", calls)
	}
	return got, err
}

func TestRegister_BuiltinTypes(t *testing.T) {
	r := goform.NewRegistry()
	widget.Register(r)
	want := []string{"boolean", "constant", "float", "integer", "multi_select", "positive_time_period_dict", "select", "string"}
	if got := r.Types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Types() = %v", got)
	}
	if _, ok := goform.DefaultRegistry.Lookup("string"); !ok {
		t.Fatalf("importing widget should fill DefaultRegistry")
	}
}

func TestString_Coerce(t *testing.T) {
	schema := []goform.Schema{
		&goform.StringSchema{Base: goform.Base{Name: "opt"}, Format: "password"},
		&goform.StringSchema{Base: goform.Base{Name: "req", Required: true}},
	}
	data := goform.Data{"opt": "x", "req": "y"}

	got, err := edit(t, schema, data, "/opt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Has("opt") {
		t.Fatalf("empty optional string should remove the key: %v", got)
	}
	got, err = edit(t, schema, data, "/req", "")
	if err != nil || got["req"] != "" {
		t.Fatalf("required string keeps empty text: %v %v", got, err)
	}

	root := newForm().Render(goform.Props{Schema: schema, Data: data})
	if typ := root.Find("/opt").Attrs["type"]; typ != "password" {
		t.Fatalf("input type = %v", typ)
	}
}

func TestInteger_Modes(t *testing.T) {
	schema := []goform.Schema{
		&goform.IntegerSchema{Base: goform.Base{Name: "pct"}, ValueMin: goform.Bound(0), ValueMax: goform.Bound(100)},
		&goform.IntegerSchema{Base: goform.Base{Name: "port"}, ValueMin: goform.Bound(1)},
	}
	root := newForm().Render(goform.Props{Schema: schema, Data: goform.Data{}})
	if m := root.Find("/pct").Attrs["mode"]; m != "slider" {
		t.Fatalf("pct mode = %v", m)
	}
	if m := root.Find("/port").Attrs["mode"]; m != "box" {
		t.Fatalf("port mode = %v", m)
	}

	got, err := edit(t, schema, goform.Data{}, "/pct", "150")
	if err != nil || got["pct"] != 100 {
		t.Fatalf("slider should clamp: %v %v", got, err)
	}
	_, err = edit(t, schema, goform.Data{}, "/port", 0)
	if !goform.HasCode(err, goform.CodeInvalidValue) {
		t.Fatalf("box below min should fail, got %v", err)
	}
	iss, _ := goform.AsIssues(err)
	if iss[0].Path != "/port" {
		t.Fatalf("issue path = %q", iss[0].Path)
	}
	_, err = edit(t, schema, goform.Data{}, "/port", "1.5")
	if !goform.HasCode(err, goform.CodeInvalidValue) {
		t.Fatalf("fractional input should fail, got %v", err)
	}
}

func TestSelect_CoerceAndMode(t *testing.T) {
	sel := &goform.SelectSchema{Base: goform.Base{Name: "mode", Required: true}, Options: []goform.Option{
		{Value: "a", Label: "Alpha"}, {Value: "b", Label: "Beta"},
	}}
	schema := []goform.Schema{sel}
	root := newForm().Render(goform.Props{Schema: schema, Data: goform.Data{}})
	if m := root.Find("/mode").Attrs["mode"]; m != "radio" {
		t.Fatalf("mode = %v", m)
	}
	got, err := edit(t, schema, goform.Data{}, "/mode", "beta")
	if err != nil || got["mode"] != "b" {
		t.Fatalf("label match: %v %v", got, err)
	}
	if _, err := edit(t, schema, goform.Data{}, "/mode", "z"); !goform.HasCode(err, goform.CodeInvalidValue) {
		t.Fatalf("expected invalid_value, got %v", err)
	}

	for i := 0; i < 6; i++ {
		sel.Options = append(sel.Options, goform.Option{Value: i})
	}
	root = newForm().Render(goform.Props{Schema: schema, Data: goform.Data{}})
	if m := root.Find("/mode").Attrs["mode"]; m != "dropdown" {
		t.Fatalf("mode = %v", m)
	}
}

func TestMultiSelect_Coerce(t *testing.T) {
	schema := []goform.Schema{&goform.MultiSelectSchema{Base: goform.Base{Name: "tags"}, Options: []goform.Option{
		{Value: "x", Label: "X"}, {Value: "y", Label: "Y"}, {Value: "z", Label: "Z"},
	}}}
	got, err := edit(t, schema, goform.Data{}, "/tags", "z, x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got["tags"], []string{"x", "z"}) {
		t.Fatalf("tags = %#v", got["tags"])
	}
	got, _ = edit(t, schema, goform.Data{"tags": []string{"x"}}, "/tags", []string{})
	if got.Has("tags") {
		t.Fatalf("empty optional selection should remove the key")
	}
	if _, err := edit(t, schema, goform.Data{}, "/tags", []any{"w"}); !goform.HasCode(err, goform.CodeInvalidValue) {
		t.Fatalf("expected invalid_value, got %v", err)
	}
}

func TestDuration_Coerce(t *testing.T) {
	schema := []goform.Schema{&goform.DurationSchema{Base: goform.Base{Name: "delay", Required: true}}}
	got, err := edit(t, schema, goform.Data{}, "/delay", "1:02:03.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["delay"] != (goform.Duration{Hours: 1, Minutes: 2, Seconds: 3}) {
		t.Fatalf("delay = %#v", got["delay"])
	}
	got, _ = edit(t, schema, goform.Data{}, "/delay", map[string]any{"minutes": 5.0})
	if got["delay"] != (goform.Duration{Minutes: 5}) {
		t.Fatalf("delay = %#v", got["delay"])
	}
}

func TestBooleanAndConstant(t *testing.T) {
	schema := []goform.Schema{
		&goform.BooleanSchema{Base: goform.Base{Name: "on"}},
		&goform.ConstantSchema{Base: goform.Base{Name: "c"}, Value: "fixed"},
	}
	got, err := edit(t, schema, goform.Data{}, "/on", "on")
	if err != nil || got["on"] != true {
		t.Fatalf("on = %v %v", got, err)
	}
	root := newForm().Render(goform.Props{Schema: schema, Data: goform.Data{}})
	c := root.Find("/c")
	if !c.ReadOnly || c.Value != "fixed" {
		t.Fatalf("constant = %+v", c)
	}
	if err := c.Change("x"); !goform.HasCode(err, goform.CodeNotEditable) {
		t.Fatalf("expected not_editable, got %v", err)
	}
}

func TestSelectors_BasicRenderer(t *testing.T) {
	schema := []goform.Schema{
		&goform.SelectorSchema{Base: goform.Base{Name: "level"}, Selector: map[string]any{"number": map[string]any{"min": 0, "max": 10}}},
		&goform.SelectorSchema{Base: goform.Base{Name: "entity"}, Selector: map[string]any{"entity": map[string]any{"domain": "light"}}},
	}
	root := newForm().Render(goform.Props{Schema: schema, Data: goform.Data{}})
	level := root.Find("/level")
	if level.Tag != "form-selector-number" || level.Attrs["max"] != 10 {
		t.Fatalf("level = %+v", level)
	}
	if e := root.Find("/entity"); e.Tag != "form-selector-entity" || e.Attrs["domain"] != "light" {
		t.Fatalf("entity = %+v", e)
	}
	got, err := edit(t, schema, goform.Data{}, "/level", "42")
	if err != nil || got["level"] != 10 {
		t.Fatalf("level = %v %v", got, err)
	}
	got, _ = edit(t, schema, goform.Data{}, "/entity", "light.kitchen")
	if got["entity"] != "light.kitchen" {
		t.Fatalf("entity = %v", got)
	}
}

func TestSelectorKind(t *testing.T) {
	if k := widget.SelectorKind(map[string]any{"text": nil}); k != "text" {
		t.Fatalf("kind = %q", k)
	}
	if k := widget.SelectorKind(nil); k != "" {
		t.Fatalf("kind = %q", k)
	}
}
