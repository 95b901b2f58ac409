package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/source"
)

const schemaYAML = `
- name: host
  type: string
  required: true
  description:
    suggested_value: localhost
- name: port
  type: integer
  valueMin: 1
  valueMax: 65535
  default: 8080
- name: mode
  type: select
  options:
    - [basic, Basic]
    - [advanced, Advanced]
- name: tags
  type: multi_select
  options: {b: Bee, a: Ay}
- name: ""
  type: grid
  column_min_width: 200px
  schema:
    - {name: user, type: string}
- type: conditional
  name: ""
  conditions: {field: mode, op: eq, value: advanced}
  schema:
    - {name: retries, type: integer}
- name: peers
  type: expandable
  multiple: true
  title: Peers
  schema:
    - {name: addr, type: string}
- name: tls
  type: dictionary
  optional: true
  schema:
    - {name: verify, type: boolean}
- name: target
  selector:
    entity: {domain: light}
- name: color
  type: color_rgb
  palette: warm
`

func TestLoadSchema_YAML(t *testing.T) {
	schema, err := source.LoadSchema([]byte(schemaYAML), source.YAML)
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	if len(schema) != 10 {
		t.Fatalf("got %d nodes", len(schema))
	}
	host := schema[0].(*goform.StringSchema)
	if !host.Required || host.Description.SuggestedValue != "localhost" {
		t.Fatalf("host = %+v", host)
	}
	port := schema[1].(*goform.IntegerSchema)
	if *port.ValueMin != 1 || *port.ValueMax != 65535 || port.Default != 8080 {
		t.Fatalf("port = %+v", port)
	}
	mode := schema[2].(*goform.SelectSchema)
	if !reflect.DeepEqual(mode.Options, []goform.Option{{Value: "basic", Label: "Basic"}, {Value: "advanced", Label: "Advanced"}}) {
		t.Fatalf("mode options = %+v", mode.Options)
	}
	tags := schema[3].(*goform.MultiSelectSchema)
	if tags.Options[0].Value != "b" || tags.Options[1].Label != "Ay" {
		t.Fatalf("map options should keep document order: %+v", tags.Options)
	}
	grid := schema[4].(*goform.GridSchema)
	if grid.ColumnMinWidth != "200px" || len(grid.Schema) != 1 {
		t.Fatalf("grid = %+v", grid)
	}
	cond := schema[5].(*goform.ConditionalSchema)
	if cond.Condition(goform.Data{"mode": "basic"}) || !cond.Condition(goform.Data{"mode": "advanced"}) {
		t.Fatalf("conditions not compiled")
	}
	peers := schema[6].(*goform.ExpandableSchema)
	if !peers.Multiple || peers.Title != "Peers" {
		t.Fatalf("peers = %+v", peers)
	}
	if tls := schema[7].(*goform.DictionarySchema); !tls.Optional {
		t.Fatalf("tls = %+v", tls)
	}
	if sel := schema[8].(*goform.SelectorSchema); sel.Selector["entity"] == nil {
		t.Fatalf("selector = %+v", sel)
	}
	custom := schema[9].(*goform.CustomSchema)
	if custom.Kind() != "color_rgb" || custom.Options["palette"] != "warm" {
		t.Fatalf("custom = %+v", custom)
	}
}

func TestLoadSchema_JSONAndJSONC(t *testing.T) {
	jsonDoc := `[{"name":"a","type":"boolean","default":true},{"type":"column","name":"","columns":[[{"name":"l","type":"float"}],[{"name":"r","type":"string"}]]}]`
	jsoncDoc := `[
		// feature switch
		{"name": "a", "type": "boolean", "default": true,},
		{"type": "column", "name": "", "columns": [[{"name": "l", "type": "float"}], [{"name": "r", "type": "string"}]]},
	]`
	for _, tc := range []struct {
		f   source.Format
		doc string
	}{{source.JSON, jsonDoc}, {source.JSONC, jsoncDoc}} {
		schema, err := source.LoadSchema([]byte(tc.doc), tc.f)
		if err != nil {
			t.Fatalf("%s: %v", tc.f, err)
		}
		col := schema[1].(*goform.ColumnSchema)
		if len(col.Columns) != 2 || col.Columns[1][0].Meta().Name != "r" {
			t.Fatalf("%s: column = %+v", tc.f, col)
		}
		if got := goform.ComputeInitialData(schema); got["a"] != true {
			t.Fatalf("%s: initial = %v", tc.f, got)
		}
	}
}

func TestLoadSchema_OptionMapKeepsOrder(t *testing.T) {
	docs := []struct {
		f   source.Format
		doc string
	}{
		{source.YAML, "- name: pick\n  type: select\n  options: {zeta: Zeta, alpha: Alpha, mid: Mid}\n"},
		{source.JSON, `[{"name":"pick","type":"select","options":{"zeta":"Zeta","alpha":"Alpha","mid":"Mid"}}]`},
		{source.JSONC, `[{"name": "pick", "type": "select", "options": {"zeta": "Zeta", "alpha": "Alpha", "mid": "Mid",},},]`},
	}
	want := []goform.Option{{Value: "zeta", Label: "Zeta"}, {Value: "alpha", Label: "Alpha"}, {Value: "mid", Label: "Mid"}}
	for _, tc := range docs {
		schema, err := source.LoadSchema([]byte(tc.doc), tc.f)
		if err != nil {
			t.Fatalf("%s: %v", tc.f, err)
		}
		if got := schema[0].(*goform.SelectSchema).Options; !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: options = %+v, want %+v", tc.f, got, want)
		}
	}

	// Already decoded maps have lost their order and fall back to sorting.
	schema, err := source.SchemaFromValue([]any{map[string]any{
		"name": "pick", "type": "select", "options": map[string]any{"zeta": "Zeta", "alpha": "Alpha"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if got := schema[0].(*goform.SelectSchema).Options; got[0].Value != "alpha" {
		t.Fatalf("options = %+v", got)
	}
}

func TestLoadSchemaAt(t *testing.T) {
	body := []byte(`{"schema": [{"name": "mode", "type": "select", "options": {"b": "B", "a": "A"}}], "data": {}}`)
	schema, err := source.LoadSchemaAt(body, source.JSON, "/schema")
	if err != nil {
		t.Fatal(err)
	}
	if got := schema[0].(*goform.SelectSchema).Options; got[0].Value != "b" {
		t.Fatalf("options = %+v", got)
	}

	for _, tc := range []struct{ doc, path string }{
		{`{"schema": [{"name": "a"}]}`, "/schema/0/type"},
		{`{"data": {}}`, "/schema"},
	} {
		_, err := source.LoadSchemaAt([]byte(tc.doc), source.JSON, "/schema")
		iss, ok := goform.AsIssues(err)
		if !ok || iss[0].Path != tc.path {
			t.Fatalf("%s: got %v, want issue at %s", tc.doc, err, tc.path)
		}
	}
}

func TestLoadSchema_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		path string
	}{
		{"missing type", `[{"name":"a"}]`, "/0/type"},
		{"bad nested", `[{"type":"grid","name":"","schema":[{"name":"x","type":"string","required":"yes"}]}]`, "/0/schema/0/required"},
		{"bad condition", `[{"type":"conditional","name":"","conditions":{"field":"a","op":"like"}}]`, "/0/conditions/op"},
		{"duplicate key", `[{"name":"a","name":"b","type":"string"}]`, "/0/name"},
		{"not a list", `"x"`, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := source.LoadSchema([]byte(tc.doc), source.JSON)
			iss, ok := goform.AsIssues(err)
			if !ok || len(iss) == 0 {
				t.Fatalf("expected issues, got %v", err)
			}
			if iss[0].Code != goform.CodeParseError || iss[0].Path != tc.path {
				t.Fatalf("got %s at %s, want %s", iss[0].Code, iss[0].Path, tc.path)
			}
		})
	}
}

func TestDecodeDocument_YAMLDuplicateKey(t *testing.T) {
	_, err := source.DecodeDocument([]byte("metadata:\n  name: a\n  name: b\n"), source.YAML)
	var de *source.DuplicateKeyError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateKeyError, got %T %v", err, err)
	}
	if de.Key != "name" || de.FirstLine <= 0 || de.Line <= de.FirstLine {
		t.Fatalf("positions = %+v", de)
	}
}

func TestLoadData_NormalizesNumbersAndObjects(t *testing.T) {
	d, err := source.LoadData([]byte(`{"port": 80, "ratio": 0.5, "net": {"host": "h"}, "list": [{"a": 1}]}`), source.JSON)
	if err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	if d["port"] != 80 || d["ratio"] != 0.5 {
		t.Fatalf("numbers = %#v %#v", d["port"], d["ratio"])
	}
	if _, ok := d["net"].(goform.Data); !ok {
		t.Fatalf("nested object = %T", d["net"])
	}
	list, ok := goform.AsDataList(d["list"])
	if !ok || list[0]["a"] != 1 {
		t.Fatalf("list = %#v", d["list"])
	}

	y, err := source.LoadData([]byte("port: 80\nratio: 0.5\n"), source.YAML)
	if err != nil || y["port"] != 80 || y["ratio"] != 0.5 {
		t.Fatalf("yaml = %#v %v", y, err)
	}
	empty, err := source.LoadData(nil, source.YAML)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty = %v %v", empty, err)
	}
	if _, err := source.LoadData([]byte(`[1]`), source.JSON); !goform.HasCode(err, goform.CodeParseError) {
		t.Fatalf("expected parse_error for non-object data, got %v", err)
	}
}

func TestEncodeData_RoundTrip(t *testing.T) {
	d := goform.Data{
		"host":  "h",
		"delay": goform.Duration{Minutes: 1},
		"peers": []goform.Data{{"addr": "x"}},
	}
	for _, f := range []source.Format{source.JSON, source.YAML} {
		b, err := source.EncodeData(d, f)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		back, err := source.LoadData(b, f)
		if err != nil {
			t.Fatalf("%s: reload: %v", f, err)
		}
		if back["host"] != "h" {
			t.Fatalf("%s: %s", f, b)
		}
		if dur, ok := goform.AsDuration(back["delay"]); !ok || dur.Minutes != 1 {
			t.Fatalf("%s: delay = %#v", f, back["delay"])
		}
		if list, _ := goform.AsDataList(back["peers"]); len(list) != 1 || list[0]["addr"] != "x" {
			t.Fatalf("%s: peers = %#v", f, back["peers"])
		}
	}
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	sp := filepath.Join(dir, "schema.yaml")
	dp := filepath.Join(dir, "data.json")
	if err := os.WriteFile(sp, []byte("- {name: a, type: string}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dp, []byte(`{"a":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	schema, err := source.ReadSchemaFile(sp)
	if err != nil || len(schema) != 1 {
		t.Fatalf("schema = %v %v", schema, err)
	}
	data, err := source.ReadDataFile(dp)
	if err != nil || data["a"] != "x" {
		t.Fatalf("data = %v %v", data, err)
	}
	if _, err := source.ReadDataFile(filepath.Join(dir, "missing.json")); err == nil || !strings.Contains(err.Error(), "read data") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]source.Format{"a.json": source.JSON, "a.jsonc": source.JSONC, "a.yml": source.YAML, "a": source.YAML}
	for p, want := range cases {
		if got := source.FormatFromPath(p); got != want {
			t.Fatalf("FormatFromPath(%q) = %s", p, got)
		}
	}
	if _, err := source.ParseFormat("toml"); err == nil {
		t.Fatalf("expected error for toml")
	}
}
