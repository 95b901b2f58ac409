package goform_test

import (
	"reflect"
	"testing"

	goform "github.com/reoring/goform"
)

func TestJSONSchema_Projection(t *testing.T) {
	schema := []goform.Schema{
		&goform.StringSchema{Base: goform.Base{Name: "host", Required: true}, Format: "hostname"},
		&goform.IntegerSchema{Base: goform.Base{Name: "port", Default: 80}, ValueMin: goform.Bound(1), ValueMax: goform.Bound(65535)},
		&goform.SelectSchema{Base: goform.Base{Name: "mode"}, Options: []goform.Option{{Value: "a"}, {Value: "b"}}},
		&goform.GridSchema{Schema: []goform.Schema{&goform.BooleanSchema{Base: goform.Base{Name: "tls", Required: true}}}},
		&goform.ConditionalSchema{Schema: []goform.Schema{&goform.FloatSchema{Base: goform.Base{Name: "ratio", Required: true}}}},
		&goform.ExpandableSchema{Base: goform.Base{Name: "peers"}, Multiple: true, Schema: []goform.Schema{
			&goform.StringSchema{Base: goform.Base{Name: "addr", Required: true}},
		}},
		&goform.DurationSchema{Base: goform.Base{Name: "delay"}},
	}
	js := goform.JSONSchema(schema)
	if js.Type != "object" || js.Schema == "" {
		t.Fatalf("root = %+v", js)
	}
	if !reflect.DeepEqual(js.Required, []string{"host", "tls"}) {
		t.Fatalf("required = %v", js.Required)
	}
	port := js.Properties["port"]
	if port.Type != "integer" || *port.Minimum != 1 || *port.Maximum != 65535 || port.Default != 80 {
		t.Fatalf("port = %+v", port)
	}
	if !reflect.DeepEqual(js.Properties["mode"].Enum, []any{"a", "b"}) {
		t.Fatalf("mode = %+v", js.Properties["mode"])
	}
	if js.Properties["ratio"] == nil || js.Properties["tls"] == nil {
		t.Fatalf("transparent composites should merge their properties")
	}
	peers := js.Properties["peers"]
	if peers.Type != "array" || peers.Items.Properties["addr"].Type != "string" || !reflect.DeepEqual(peers.Items.Required, []string{"addr"}) {
		t.Fatalf("peers = %+v", peers)
	}
	if d := js.Properties["delay"]; d.Type != "object" || d.Properties["hours"] == nil || d.Properties["milliseconds"] != nil {
		t.Fatalf("delay = %+v", d)
	}
}
