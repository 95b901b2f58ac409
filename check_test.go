package goform_test

import (
	"testing"

	goform "github.com/reoring/goform"
)

func TestCheck_ReportsCallerErrors(t *testing.T) {
	schema := []goform.Schema{
		str("host"),
		&goform.CustomSchema{Base: goform.Base{Name: "color"}, Type: "color"},
		&goform.GridSchema{Schema: []goform.Schema{str("host")}},
		&goform.ExpandableSchema{Multiple: true, Schema: []goform.Schema{str("x")}},
		&goform.DictionarySchema{Schema: []goform.Schema{str("y")}},
		&goform.ExpandableSchema{Base: goform.Base{Name: "list"}, Multiple: true, Schema: []goform.Schema{
			str("a"), str("a"),
		}},
	}
	iss := newForm().Check(schema)
	want := []struct{ code, path string }{
		{goform.CodeUnsupportedType, "/color"},
		{goform.CodeDuplicateName, "/host"},
		{goform.CodeMissingName, "/"},
		{goform.CodeMissingName, "/"},
		{goform.CodeDuplicateName, "/list/0/a"},
	}
	if len(iss) != len(want) {
		t.Fatalf("got %d issues: %v", len(iss), iss)
	}
	for i, w := range want {
		if iss[i].Code != w.code || iss[i].Path != w.path {
			t.Fatalf("issue %d = %s at %s, want %s at %s", i, iss[i].Code, iss[i].Path, w.code, w.path)
		}
	}
}

func TestCheck_ConditionalBranchesMayReuseNames(t *testing.T) {
	branch := func(want string) *goform.ConditionalSchema {
		return &goform.ConditionalSchema{
			Condition: func(d goform.Data) bool { return d["mode"] == want },
			Schema:    []goform.Schema{str("target")},
		}
	}
	schema := []goform.Schema{str("mode"), branch("a"), branch("b")}
	if iss := newForm().Check(schema); len(iss) != 0 {
		t.Fatalf("unexpected issues: %v", iss)
	}
	// A name shared with the enclosing object is still a conflict.
	schema = append(schema, &goform.ConditionalSchema{Schema: []goform.Schema{str("mode")}})
	if iss := newForm().Check(schema); len(iss) != 1 || iss[0].Code != goform.CodeDuplicateName {
		t.Fatalf("expected one duplicate, got %v", iss)
	}
}

func TestCheck_SelectorWithoutLoader(t *testing.T) {
	f := goform.New(goform.Options{Registry: goform.NewRegistry()})
	iss := f.Check([]goform.Schema{&goform.SelectorSchema{Base: goform.Base{Name: "s"}}})
	if len(iss) != 1 || iss[0].Code != goform.CodeSelectorUnavailable {
		t.Fatalf("got %v", iss)
	}
	if err := error(iss); !goform.HasCode(err, goform.CodeSelectorUnavailable) {
		t.Fatalf("Issues should satisfy error lookups")
	}
}
