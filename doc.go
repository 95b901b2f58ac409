// Package goform provides:
//
// - A tagged-union Schema model for declarative, recursively nested forms
// - Default-value synthesis for fresh data objects (ComputeInitialData)
// - A widget Registry that dispatches leaf nodes by type and lazily loads selector support
// - A rendering engine producing an Element tree whose edits merge back into
//   one complete data object, delivered as exactly one change per edit
//
// Design policy:
// - Keep only public APIs in the root package; leaf widgets live under widget/.
// - Document decoding lives under source/, declarative conditions under rules/.
// - The HTTP session server lives under server/, the terminal editor under tui/,
//   and the CLI under cmd/goform.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	import _ "github.com/reoring/goform/widget" // registers built-in widgets
//
//	schema := []goform.Schema{
//	    &goform.StringSchema{Base: goform.Base{Name: "host", Required: true}},
//	    &goform.IntegerSchema{Base: goform.Base{Name: "port"}, ValueMin: goform.Bound(1), ValueMax: goform.Bound(65535)},
//	}
//	data := goform.ComputeInitialData(schema)
//	form := goform.New()
//	view := form.Render(goform.Props{Schema: schema, Data: data, OnChange: func(d goform.Data) { data = d }})
//	_ = view.Find("/host").Change("example.org")
//
// Every Element is bound to the data snapshot it was rendered from; callers
// store the data delivered to OnChange and render again before the next edit.
package goform
