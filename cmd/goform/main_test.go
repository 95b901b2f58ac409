package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/goform/internal/config"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := stdout
	stdout = buf
	t.Cleanup(func() { stdout = prev })
	t.Setenv(config.EnvVar, "")
	return buf
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const cliSchema = `
- {name: host, type: string, required: true}
- {name: port, type: integer, default: 8080}
`

func TestInit(t *testing.T) {
	out := capture(t)
	schema := writeFile(t, "schema.yaml", cliSchema)
	if err := run([]string{"init", schema, "--format", "json"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, `"host": ""`) || !strings.Contains(got, `"port": 8080`) {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestInit_ToFile(t *testing.T) {
	capture(t)
	schema := writeFile(t, "schema.yaml", cliSchema)
	dst := filepath.Join(t.TempDir(), "data.yaml")
	if err := run([]string{"init", schema, "-o", dst}); err != nil {
		t.Fatalf("init: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil || !strings.Contains(string(b), "port: 8080") {
		t.Fatalf("data file = %q, %v", b, err)
	}
}

func TestRender(t *testing.T) {
	out := capture(t)
	schema := writeFile(t, "schema.yaml", cliSchema)
	data := writeFile(t, "data.json", `{"host": "h"}`)
	if err := run([]string{"render", schema, "--data", data}); err != nil {
		t.Fatalf("render: %v", err)
	}
	got := out.String()
	for _, want := range []string{`"tag": "form"`, `"id": "/host"`, `"value": "h"`, `"focused": true`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in:\n%s", want, got)
		}
	}
}

func TestCheck(t *testing.T) {
	out := capture(t)
	good := writeFile(t, "good.yaml", cliSchema)
	if err := run([]string{"check", good}); err != nil {
		t.Fatalf("check: %v", err)
	}
	if strings.TrimSpace(out.String()) != "ok" {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	bad := writeFile(t, "bad.yaml", cliSchema+"- {name: host, type: color_rgb}\n")
	err := run([]string{"check", bad})
	var ee *exitError
	if !errors.As(err, &ee) || ee.code != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	if !strings.Contains(out.String(), "/host: duplicate_name") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestJSONSchema(t *testing.T) {
	out := capture(t)
	schema := writeFile(t, "schema.json", `[{"name": "port", "type": "integer", "valueMin": 1}]`)
	if err := run([]string{"jsonschema", schema}); err != nil {
		t.Fatalf("jsonschema: %v", err)
	}
	if !strings.Contains(out.String(), `"minimum": 1`) {
		t.Fatalf("output = %s", out.String())
	}
}

func TestUsageErrors(t *testing.T) {
	capture(t)
	cases := [][]string{
		{},
		{"frobnicate"},
		{"check"},
		{"init", "a.yaml", "b.yaml"},
		{"serve", "extra"},
		{"check", "--lang", "fr", "x.yaml"},
	}
	for _, args := range cases {
		err := run(args)
		var ee *exitError
		if !errors.As(err, &ee) || ee.code != 2 {
			t.Errorf("run(%q): expected exit 2, got %v", args, err)
		}
	}
}
