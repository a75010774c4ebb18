package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"single dash dast", []string{"-dast", "x.yaml"}, []string{"--dast", "x.yaml"}},
		{"single dash dir", []string{"-dir"}, []string{"--dir"}},
		{"double dash untouched", []string{"--dast"}, []string{"--dast"}},
		{"plain args untouched", []string{"x.yaml"}, []string{"x.yaml"}},
		{"empty", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeFlags(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCompilePrintsIR(t *testing.T) {
	path := writeProgram(t, `
items:
  - kind: fundef
    type: {spec: int}
    name: main
    body:
      - kind: return
        expr: {kind: int, value: 0}
`)
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err != nil {
		t.Fatalf("compile: %v\nstderr: %s", err, errOut.String())
	}
	if !strings.Contains(out.String(), "proc _main()") {
		t.Errorf("output missing proc header:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "retv.16 0") {
		t.Errorf("output missing return:\n%s", out.String())
	}
}

func TestCompileReportsErrors(t *testing.T) {
	path := writeProgram(t, `
items:
  - kind: fundef
    type: {spec: int}
    name: f
    body:
      - kind: return
        expr: {kind: ident, name: nope}
`)
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err == nil {
		t.Fatalf("compile of an invalid program should fail")
	}
	if !strings.Contains(errOut.String(), "nope") {
		t.Errorf("diagnostic missing from stderr:\n%s", errOut.String())
	}
}

func TestCompileMissingFile(t *testing.T) {
	var out, errOut bytes.Buffer
	if err := compile(filepath.Join(t.TempDir(), "absent.yaml"), &out, &errOut); err == nil {
		t.Errorf("missing input file should fail")
	}
}
