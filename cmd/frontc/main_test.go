package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterh/liner"

	"gofront/pkg/diag"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTokensCommand(t *testing.T) {
	path := writeSource(t, "a.fc", "v: i32 = 0x10;")
	out, err := run(t, "tokens", path)
	if err != nil {
		t.Fatalf("tokens failed: %v", err)
	}
	for _, want := range []string{"Tokens (7)", "Identifier(v)", "Keyword(i32)", "Constant(Int(16))", "1:14"} {
		if !strings.Contains(out, want) {
			t.Errorf("output has no %q:\n%s", want, out)
		}
	}
}

func TestParseCommand(t *testing.T) {
	path := writeSource(t, "a.fc", "v: Missing;")
	out, err := run(t, "parse", path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(out, "Identifier(Missing)") {
		t.Errorf("unresolved tree expected:\n%s", out)
	}
}

func TestResolveCommand(t *testing.T) {
	a := writeSource(t, "a.fc", "P := struct { x: i32; y: u8; }\np: P;")
	b := writeSource(t, "b.fc", "main: function() { }")
	out, err := run(t, "resolve", "-j", "2", a, b)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	for _, want := range []string{"== " + a + " ==", "Global(p)", "size 8 align 4", "== " + b + " ==", "Func(main__0)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output has no %q:\n%s", want, out)
		}
	}
	if strings.Index(out, a) > strings.Index(out, b) {
		t.Errorf("units printed out of order:\n%s", out)
	}
}

func TestResolveCommandErrors(t *testing.T) {
	path := writeSource(t, "a.fc", "main: function() { a = b; }")
	_, err := run(t, "resolve", "--max-errors", "1", path)
	if !diag.IsKind(err, diag.Unresolved) {
		t.Fatalf("error = %v, want unresolved", err)
	}
	if n := len(diag.All(err)); n != 1 {
		t.Errorf("got %d errors, want 1", n)
	}

	var buf bytes.Buffer
	_, err = run(t, "resolve", writeSource(t, "b.fc", "main: function() { a = b; }"))
	report(&buf, err)
	if got := buf.String(); !strings.HasPrefix(got, "2 errors:\n") || strings.Count(got, "unresolved") != 2 {
		t.Errorf("report = %q", got)
	}
}

func TestMissingArguments(t *testing.T) {
	if _, err := run(t, "tokens"); err == nil {
		t.Errorf("tokens without a file should fail")
	}
	if _, err := run(t, "resolve"); err == nil {
		t.Errorf("resolve without files should fail")
	}
}

func TestSession(t *testing.T) {
	var out bytes.Buffer
	s := &session{out: &out}

	if err := s.eval("Point := struct { x: i32; y: i32; }"); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if err := s.eval("p: Point;"); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if err := s.eval("q: Missing;"); !diag.IsKind(err, diag.Unresolved) {
		t.Fatalf("error = %v, want unresolved", err)
	}
	if len(s.decls) != 2 {
		t.Errorf("rejected input was kept: %q", s.decls)
	}

	out.Reset()
	s.command(":tokens")
	if !strings.Contains(out.String(), "Identifier(p)") {
		t.Errorf(":tokens printed %q", out.String())
	}
	out.Reset()
	s.command(":symbols")
	if !strings.Contains(out.String(), "Global(p)") {
		t.Errorf(":symbols printed %q", out.String())
	}
	out.Reset()
	s.command(":tree")
	if !strings.Contains(out.String(), "Structure(Point") {
		t.Errorf(":tree printed %q", out.String())
	}

	if s.command(":reset") || s.unit != nil || s.decls != nil {
		t.Errorf(":reset did not clear the session")
	}
	if !s.command(":quit") {
		t.Errorf(":quit should end the session")
	}
}

func TestHistory(t *testing.T) {
	ln := liner.NewLiner()
	defer ln.Close()
	dir := t.TempDir()

	if err := loadHistory(ln, filepath.Join(dir, "missing")); err != nil {
		t.Errorf("missing history file: %v", err)
	}
	if err := saveHistory(ln, filepath.Join(dir, "no", "such", "dir")); err == nil {
		t.Errorf("saving into a missing directory should fail")
	}

	path := filepath.Join(dir, "history")
	ln.AppendHistory("v: i32;")
	if err := saveHistory(ln, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	ln.ClearHistory()
	if err := loadHistory(ln, path); err != nil {
		t.Fatalf("load: %v", err)
	}
	var buf bytes.Buffer
	if _, err := ln.WriteHistory(&buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "v: i32;\n" {
		t.Errorf("history = %q", got)
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"v: i32;", false},
		{"main: function() {", true},
		{"main: function() {\n  x = f(1,", true},
		{"main: function() {\n}", false},
		{"v: i32 = @", false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.code); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
