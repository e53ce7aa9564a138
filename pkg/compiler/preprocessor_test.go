package compiler

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestPreprocessDefines(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"Object", "#define N 4\nv: i32 = N;", "v: i32 = 4;"},
		{"Function", "#define ADD(x, y) x + y\nz: i32 = ADD(10, 20);", "z: i32 = 10 + 20;"},
		{"Nested", "#define ADD(x, y) x + y\nz: i32 = ADD(ADD(1, 2), 3);", "z: i32 = 1 + 2 + 3;"},
		{"NoBleeding", "#define SUB(a, b) b - a\nv: i32 = SUB(b, a);", "v: i32 = a - b;"},
		{"Chained", "#define A B\n#define B 7\nv: i32 = A;", "v: i32 = 7;"},
		{"SelfReference", "#define A A + 1\nv: i32 = A;", "v: i32 = A + 1;"},
		{"StringLiteral", "#define N 4\ns: &u8 = \"N\";", "s: &u8 = \"N\";"},
		{"CharLiteral", "#define N 4\nc: c8 = 'N';", "c: c8 = 'N';"},
		{"HexNumber", "#define x1F 2\nv: i32 = 0x1F;", "v: i32 = 0x1F;"},
		{"WordBoundary", "#define N 4\nNN: i32 = N;", "NN: i32 = 4;"},
		{"NotCalled", "#define F(x) x\nv: i32 = F;", "v: i32 = F;"},
		{"WrongArity", "#define F(x) x\nv: i32 = F(1, 2);", "v: i32 = F(1, 2);"},
		{"ParenthesisedArgument", "#define F(x) x * 2\nv: i32 = F((1, 2));", "v: i32 = (1, 2) * 2;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Preprocess(fstest.MapFS{}, ".", tt.src)
			if err != nil {
				t.Fatalf("Preprocess failed: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in output, got:\n%s", tt.want, out)
			}
		})
	}
}

func TestPreprocessKeepsLines(t *testing.T) {
	out, err := Preprocess(fstest.MapFS{}, ".", "#define N 1\n\nv: i32 = N;")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 3 || lines[2] != "v: i32 = 1;" {
		t.Errorf("line 3 moved: %q", lines)
	}
}

func TestPreprocessIncludes(t *testing.T) {
	fsys := fstest.MapFS{
		"main.fc":      {Data: []byte("#include \"lib/types.fc\"\nv: Point;")},
		"lib/types.fc": {Data: []byte("#include \"base.fc\"\nPoint := struct { x: Coord; y: Coord; }")},
		"lib/base.fc":  {Data: []byte("#define Coord i32")},
	}
	out, err := PreprocessFile(fsys, "main.fc")
	if err != nil {
		t.Fatalf("PreprocessFile failed: %v", err)
	}
	for _, want := range []string{"Point := struct { x: i32; y: i32; }", "v: Point;"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestPreprocessIncludeOnce(t *testing.T) {
	fsys := fstest.MapFS{
		"main.fc":   {Data: []byte("#include \"a.fc\"\n#include \"b.fc\"")},
		"a.fc":      {Data: []byte("#include \"common.fc\"\na: i32;")},
		"b.fc":      {Data: []byte("#include \"common.fc\"\nb: i32;")},
		"common.fc": {Data: []byte("C := struct { x: u8; }")},
	}
	out, err := PreprocessFile(fsys, "main.fc")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out, "C := struct"); n != 1 {
		t.Errorf("common.fc included %d times", n)
	}
}

func TestPreprocessErrors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{"Circular", fstest.MapFS{
			"main.fc": {Data: []byte("#include \"a.fc\"")},
			"a.fc":    {Data: []byte("#include \"main.fc\"")},
		}, "circular include of main.fc"},
		{"SelfInclude", fstest.MapFS{
			"main.fc": {Data: []byte("x: i32;\n#include \"main.fc\"")},
		}, "line 2: circular include"},
		{"Missing", fstest.MapFS{
			"main.fc": {Data: []byte("#include \"nope.fc\"")},
		}, "include nope.fc"},
		{"AngleBrackets", fstest.MapFS{
			"main.fc": {Data: []byte("#include <stdio.h>")},
		}, "invalid include"},
		{"UnknownDirective", fstest.MapFS{
			"main.fc": {Data: []byte("#pragma once")},
		}, "unknown directive"},
		{"BadMacroName", fstest.MapFS{
			"main.fc": {Data: []byte("#define 1 2")},
		}, "invalid macro name"},
		{"UnterminatedParameters", fstest.MapFS{
			"main.fc": {Data: []byte("#define F(x x")},
		}, "unterminated parameter list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PreprocessFile(tt.fsys, "main.fc")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
