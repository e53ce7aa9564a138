package resolver

import (
	"strings"
	"testing"

	"gofront/pkg/ast"
	"gofront/pkg/diag"
	"gofront/pkg/lexer"
	"gofront/pkg/parser"
	"gofront/pkg/token"
)

func parse(t *testing.T, src string) (*ast.Arena, ast.NodeID) {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex() error = %v", err)
	}
	a, root, err := parser.Parse(toks, parser.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return a, root
}

func mustResolve(t *testing.T, src string) (*ast.Arena, ast.NodeID, *Result) {
	t.Helper()
	a, root := parse(t, src)
	res, err := Resolve(a, root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return a, root, res
}

func nameOf(c ast.Construct) string {
	switch n := c.(type) {
	case ast.Function:
		return n.Name
	case ast.Structure:
		return n.Name
	case ast.Variable:
		return n.Name
	case ast.Argument:
		return n.Name
	case ast.Member:
		return n.Name
	}
	return ""
}

// child returns the child of parent declaring name.
func child(t *testing.T, a *ast.Arena, parent ast.NodeID, name string) ast.NodeID {
	t.Helper()
	for _, c := range a.Children(parent) {
		if nameOf(a.Construct(c)) == name {
			return c
		}
	}
	t.Fatalf("%v has no child %s", a.Construct(parent), name)
	return ast.None
}

// body returns the Block of a function.
func body(a *ast.Arena, fn ast.NodeID) ast.NodeID {
	kids := a.Children(fn)
	return kids[len(kids)-1]
}

// target follows an Expression(Identifier) or a Terminal datatype to the
// Reference below it.
func target(t *testing.T, a *ast.Arena, id ast.NodeID) ast.NodeID {
	t.Helper()
	kids := a.Children(id)
	ref, ok := a.Construct(kids[len(kids)-1]).(ast.Reference)
	if !ok {
		t.Fatalf("%v is not resolved: %v", a.Construct(id), a.Construct(kids[len(kids)-1]))
	}
	return ref.Target
}

// identifiers returns every Identifier still reachable from root.
func identifiers(a *ast.Arena, root ast.NodeID) []string {
	var out []string
	for id := range a.Reachable(root) {
		if n, ok := a.Construct(id).(ast.Identifier); ok {
			out = append(out, n.Name)
		}
	}
	return out
}

func TestStructSizing(t *testing.T) {
	a, root, res := mustResolve(t, `
Point := struct { x: i32; y: i32; }
Line := struct { a: Point; b: Point; }`)

	point := child(t, a, root, "Point")
	line := child(t, a, root, "Line")
	if got, want := res.Structs[point], (Layout{Size: 8, Align: 4}); got != want {
		t.Errorf("Point layout = %+v, want %+v", got, want)
	}
	if got := a.Construct(line).(ast.Structure).Size; got != 16 {
		t.Errorf("Line size = %d, want 16", got)
	}
	if got := a.Construct(child(t, a, line, "b")).(ast.Member).Offset; got != 8 {
		t.Errorf("Line.b offset = %d, want 8", got)
	}
	if got := a.Construct(child(t, a, point, "y")).(ast.Member).Offset; got != 4 {
		t.Errorf("Point.y offset = %d, want 4", got)
	}
}

func TestMemberAlignment(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		size    int
		offsets []int
	}{
		{"Padding", "S := struct { a: u8; b: i64; c: u16; }", 24, []int{0, 8, 16}},
		{"Packed", "S := struct { a: u8; b: c8; c: u16; }", 4, []int{0, 1, 2}},
		{"Pointer", "S := struct { a: i32; p: &S; }", 16, []int{0, 8}},
		{"Empty", "S := struct { }", 0, nil},
		{"Inline", "S := struct { a: u8; in: struct { x: i32; y: u8; }; }", 16, []int{0, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, root, _ := mustResolve(t, tt.src)
			s := child(t, a, root, "S")
			if got := a.Construct(s).(ast.Structure).Size; got != tt.size {
				t.Errorf("size = %d, want %d", got, tt.size)
			}
			for i, m := range a.Children(s) {
				if got := a.Construct(m).(ast.Member).Offset; got != tt.offsets[i] {
					t.Errorf("member %d offset = %d, want %d", i, got, tt.offsets[i])
				}
			}
		})
	}
}

func TestIdempotentLayout(t *testing.T) {
	a, root := parse(t, `
Point := struct { x: i32; y: i32; }
Line := struct { a: Point; b: Point; }`)
	r := New(a, Options{})
	if err := r.Run(root); err != nil {
		t.Fatal(err)
	}
	line := child(t, a, root, "Line")
	if r.Result().Layouts != 2 {
		t.Fatalf("Layouts = %d, want 2", r.Result().Layouts)
	}
	first := r.FullyDefineStructure(line)
	second := r.FullyDefineStructure(line)
	if first != second || first.Size != 16 {
		t.Errorf("layouts differ: %+v then %+v", first, second)
	}
	if r.Result().Layouts != 2 {
		t.Errorf("layout was recomputed: Layouts = %d", r.Result().Layouts)
	}
	if got := a.Construct(child(t, a, line, "b")).(ast.Member).Offset; got != 8 {
		t.Errorf("offset changed to %d", got)
	}
}

func TestForwardReference(t *testing.T) {
	a, root, _ := mustResolve(t, `
A := struct { b: B; }
B := struct { x: i64; }`)
	structA := child(t, a, root, "A")
	structB := child(t, a, root, "B")
	dt := a.Children(child(t, a, structA, "b"))[0]
	if got := target(t, a, dt); got != structB {
		t.Errorf("A.b refers to %d, want %d", got, structB)
	}
	if structB <= structA {
		t.Fatalf("B should be committed after A")
	}
	if got := a.Construct(structA).(ast.Structure).Size; got != 8 {
		t.Errorf("A size = %d, want 8", got)
	}
}

func TestSelfPointer(t *testing.T) {
	a, root, res := mustResolve(t, "Node := struct { next: &Node; value: i32; }")
	node := child(t, a, root, "Node")
	if got := a.Construct(node).(ast.Structure).Size; got != 16 {
		t.Errorf("Node size = %d, want 16", got)
	}
	if got := a.Construct(child(t, a, node, "value")).(ast.Member).Offset; got != 8 {
		t.Errorf("value offset = %d, want 8", got)
	}
	if res.Layouts != 1 {
		t.Errorf("Layouts = %d, want 1", res.Layouts)
	}
	next := child(t, a, node, "next")
	pointer := a.Children(next)[0]
	if got := target(t, a, a.Children(pointer)[0]); got != node {
		t.Errorf("next points to %d, want %d", got, node)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds []diag.Kind
		pos   token.Pos
	}{
		{"SelfByValue", "S := struct { s: S; }", []diag.Kind{diag.Cyclic}, token.Pos{Line: 1, Col: 1}},
		{"MutualByValue", "A := struct { b: B; }\nB := struct { a: A; }", []diag.Kind{diag.Cyclic}, token.Pos{Line: 1, Col: 1}},
		{"UnknownType", "v: Missing;", []diag.Kind{diag.Unresolved}, token.Pos{Line: 1, Col: 4}},
		{"FunctionAsType", "f: function() { }\nv: &f;", []diag.Kind{diag.NotAType}, token.Pos{Line: 2, Col: 5}},
		{"UnknownValues", "main: function() {\n  x = y;\n}", []diag.Kind{diag.Unresolved, diag.Unresolved}, token.Pos{Line: 2, Col: 3}},
		{"NotCallable", "v: i32;\nmain: function() { v(); }", []diag.Kind{diag.Unresolved}, token.Pos{Line: 2, Col: 20}},
		{"UnknownMember", "P := struct { x: i32; }\nmain: function(q: P) { q.y = 1; }", []diag.Kind{diag.Unresolved}, token.Pos{Line: 2, Col: 26}},
		{"ArgumentType", "main: function(q: Q) { }", []diag.Kind{diag.Unresolved}, token.Pos{Line: 1, Col: 19}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, root := parse(t, tt.src)
			_, err := Resolve(a, root, Options{})
			if err == nil {
				t.Fatalf("expected error")
			}
			errs := diag.All(err)
			if len(errs) != len(tt.kinds) {
				t.Fatalf("got %d errors (%v), want %d", len(errs), err, len(tt.kinds))
			}
			for i, e := range errs {
				if e.Kind != tt.kinds[i] {
					t.Errorf("error %d kind = %v, want %v", i, e.Kind, tt.kinds[i])
				}
			}
			if errs[0].Pos != tt.pos {
				t.Errorf("first error at %v, want %v", errs[0].Pos, tt.pos)
			}
		})
	}
}

func TestMaxErrors(t *testing.T) {
	a, root := parse(t, "main: function() { a = b; c = d; }")
	_, err := Resolve(a, root, Options{MaxErrors: 1})
	if n := len(diag.All(err)); n != 1 {
		t.Errorf("got %d errors, want 1: %v", n, err)
	}
	a, root = parse(t, "main: function() { a = b; c = d; }")
	_, err = Resolve(a, root, Options{})
	if n := len(diag.All(err)); n != 4 {
		t.Errorf("got %d errors, want 4: %v", n, err)
	}
	if !strings.HasPrefix(err.Error(), "4 errors") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestResolveValues(t *testing.T) {
	a, root, _ := mustResolve(t, `
g: i32;
main: function(a: i32) -> i32 {
  b: i32 = a;
  g = b;
  return helper(b);
}
helper: function(x: i32) -> i32 { return x; }`)

	if ids := identifiers(a, root); len(ids) != 0 {
		t.Errorf("unresolved identifiers remain: %v", ids)
	}
	main := child(t, a, root, "main")
	arg := child(t, a, main, "a")
	b := child(t, a, body(a, main), "b")
	if got := target(t, a, a.Children(b)[1]); got != arg {
		t.Errorf("initializer refers to %d, want argument %d", got, arg)
	}
	assign := a.Children(body(a, main))[1]
	if got := target(t, a, a.Children(assign)[0]); got != child(t, a, root, "g") {
		t.Errorf("assignment target refers to %d, want global g", got)
	}
	ret := a.Children(body(a, main))[2]
	call := a.Children(ret)[0]
	callee := a.Construct(a.Children(call)[0]).(ast.Reference).Target
	if callee != child(t, a, root, "helper") {
		t.Errorf("call refers to %d, want helper", callee)
	}
}

func TestShadowing(t *testing.T) {
	a, root, _ := mustResolve(t, `
x: i32;
main: function() {
  x: i64;
  { x: u8; x = 1; }
  x = 2;
}`)
	blk := body(a, child(t, a, root, "main"))
	kids := a.Children(blk)
	outer := kids[0]
	inner := a.Children(a.Children(kids[1])[0])
	if got := target(t, a, a.Children(inner[1])[0]); got != inner[0] {
		t.Errorf("inner x refers to %d, want %d", got, inner[0])
	}
	if got := target(t, a, a.Children(kids[2])[0]); got != outer {
		t.Errorf("outer x refers to %d, want %d", got, outer)
	}
}

func TestStorage(t *testing.T) {
	a, root, res := mustResolve(t, `
g: u8;
P := struct { a: i32; b: u8; }
main: function(a: i32, b: i64) {
  c: u8;
  p: P;
  helper: function() { }
}`)
	main := child(t, a, root, "main")
	blk := body(a, main)
	tests := []struct {
		node ast.NodeID
		want Storage
	}{
		{child(t, a, root, "g"), Global{Label: "g"}},
		{child(t, a, root, "P"), Type{}},
		{main, Func{Label: "main__0"}},
		{child(t, a, main, "a"), Local{Offset: -4}},
		{child(t, a, main, "b"), Local{Offset: -16}},
		{child(t, a, blk, "c"), Local{Offset: -17}},
		{child(t, a, blk, "p"), Local{Offset: -28}},
		{child(t, a, blk, "helper"), Func{Label: "helper__2"}},
	}
	for _, tt := range tests {
		sym, ok := res.Symbols[tt.node]
		if !ok {
			t.Errorf("no symbol for %v", a.Construct(tt.node))
			continue
		}
		if sym.Node != tt.node || sym.Storage != tt.want {
			t.Errorf("%v: storage %v, want %v", a.Construct(tt.node), sym.Storage, tt.want)
		}
	}
}

func TestNestedFunctionLabels(t *testing.T) {
	a, root, res := mustResolve(t, "f: function() { f: function() { } }")
	outer := child(t, a, root, "f")
	inner := child(t, a, body(a, outer), "f")
	o, i := res.Symbols[outer].Storage, res.Symbols[inner].Storage
	if o == i {
		t.Errorf("nested functions share label %v", o)
	}
	if o != (Func{Label: "f__0"}) || i != (Func{Label: "f__2"}) {
		t.Errorf("labels = %v, %v", o, i)
	}
}

func TestMemberAccess(t *testing.T) {
	a, root, _ := mustResolve(t, `
P := struct { x: i32; next: &P; }
main: function(p: &P) {
  q: P;
  p.next.x = 1;
  q.x = 2;
}`)
	if ids := identifiers(a, root); len(ids) != 0 {
		t.Errorf("unresolved identifiers remain: %v", ids)
	}
	p := child(t, a, root, "P")
	x := child(t, a, p, "x")
	assign := a.Children(body(a, child(t, a, root, "main")))[2]
	access := a.Children(assign)[0]
	if got := target(t, a, a.Children(access)[1]); got != x {
		t.Errorf("q.x refers to %d, want member %d", got, x)
	}
}

func TestAccessOnUnknownType(t *testing.T) {
	a, root, _ := mustResolve(t, "main: function() { f().x = 1; }\nf: function() { }")
	if ids := identifiers(a, root); len(ids) != 1 || ids[0] != "x" {
		t.Errorf("identifiers = %v, want [x]", ids)
	}
}

func TestInlineStructLaidOut(t *testing.T) {
	a, root, res := mustResolve(t, "v: struct { a: u8; b: i64; };")
	v := child(t, a, root, "v")
	dt := a.Children(v)[0]
	inline := a.Children(dt)[0]
	if got := a.Construct(inline).(ast.Structure).Size; got != 16 {
		t.Errorf("inline size = %d, want 16", got)
	}
	if _, ok := res.Structs[inline]; !ok {
		t.Errorf("inline struct missing from Structs")
	}
}

func TestRootMustBeProgram(t *testing.T) {
	a, _ := parse(t, "x: i32;")
	_, err := Resolve(a, 0, Options{})
	if !diag.IsKind(err, diag.Internal) {
		t.Errorf("expected internal error, got %v", err)
	}
}
