package resolver

import (
	"fmt"
	"sort"
	"strings"

	"gofront/pkg/ast"
)

// Storage classifies where a declaration lives.
type Storage interface {
	storage()
	String() string
}

// Local is an argument or function-local variable at Offset bytes from the
// frame pointer. Offsets grow downwards and are negative.
type Local struct {
	Offset int
}

// Global is a variable declared at program scope.
type Global struct {
	Label string
}

// Func is a function. Label is unique across nesting levels.
type Func struct {
	Label string
}

// Type is a structure declaration.
type Type struct{}

func (Local) storage()  {}
func (Global) storage() {}
func (Func) storage()   {}
func (Type) storage()   {}

func (s Local) String() string  { return fmt.Sprintf("Local(%d)", s.Offset) }
func (s Global) String() string { return fmt.Sprintf("Global(%s)", s.Label) }
func (s Func) String() string   { return fmt.Sprintf("Func(%s)", s.Label) }
func (Type) String() string     { return "Type" }

// Symbol pairs a declaration node with its storage.
type Symbol struct {
	Node    ast.NodeID
	Storage Storage
}

// Symbols maps declaration nodes to their storage.
type Symbols map[ast.NodeID]Symbol

// String returns a dump ordered by node index.
func (s Symbols) String() string {
	ids := make([]ast.NodeID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, "  %-6d  %v\n", id, s[id].Storage)
	}
	return sb.String()
}

// frame allocates locals for one function, growing down from the frame
// pointer.
type frame struct {
	used int // bytes reserved below the frame pointer
}

// allocate reserves size bytes aligned to align and returns the offset.
func (f *frame) allocate(size, align int) int {
	f.used = roundUp(f.used, align) + size
	return -f.used
}

// roundUp rounds n up to a multiple of m. m <= 0 leaves n unchanged.
func roundUp(n, m int) int {
	if m <= 0 {
		return n
	}
	return n + (m-n%m)%m
}

// functionLabel encodes the scope depth so nested functions with the same
// name get distinct labels.
func functionLabel(name string, depth int) string {
	return fmt.Sprintf("%s__%d", name, depth)
}
