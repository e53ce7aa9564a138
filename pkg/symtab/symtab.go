// Package symtab maps names to declaration nodes across nested scopes.
//
// Bindings live on a single shadow stack. Each Mapping remembers the mapping
// it shadowed, so leaving a scope restores outer visibility exactly, however
// many times a name was rebound inside it. Leaving a scope truncates the
// stack to where the scope began; popped mappings are not kept.
package symtab

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gofront/pkg/ast"
)

// ErrScopeUnderflow is returned by ExitScope without a matching EnterScope.
var ErrScopeUnderflow = errors.New("symtab: exit without matching enter")

// noPrev marks a Mapping that shadows nothing.
const noPrev = -1

// Mapping binds Name to Target. Prev is the index of the mapping it
// shadowed, or -1.
type Mapping struct {
	Name   string
	Target ast.NodeID
	Prev   int
}

type Table struct {
	mappings []Mapping
	last     map[string]int // name -> index of visible mapping
	scopes   []int          // len(mappings) at each EnterScope
}

func New() *Table {
	return &Table{last: make(map[string]int)}
}

// Find returns the visible binding for name.
func (t *Table) Find(name string) (ast.NodeID, bool) {
	i, ok := t.last[name]
	if !ok {
		return ast.None, false
	}
	return t.mappings[i].Target, true
}

// Add binds name to id until the enclosing scope is left.
func (t *Table) Add(name string, id ast.NodeID) {
	prev := noPrev
	if i, ok := t.last[name]; ok {
		prev = i
	}
	t.mappings = append(t.mappings, Mapping{Name: name, Target: id, Prev: prev})
	t.last[name] = len(t.mappings) - 1
}

func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, len(t.mappings))
}

// ExitScope pops every mapping added since the matching EnterScope, newest
// first, and drops them from the stack.
func (t *Table) ExitScope() error {
	if len(t.scopes) == 0 {
		return ErrScopeUnderflow
	}
	mark := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]
	for i := len(t.mappings) - 1; i >= mark; i-- {
		m := t.mappings[i]
		if m.Prev == noPrev {
			delete(t.last, m.Name)
		} else {
			t.last[m.Name] = m.Prev
		}
	}
	t.mappings = t.mappings[:mark]
	return nil
}

// Depth is the number of open scopes.
func (t *Table) Depth() int {
	return len(t.scopes)
}

// Mappings returns a copy of the live shadow stack, oldest first.
func (t *Table) Mappings() []Mapping {
	return append([]Mapping(nil), t.mappings...)
}

// String returns a deterministically ordered dump of the visible bindings.
func (t *Table) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scopes: %d\n", len(t.scopes))
	if len(t.last) == 0 {
		sb.WriteString("Bindings: (empty)\n")
		return sb.String()
	}
	sb.WriteString("Bindings:\n")
	names := make([]string, 0, len(t.last))
	for name := range t.last {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		shadowed := 0
		for i := t.mappings[t.last[name]].Prev; i != noPrev; i = t.mappings[i].Prev {
			shadowed++
		}
		fmt.Fprintf(&sb, "  %-20s  Node: %d (Shadows: %d)\n", name, t.mappings[t.last[name]].Target, shadowed)
	}
	return sb.String()
}
