package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes the tree under root to w, one node per line, indented two
// spaces per level and prefixed with the node index.
func Fprint(w io.Writer, a *Arena, root NodeID) error {
	type frame struct {
		id    NodeID
		depth int
	}
	if !a.Valid(root) {
		return nil
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := a.nodes[f.id]
		if _, err := fmt.Fprintf(w, "%s%d %v\n", strings.Repeat("  ", f.depth), f.id, n.Construct); err != nil {
			return err
		}
		// The root's siblings are not part of its tree.
		if n.Next != None && f.id != root {
			stack = append(stack, frame{n.Next, f.depth})
		}
		if n.Child != None {
			stack = append(stack, frame{n.Child, f.depth + 1})
		}
	}
	return nil
}

// String dumps the tree under Root.
func (a *Arena) String() string {
	var sb strings.Builder
	Fprint(&sb, a, a.Root())
	return sb.String()
}
