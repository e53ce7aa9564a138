// Package ast holds the syntax tree of a unit: an append-only arena of nodes
// linked first-child/next-sibling.
package ast

import (
	"fmt"

	"fortio.org/safecast"

	"gofront/pkg/token"
)

// NodeID indexes a Node in an Arena.
type NodeID uint32

// None marks an absent Next or Child link.
const None NodeID = ^NodeID(0)

// Node is one construct together with its tree links.
type Node struct {
	Construct Construct
	Next      NodeID
	Child     NodeID
	Pos       token.Pos
}

// Arena owns every Node of a unit. Nodes are never removed or moved, so an
// index stays valid for the life of the Arena.
type Arena struct {
	nodes []Node
}

func NewArena() *Arena {
	return &Arena{}
}

// Append writes a node at the next free slot, linking children in order as
// its child chain, and returns its index. Every child must already be in the
// arena.
func (a *Arena) Append(c Construct, pos token.Pos, children []NodeID) NodeID {
	v, err := safecast.Conv[uint32](len(a.nodes))
	if err != nil || NodeID(v) == None {
		panic(fmt.Errorf("ast: arena overflow: %w", err))
	}
	id := NodeID(v)
	n := Node{Construct: c, Next: None, Child: None, Pos: pos}
	if len(children) > 0 {
		n.Child = children[0]
		for i := 0; i+1 < len(children); i++ {
			a.nodes[children[i]].Next = children[i+1]
		}
		a.nodes[children[len(children)-1]].Next = None
	}
	a.nodes = append(a.nodes, n)
	return id
}

// Replace rewrites the payload of id. Links are kept, except that a
// Reference has no children.
func (a *Arena) Replace(id NodeID, c Construct) {
	n := &a.nodes[id]
	n.Construct = c
	if _, ok := c.(Reference); ok {
		n.Child = None
	}
}

// Node returns a copy of the node at id.
func (a *Arena) Node(id NodeID) Node {
	return a.nodes[id]
}

// Construct returns the payload of id.
func (a *Arena) Construct(id NodeID) Construct {
	return a.nodes[id].Construct
}

// Len is the number of nodes ever appended, orphans included.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Valid reports whether id names a node in the arena.
func (a *Arena) Valid(id NodeID) bool {
	return id != None && int(id) < len(a.nodes)
}

// Root is the last appended node, or None for an empty arena.
func (a *Arena) Root() NodeID {
	if len(a.nodes) == 0 {
		return None
	}
	return NodeID(len(a.nodes) - 1)
}

// Children returns the child chain of id in order.
func (a *Arena) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := a.nodes[id].Child; c != None; c = a.nodes[c].Next {
		out = append(out, c)
	}
	return out
}

// Reachable returns the set of nodes reachable from root through structural
// links. Reference targets are not followed.
func (a *Arena) Reachable(root NodeID) map[NodeID]bool {
	seen := map[NodeID]bool{}
	var walk func(NodeID)
	walk = func(id NodeID) {
		seen[id] = true
		for _, c := range a.Children(id) {
			walk(c)
		}
	}
	if a.Valid(root) {
		walk(root)
	}
	return seen
}
