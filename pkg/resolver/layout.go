package resolver

import (
	"slices"

	"gofront/pkg/ast"
	"gofront/pkg/diag"
)

// layoutDeclaration sizes every type a declaration introduces or names, so
// that each reachable structure ends up laid out.
func (r *Resolver) layoutDeclaration(id ast.NodeID) {
	switch r.arena.Construct(id).(type) {
	case ast.Structure:
		r.FullyDefineStructure(id)
	case ast.Variable:
		r.sizeOf(r.datatypeOf(id))
	case ast.Function:
		for _, c := range r.arena.Children(id) {
			switch r.arena.Construct(c).(type) {
			case ast.Argument, ast.Returned:
				r.sizeOf(r.datatypeOf(c))
			}
		}
	}
}

// FullyDefineStructure computes the size of a structure and the offset of
// each member, unless its size is already known. Members are placed at the
// next multiple of their own size; the total is rounded up to a multiple of
// the largest member. Structures it contains by value are laid out first.
func (r *Resolver) FullyDefineStructure(id ast.NodeID) Layout {
	s, ok := r.arena.Construct(id).(ast.Structure)
	if !ok {
		r.internalf(id, "cannot lay out %v", r.arena.Construct(id))
	}
	if l, done := r.result.Structs[id]; done {
		return l
	}
	if s.Size != 0 {
		return Layout{Size: s.Size}
	}
	if slices.Contains(r.pending, id) {
		r.errorf(diag.Cyclic, id, "structure %s contains itself", s.Name)
		return Layout{}
	}
	r.pending = append(r.pending, id)
	defer func() { r.pending = r.pending[:len(r.pending)-1] }()

	size, largest := 0, 0
	for _, m := range r.arena.Children(id) {
		member, ok := r.arena.Construct(m).(ast.Member)
		if !ok {
			r.internalf(m, "structure %s has child %v", s.Name, r.arena.Construct(m))
		}
		l := r.sizeOf(r.datatypeOf(m))
		offset := roundUp(size, l.Size)
		r.arena.Replace(m, ast.Member{Name: member.Name, Offset: offset})
		size = offset + l.Size
		largest = max(largest, l.Size)
	}
	size = roundUp(size, largest)

	layout := Layout{Size: size, Align: largest}
	r.arena.Replace(id, ast.Structure{Name: s.Name, Size: size})
	r.result.Structs[id] = layout
	r.result.Layouts++
	r.log.Debug("layout", "structure", s.Name, "node", id, "size", size, "align", largest)
	return layout
}

// sizeOf returns the size and alignment of a datatype. Pointers never look
// at what they point to.
func (r *Resolver) sizeOf(dt ast.NodeID) Layout {
	if dt == ast.None {
		return Layout{}
	}
	d, ok := r.arena.Construct(dt).(ast.Datatype)
	if !ok {
		r.internalf(dt, "expected Datatype, found %v", r.arena.Construct(dt))
	}
	if d.Kind == ast.Pointer {
		return Layout{Size: ast.PointerSize, Align: ast.PointerSize}
	}
	last := r.lastChild(dt)
	if last == ast.None {
		r.internalf(dt, "terminal datatype has no type")
	}
	switch n := r.arena.Construct(last).(type) {
	case ast.Primitive:
		return Layout{Size: n.Kind.Size(), Align: n.Kind.Size()}
	case ast.Structure:
		return r.FullyDefineStructure(last)
	case ast.Reference:
		if _, ok := r.arena.Construct(n.Target).(ast.Structure); ok {
			return r.FullyDefineStructure(n.Target)
		}
	}
	// Unresolved or not a type; already reported.
	return Layout{}
}
