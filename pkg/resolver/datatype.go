package resolver

import (
	"gofront/pkg/ast"
	"gofront/pkg/diag"
)

// resolveDeclaration resolves the datatypes a declaration names.
func (r *Resolver) resolveDeclaration(id ast.NodeID) {
	switch r.arena.Construct(id).(type) {
	case ast.Function:
		for _, c := range r.arena.Children(id) {
			switch r.arena.Construct(c).(type) {
			case ast.Argument, ast.Returned:
				r.resolveDatatype(r.datatypeOf(c))
			}
		}
	case ast.Structure:
		r.resolveMembers(id)
	case ast.Variable:
		r.resolveDatatype(r.datatypeOf(id))
	}
}

func (r *Resolver) resolveMembers(structure ast.NodeID) {
	for _, m := range r.arena.Children(structure) {
		r.resolveDatatype(r.datatypeOf(m))
	}
}

// resolveDatatype rewrites the Identifier a Terminal bottoms out at into a
// Reference to the structure it names.
func (r *Resolver) resolveDatatype(dt ast.NodeID) {
	if dt == ast.None {
		return
	}
	if _, ok := r.arena.Construct(dt).(ast.Datatype); !ok {
		r.internalf(dt, "expected Datatype, found %v", r.arena.Construct(dt))
	}
	for _, c := range r.arena.Children(dt) {
		switch n := r.arena.Construct(c).(type) {
		case ast.Datatype:
			r.resolveDatatype(c)
		case ast.Structure:
			r.resolveMembers(c)
		case ast.Identifier:
			target, ok := r.table.Find(n.Name)
			if !ok {
				r.errorf(diag.Unresolved, c, "undefined type %s", n.Name)
				continue
			}
			if _, ok := r.arena.Construct(target).(ast.Structure); !ok {
				r.errorf(diag.NotAType, c, "%s is %v, not a structure", n.Name, r.arena.Construct(target))
				continue
			}
			r.arena.Replace(c, ast.Reference{Target: target})
		}
	}
}

// structOf returns the structure a datatype denotes, or ast.None. A pointer
// is followed one level when deref is set.
func (r *Resolver) structOf(dt ast.NodeID, deref bool) ast.NodeID {
	if dt == ast.None {
		return ast.None
	}
	d, ok := r.arena.Construct(dt).(ast.Datatype)
	if !ok {
		return ast.None
	}
	last := r.lastChild(dt)
	if last == ast.None {
		return ast.None
	}
	if d.Kind == ast.Pointer {
		if !deref {
			return ast.None
		}
		return r.structOf(last, false)
	}
	switch n := r.arena.Construct(last).(type) {
	case ast.Structure:
		return last
	case ast.Reference:
		if _, ok := r.arena.Construct(n.Target).(ast.Structure); ok {
			return n.Target
		}
	}
	return ast.None
}

// pointee returns the datatype a pointer datatype points to, or ast.None.
func (r *Resolver) pointee(dt ast.NodeID) ast.NodeID {
	if dt == ast.None {
		return ast.None
	}
	if d, ok := r.arena.Construct(dt).(ast.Datatype); !ok || d.Kind != ast.Pointer {
		return ast.None
	}
	return r.lastChild(dt)
}
