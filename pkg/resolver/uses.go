package resolver

import (
	"gofront/pkg/ast"
	"gofront/pkg/diag"
)

// resolveUses resolves the names a scope child uses and assigns storage to
// the variables it declares.
func (r *Resolver) resolveUses(id ast.NodeID) {
	switch c := r.arena.Construct(id).(type) {
	case ast.Variable:
		kids := r.arena.Children(id)
		for _, k := range kids[1:] {
			r.resolveExpression(k)
		}
		r.allocate(id, c.Name)
	case ast.Function:
		r.resolveFunction(id, c)
	case ast.Statement:
		r.resolveStatement(id, c)
	}
}

// allocate records the storage of a variable declared in the current scope.
func (r *Resolver) allocate(id ast.NodeID, name string) {
	if r.frame == nil {
		r.result.Symbols[id] = Symbol{Node: id, Storage: Global{Label: name}}
		return
	}
	l := r.sizeOf(r.datatypeOf(id))
	r.result.Symbols[id] = Symbol{Node: id, Storage: Local{Offset: r.frame.allocate(l.Size, l.Align)}}
}

// resolveFunction opens the function scope, binds the arguments in a fresh
// frame and resolves the body in a scope of its own.
func (r *Resolver) resolveFunction(id ast.NodeID, fn ast.Function) {
	outer := r.frame
	r.frame = &frame{}
	defer func() { r.frame = outer }()

	r.log.Debug("function", "name", fn.Name, "node", id)
	r.table.EnterScope()
	body := ast.None
	for _, c := range r.arena.Children(id) {
		switch a := r.arena.Construct(c).(type) {
		case ast.Argument:
			r.table.Add(a.Name, c)
			l := r.sizeOf(r.datatypeOf(c))
			r.result.Symbols[c] = Symbol{Node: c, Storage: Local{Offset: r.frame.allocate(l.Size, l.Align)}}
		case ast.Block:
			body = c
		}
	}
	if body == ast.None {
		r.internalf(id, "function %s has no body", fn.Name)
	}
	r.scope(body, nil)
	if err := r.table.ExitScope(); err != nil {
		r.internalf(id, "%v", err)
	}
}

func (r *Resolver) resolveStatement(id ast.NodeID, s ast.Statement) {
	for _, c := range r.arena.Children(id) {
		switch r.arena.Construct(c).(type) {
		case ast.Expression:
			r.resolveExpression(c)
		case ast.Block:
			r.scope(c, nil)
		case ast.Statement:
			r.resolveUses(c)
		default:
			r.internalf(c, "unexpected %v in %v", r.arena.Construct(c), s)
		}
	}
}

// resolveExpression rewrites every name an expression uses into a Reference
// and returns the datatype of the expression when it is statically known,
// or ast.None.
func (r *Resolver) resolveExpression(id ast.NodeID) ast.NodeID {
	e, ok := r.arena.Construct(id).(ast.Expression)
	if !ok {
		r.internalf(id, "expected Expression, found %v", r.arena.Construct(id))
	}
	kids := r.arena.Children(id)
	switch e.Kind {
	case ast.Name:
		target := r.resolveName(kids[0])
		if target == ast.None {
			return ast.None
		}
		switch r.arena.Construct(target).(type) {
		case ast.Variable, ast.Argument:
			return r.datatypeOf(target)
		}
		return ast.None

	case ast.Call:
		target := r.resolveName(kids[0])
		for _, arg := range kids[1:] {
			r.resolveExpression(arg)
		}
		if target == ast.None {
			return ast.None
		}
		if _, ok := r.arena.Construct(target).(ast.Function); !ok {
			r.errorf(diag.Unresolved, kids[0], "%v is not a function", r.arena.Construct(target))
			return ast.None
		}
		// The first return value is the type of a call.
		for _, c := range r.arena.Children(target) {
			if _, ok := r.arena.Construct(c).(ast.Returned); ok {
				return r.datatypeOf(c)
			}
		}
		return ast.None

	case ast.Unary:
		operand := r.resolveExpression(kids[0])
		if e.Op == ast.Deref {
			return r.pointee(operand)
		}
		return ast.None

	case ast.Binary:
		if e.Op == ast.Access {
			return r.resolveAccess(kids[0], kids[1])
		}
		left := r.resolveExpression(kids[0])
		r.resolveExpression(kids[1])
		switch e.Op {
		case ast.Add, ast.Subtract, ast.Multiply, ast.Divide, ast.Modulo,
			ast.BitwiseAnd, ast.BitwiseOr, ast.BitwiseXor:
			return left
		}
		return ast.None
	}
	return ast.None
}

// resolveName looks up an Identifier node and replaces it with a Reference.
// It returns the declaration, or ast.None after reporting an error.
func (r *Resolver) resolveName(id ast.NodeID) ast.NodeID {
	switch n := r.arena.Construct(id).(type) {
	case ast.Reference:
		return n.Target
	case ast.Identifier:
		target, ok := r.table.Find(n.Name)
		if !ok {
			r.errorf(diag.Unresolved, id, "undefined: %s", n.Name)
			return ast.None
		}
		r.arena.Replace(id, ast.Reference{Target: target})
		return target
	}
	r.internalf(id, "expected Identifier, found %v", r.arena.Construct(id))
	return ast.None
}

// resolveAccess resolves left.member. The member is looked up among the
// members of the structure left denotes, through at most one pointer. When
// that structure is unknown the member name is left unresolved.
func (r *Resolver) resolveAccess(left, right ast.NodeID) ast.NodeID {
	structure := r.structOf(r.resolveExpression(left), true)
	if structure == ast.None {
		return ast.None
	}
	e, ok := r.arena.Construct(right).(ast.Expression)
	if !ok || e.Kind != ast.Name {
		r.internalf(right, "member access to %v", r.arena.Construct(right))
	}
	name := r.arena.Children(right)[0]
	ident, ok := r.arena.Construct(name).(ast.Identifier)
	if !ok {
		// Already resolved.
		if ref, ok := r.arena.Construct(name).(ast.Reference); ok {
			return r.datatypeOf(ref.Target)
		}
		return ast.None
	}
	for _, m := range r.arena.Children(structure) {
		if member, ok := r.arena.Construct(m).(ast.Member); ok && member.Name == ident.Name {
			r.arena.Replace(name, ast.Reference{Target: m})
			return r.datatypeOf(m)
		}
	}
	s := r.arena.Construct(structure).(ast.Structure)
	r.errorf(diag.Unresolved, name, "structure %s has no member %s", s.Name, ident.Name)
	return ast.None
}
