// Package resolver turns a parsed arena into a resolved one. Declarations are
// registered per scope, every name in a type or value position is rewritten
// in place into a Reference to its declaration, structure layouts are
// computed, and each declaration gets a storage classification.
//
// Each scope is handled in passes over its direct children:
//
//  1. register every Function, Structure and Variable;
//  2. resolve the datatypes of those declarations;
//  3. lay out structures and size declared types;
//  4. resolve uses in initializers and statements, descending into nested
//     functions and blocks.
//
// Registration finishes before anything is resolved, so declarations may be
// used before they appear in the same scope.
package resolver

import (
	"io"
	"log/slog"

	"gofront/pkg/ast"
	"gofront/pkg/diag"
	"gofront/pkg/symtab"
)

// Options configures resolution.
type Options struct {
	// MaxErrors stops resolution once this many errors are collected.
	// 0 means no limit.
	MaxErrors int
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Layout is the computed size and alignment of a structure.
type Layout struct {
	Size  int
	Align int
}

// Result is what resolution adds to the arena.
type Result struct {
	Symbols Symbols
	// Structs holds the layout of every structure that was laid out,
	// including inline ones.
	Structs map[ast.NodeID]Layout
	// Layouts counts layout computations. A structure is computed at most
	// once, so this never exceeds the number of non-empty structures.
	Layouts int
}

type Resolver struct {
	arena   *ast.Arena
	table   *symtab.Table
	errs    diag.List
	result  Result
	pending []ast.NodeID // structures whose layout is in progress
	frame   *frame       // nil at program scope
	log     *slog.Logger
}

// stop unwinds resolution once errors must be reported.
type stop struct{}

func New(arena *ast.Arena, opts Options) *Resolver {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		arena: arena,
		table: symtab.New(),
		errs:  diag.List{Limit: opts.MaxErrors},
		result: Result{
			Symbols: Symbols{},
			Structs: map[ast.NodeID]Layout{},
		},
		log: log.With("component", "resolver"),
	}
}

// Resolve resolves the program rooted at root in place.
func Resolve(arena *ast.Arena, root ast.NodeID, opts Options) (*Result, error) {
	r := New(arena, opts)
	if err := r.Run(root); err != nil {
		return nil, err
	}
	return &r.result, nil
}

// Run resolves the program rooted at root. It returns the collected errors,
// or an internal error.
func (r *Resolver) Run(root ast.NodeID) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			switch v := rec.(type) {
			case stop:
				err = r.errs.Err()
			case *diag.Error:
				err = v
			default:
				panic(rec)
			}
		}
	}()
	if !r.arena.Valid(root) {
		r.internalf(root, "root %d is not in the arena", root)
	}
	if _, ok := r.arena.Construct(root).(ast.Program); !ok {
		r.internalf(root, "root is %v, not Program", r.arena.Construct(root))
	}
	r.scope(root, nil)
	if r.table.Depth() != 0 {
		r.internalf(root, "%d scopes left open", r.table.Depth())
	}
	r.log.Debug("resolved", "symbols", len(r.result.Symbols), "layouts", r.result.Layouts)
	return nil
}

// Result returns what has been resolved so far.
func (r *Resolver) Result() *Result {
	return &r.result
}

// errorf records a user-facing error at node id.
func (r *Resolver) errorf(kind diag.Kind, id ast.NodeID, format string, args ...any) {
	e := diag.Errorf(kind, r.arena.Node(id).Pos, format, args...)
	r.log.Debug("error", "error", e)
	if !r.errs.Add(e) {
		panic(stop{})
	}
}

// internalf aborts resolution with an internal error.
func (r *Resolver) internalf(id ast.NodeID, format string, args ...any) {
	var e *diag.Error
	if r.arena.Valid(id) {
		e = diag.Errorf(diag.Internal, r.arena.Node(id).Pos, format, args...)
	} else {
		e = diag.Errorf(diag.Internal, r.arena.Node(r.arena.Root()).Pos, format, args...)
	}
	panic(e)
}

// scope resolves the direct children of node in a new scope. enter runs
// after the scope is opened, before registration.
func (r *Resolver) scope(node ast.NodeID, enter func()) {
	r.table.EnterScope()
	r.log.Debug("enter scope", "node", node, "depth", r.table.Depth())
	if enter != nil {
		enter()
	}

	kids := r.arena.Children(node)
	for _, id := range kids {
		r.register(id)
	}
	for _, id := range kids {
		r.resolveDeclaration(id)
	}
	for _, id := range kids {
		r.layoutDeclaration(id)
	}
	for _, id := range kids {
		r.resolveUses(id)
	}

	if err := r.table.ExitScope(); err != nil {
		r.internalf(node, "%v", err)
	}
	if r.errs.Len() > 0 {
		panic(stop{})
	}
}

// register binds a declaration in the current scope.
func (r *Resolver) register(id ast.NodeID) {
	switch c := r.arena.Construct(id).(type) {
	case ast.Function:
		r.table.Add(c.Name, id)
		r.result.Symbols[id] = Symbol{Node: id, Storage: Func{Label: functionLabel(c.Name, r.table.Depth()-1)}}
		r.log.Debug("register", "function", c.Name, "node", id)
	case ast.Structure:
		r.table.Add(c.Name, id)
		r.result.Symbols[id] = Symbol{Node: id, Storage: Type{}}
		r.log.Debug("register", "structure", c.Name, "node", id)
	case ast.Variable:
		r.table.Add(c.Name, id)
		r.log.Debug("register", "variable", c.Name, "node", id)
	}
}

// datatypeOf returns the Datatype child of a Variable, Argument, Member or
// Returned node, or ast.None.
func (r *Resolver) datatypeOf(id ast.NodeID) ast.NodeID {
	for _, c := range r.arena.Children(id) {
		if _, ok := r.arena.Construct(c).(ast.Datatype); ok {
			return c
		}
	}
	return ast.None
}

// lastChild returns the last child of id, or ast.None.
func (r *Resolver) lastChild(id ast.NodeID) ast.NodeID {
	kids := r.arena.Children(id)
	if len(kids) == 0 {
		return ast.None
	}
	return kids[len(kids)-1]
}
