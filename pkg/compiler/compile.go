package compiler

import (
	"context"
	"os"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"gofront/pkg/ast"
	"gofront/pkg/lexer"
	"gofront/pkg/parser"
	"gofront/pkg/resolver"
	"gofront/pkg/token"
	"gofront/pkg/utils"
)

// Unit is one compiled translation unit.
type Unit struct {
	Name    string
	Tokens  []token.Token
	Arena   *ast.Arena
	Root    ast.NodeID
	Symbols resolver.Symbols
	Structs map[ast.NodeID]resolver.Layout
}

// Resolve parses tokens and resolves the result. tokens must end with a
// token.End.
func Resolve(tokens []token.Token, opts ...Option) (*Unit, error) {
	return resolve("", tokens, newOptions(opts))
}

// Parse preprocesses, lexes and parses src without resolving it.
func Parse(src string, opts ...Option) (*Unit, error) {
	o := newOptions(opts)
	tokens, err := load(src, o)
	if err != nil {
		return nil, err
	}
	return parse("", tokens, o)
}

// Compile preprocesses, lexes, parses and resolves src. Includes are looked
// up under Options.IncludeDir.
func Compile(src string, opts ...Option) (*Unit, error) {
	o := newOptions(opts)
	tokens, err := load(src, o)
	if err != nil {
		return nil, err
	}
	return resolve("", tokens, o)
}

// CompileFile compiles the file at path. Includes are resolved relative to
// the including file.
func CompileFile(path string, opts ...Option) (*Unit, error) {
	return compileFile(path, newOptions(opts))
}

// ParseFile reads, preprocesses and parses the file at path without
// resolving it.
func ParseFile(path string, opts ...Option) (*Unit, error) {
	src, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	tokens, err := lexer.Lex(src)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	u, err := parse(path, tokens, newOptions(opts))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return u, nil
}

// CompileFiles compiles independent units concurrently, at most
// Options.Concurrency at a time. It returns the units in the order of paths,
// or the first error. Cancelling ctx stops units that have not started; the
// units are returned anyway if all of them had already finished.
func CompileFiles(ctx context.Context, paths []string, opts ...Option) ([]*Unit, error) {
	o := newOptions(opts)
	units := make([]*Unit, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := compileFile(path, o)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The parent context may be cancelled between the last g.Go check and
	// Wait, leaving units that never ran without a worker error.
	if slices.Contains(units, nil) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("compile: unit not compiled")
	}
	return units, nil
}

// ReadFile reads and preprocesses the file at path.
func ReadFile(path string) (string, error) {
	dir, name, err := utils.GetPathInfo(path)
	if err != nil {
		return "", errors.Wrapf(err, "%s", path)
	}
	src, err := PreprocessFile(os.DirFS(dir), name)
	if err != nil {
		return "", errors.Wrapf(err, "%s", path)
	}
	return src, nil
}

func compileFile(path string, o Options) (*Unit, error) {
	log := o.Logger.With("component", "compiler", "file", path)
	log.Debug("compile")
	src, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	tokens, err := lexer.Lex(src)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	u, err := resolve(path, tokens, o)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	log.Debug("compiled", "nodes", u.Arena.Len(), "symbols", len(u.Symbols))
	return u, nil
}

func load(src string, o Options) ([]token.Token, error) {
	src, err := Preprocess(os.DirFS(o.IncludeDir), ".", src)
	if err != nil {
		return nil, err
	}
	return lexer.Lex(src)
}

func parse(name string, tokens []token.Token, o Options) (*Unit, error) {
	arena, root, err := parser.Parse(tokens, o.parser())
	if err != nil {
		return nil, err
	}
	return &Unit{Name: name, Tokens: tokens, Arena: arena, Root: root}, nil
}

func resolve(name string, tokens []token.Token, o Options) (*Unit, error) {
	u, err := parse(name, tokens, o)
	if err != nil {
		return nil, err
	}
	res, err := resolver.Resolve(u.Arena, u.Root, o.resolver())
	if err != nil {
		return nil, err
	}
	u.Symbols = res.Symbols
	u.Structs = res.Structs
	return u, nil
}
