// Package parser builds an ast.Arena from a token stream.
//
// Every grammar rule is a match method that either commits exactly one node
// and returns true, or leaves the cursor where it found it and returns false.
// A rule that fails after it has committed to a production (an opened block
// that is never closed, an operator with no operand) aborts the whole parse
// with a grammar error.
package parser

import (
	"fmt"
	"io"
	"log/slog"

	"gofront/pkg/ast"
	"gofront/pkg/diag"
	"gofront/pkg/token"
)

// DefaultMaxDepth bounds the checkpoint stack when Options.MaxDepth is 0.
const DefaultMaxDepth = 10000

// Options configures a parse.
type Options struct {
	// MaxDepth limits how many rules may be open at once.
	MaxDepth int
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// cursor is the parser position: next token to read, arena length, and
// position in the staging list of pending children.
type cursor struct {
	token int
	node  int
	child int
}

// Parser holds all mutable state for one parse.
type Parser struct {
	tokens   []token.Token
	arena    *ast.Arena
	stack    []cursor
	children []ast.NodeID
	state    cursor
	stashed  int
	// nest counts open parentheses, which push no checkpoint.
	nest     int
	maxDepth int
	log      *slog.Logger
}

// bailout carries a fatal error up to Parse.
type bailout struct {
	err *diag.Error
}

func newParser(tokens []token.Token, opts Options) *Parser {
	p := &Parser{
		tokens:   tokens,
		arena:    ast.NewArena(),
		maxDepth: opts.MaxDepth,
		log:      opts.Logger,
	}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}
	if p.log == nil {
		p.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p.log = p.log.With("component", "parser")
	return p
}

// Parse parses a whole program. tokens must end with a token.End. On success
// it returns the arena and the index of the Program node.
func Parse(tokens []token.Token, opts Options) (*ast.Arena, ast.NodeID, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.End {
		return nil, ast.None, diag.Errorf(diag.Internal, token.Pos{}, "token stream is not terminated by End")
	}
	p := newParser(tokens, opts)
	var root ast.NodeID
	if err := p.run(func() { root = p.matchProgram() }); err != nil {
		p.log.Debug("parse aborted", "error", err)
		return nil, ast.None, err
	}
	p.log.Debug("parsed", "nodes", p.arena.Len(), "root", root)
	return p.arena, root, nil
}

// run calls f, turning an abort into an error.
func (p *Parser) run(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	f()
	return nil
}

// failf aborts the parse with a grammar error at the next token.
func (p *Parser) failf(format string, args ...any) {
	tok := p.tokens[p.state.token]
	msg := fmt.Sprintf(format, args...)
	panic(bailout{diag.Errorf(diag.Grammar, tok.Pos, "%s, found %v", msg, tok)})
}

// internalf aborts the parse with an internal error.
func (p *Parser) internalf(format string, args ...any) {
	var pos token.Pos
	if p.state.token < len(p.tokens) {
		pos = p.tokens[p.state.token].Pos
	}
	panic(bailout{diag.Errorf(diag.Internal, pos, format, args...)})
}

// checkDepth aborts once checkpoints and open parentheses together reach
// maxDepth.
func (p *Parser) checkDepth() {
	if len(p.stack)+p.nest >= p.maxDepth {
		tok := p.tokens[p.state.token]
		panic(bailout{diag.Errorf(diag.Grammar, tok.Pos, "nesting too deep (limit %d)", p.maxDepth)})
	}
}

// startNode pushes the current cursor as a checkpoint.
func (p *Parser) startNode() {
	p.checkDepth()
	p.stack = append(p.stack, p.state)
}

// startNodeWithPrev is startNode, except the n most recently committed
// pending nodes become children of the node being built.
func (p *Parser) startNodeWithPrev(n int) {
	if n > p.state.child {
		p.internalf("cannot adopt %d nodes, only %d pending", n, p.state.child)
	}
	p.state.child -= n
	p.startNode()
	p.state.child += n
}

// confirmNode pops the checkpoint and commits c with every node pending
// since then as its children. The new node is itself left pending.
func (p *Parser) confirmNode(c ast.Construct) ast.NodeID {
	if len(p.stack) == 0 {
		p.internalf("confirm %v without a started node", c)
	}
	start := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	kids := p.children[start.child:p.state.child]
	pos := p.tokens[start.token].Pos
	if len(kids) > 0 {
		if first := p.arena.Node(kids[0]).Pos; before(first, pos) {
			pos = first
		}
	}
	id := p.arena.Append(c, pos, kids)

	p.children = append(p.children[:start.child], id)
	p.state.child = start.child + 1
	p.state.node = p.arena.Len()
	return id
}

// discardNode restores the checkpoint. Nodes appended since then stay in the
// arena but nothing will link to them.
func (p *Parser) discardNode() {
	if len(p.stack) == 0 {
		p.internalf("discard without a started node")
	}
	p.state = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.children = p.children[:p.state.child]
}

// leaf consumes the next token and commits c for it with no children.
func (p *Parser) leaf(c ast.Construct) ast.NodeID {
	p.startNode()
	p.consumeToken()
	return p.confirmNode(c)
}

func (p *Parser) peekToken() token.Token {
	if p.state.token >= len(p.tokens) {
		p.internalf("read past end of input")
	}
	return p.tokens[p.state.token]
}

// peekTokenAt looks n tokens ahead. It never looks past End.
func (p *Parser) peekTokenAt(n int) token.Token {
	i := p.state.token + n
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	return p.tokens[i]
}

func (p *Parser) consumeToken() token.Token {
	tok := p.peekToken()
	if tok.Kind == token.End {
		p.internalf("consumed End")
	}
	p.state.token++
	return tok
}

// accept consumes the next token if it has kind k.
func (p *Parser) accept(k token.Kind) bool {
	if p.peekToken().Kind != k {
		return false
	}
	p.consumeToken()
	return true
}

// acceptKeyword consumes the next token if it is the reserved word w.
func (p *Parser) acceptKeyword(w token.Word) bool {
	if !p.peekToken().IsKeyword(w) {
		return false
	}
	p.consumeToken()
	return true
}

// expect consumes a token of kind k or aborts.
func (p *Parser) expect(k token.Kind, context string) {
	if !p.accept(k) {
		p.failf("expected '%v' %s", k, context)
	}
}

// stashState saves the token position for a fixed lookahead.
func (p *Parser) stashState() {
	p.stashed = p.state.token
}

// rollbackState returns to the stashed token position.
func (p *Parser) rollbackState() {
	p.state.token = p.stashed
}

func before(a, b token.Pos) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Col < b.Col)
}
