package parser

import (
	"math"

	"gofront/pkg/ast"
	"gofront/pkg/token"
)

func (p *Parser) matchExpression() bool {
	return p.matchBinaryChain(math.MaxInt)
}

// matchBinaryChain parses an enclosed operand followed by any binary
// operators that bind tighter than limit. Each operator wraps the operand
// parsed so far, so equal priorities associate to the left.
func (p *Parser) matchBinaryChain(limit int) bool {
	if !p.matchEnclosed() {
		return false
	}
	for {
		p.stashState()
		op, ok := p.matchBinaryOp()
		if !ok || op.Priority() >= limit {
			p.rollbackState()
			return true
		}
		p.startNodeWithPrev(1)
		if op == ast.Access {
			if !p.matchName() {
				p.failf("expected member name after '.'")
			}
		} else if !p.matchBinaryChain(op.Priority()) {
			p.failf("expected operand after %v", op)
		}
		p.confirmNode(ast.Expression{Kind: ast.Binary, Op: op})
	}
}

// matchBinaryOp consumes a binary operator. Two-token operators are read one
// token at a time; on false the caller rolls back whatever was consumed.
func (p *Parser) matchBinaryOp() (ast.Operator, bool) {
	if p.peekToken().Is(token.End) {
		return 0, false
	}
	switch p.consumeToken().Kind {
	case token.Plus:
		return ast.Add, true
	case token.Minus:
		// "->" belongs to a function signature.
		if p.peekToken().Is(token.Greater) {
			return 0, false
		}
		return ast.Subtract, true
	case token.Star:
		return ast.Multiply, true
	case token.Slash:
		return ast.Divide, true
	case token.Percent:
		return ast.Modulo, true
	case token.Caret:
		return ast.BitwiseXor, true
	case token.Dot:
		return ast.Access, true
	case token.Ampersand:
		if p.accept(token.Ampersand) {
			return ast.LogicalAnd, true
		}
		return ast.BitwiseAnd, true
	case token.Pipe:
		if p.accept(token.Pipe) {
			return ast.LogicalOr, true
		}
		return ast.BitwiseOr, true
	case token.Equals:
		// A lone '=' is assignment.
		if p.accept(token.Equals) {
			return ast.LogicalEquals, true
		}
	case token.Bang:
		if p.accept(token.Equals) {
			return ast.LogicalNotEquals, true
		}
	case token.Less:
		if p.accept(token.Equals) {
			return ast.LessEquals, true
		}
		return ast.Less, true
	case token.Greater:
		if p.accept(token.Equals) {
			return ast.GreaterEquals, true
		}
		return ast.Greater, true
	}
	return 0, false
}

// matchEnclosed parses an operand that needs no further lookahead: a unary
// operation, a call, a parenthesised expression, a constant or a name.
func (p *Parser) matchEnclosed() bool {
	if p.matchUnary() || p.matchCall() {
		return true
	}
	tok := p.peekToken()
	switch tok.Kind {
	case token.LParen:
		p.checkDepth()
		p.nest++
		p.consumeToken()
		if !p.matchExpression() {
			p.failf("expected expression after '('")
		}
		p.expect(token.RParen, "to close parenthesised expression")
		p.nest--
		return true
	case token.Constant:
		p.leaf(ast.Expression{Kind: ast.Constant, Value: tok.Constant})
		return true
	}
	return p.matchName()
}

var unaryOps = map[token.Kind]ast.Operator{
	token.Minus:     ast.Negate,
	token.Bang:      ast.LogicalNot,
	token.Star:      ast.Deref,
	token.Ampersand: ast.Ref,
}

func (p *Parser) matchUnary() bool {
	op, ok := unaryOps[p.peekToken().Kind]
	if !ok {
		return false
	}
	p.startNode()
	p.consumeToken()
	if !p.matchBinaryChain(ast.UnaryPriority) {
		p.failf("expected operand after %v", op)
	}
	p.confirmNode(ast.Expression{Kind: ast.Unary, Op: op})
	return true
}

// matchCall parses IDENT "(" [expression {"," expression}] ")".
func (p *Parser) matchCall() bool {
	tok := p.peekToken()
	if tok.Kind != token.Identifier || !p.peekTokenAt(1).Is(token.LParen) {
		return false
	}
	p.startNode()
	p.leaf(ast.Identifier{Name: tok.Text})
	p.consumeToken()
	if p.matchExpression() {
		for p.accept(token.Comma) {
			if !p.matchExpression() {
				p.failf("expected argument after ','")
			}
		}
	}
	p.expect(token.RParen, "to close call to "+tok.Text)
	p.confirmNode(ast.Expression{Kind: ast.Call})
	return true
}

// matchName parses IDENT as an Expression wrapping an Identifier.
func (p *Parser) matchName() bool {
	tok := p.peekToken()
	if tok.Kind != token.Identifier {
		return false
	}
	p.startNode()
	p.leaf(ast.Identifier{Name: tok.Text})
	p.confirmNode(ast.Expression{Kind: ast.Name})
	return true
}
