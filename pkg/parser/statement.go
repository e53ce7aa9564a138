package parser

import (
	"gofront/pkg/ast"
	"gofront/pkg/token"
)

// matchBlock parses "{" { symbol | statement } "}".
func (p *Parser) matchBlock() bool {
	p.startNode()
	if !p.accept(token.LBrace) {
		p.discardNode()
		return false
	}
	for p.matchSymbol() || p.matchStatement() {
	}
	p.expect(token.RBrace, "to close block")
	p.confirmNode(ast.Block{})
	return true
}

func (p *Parser) matchStatement() bool {
	return p.matchAssign() ||
		p.matchReturn() ||
		p.matchConditional() ||
		p.matchLoop() ||
		p.matchControl() ||
		p.matchBlockStatement() ||
		p.matchExpressionStatement()
}

// matchAssign parses expression "=" expression ";".
func (p *Parser) matchAssign() bool {
	p.startNode()
	if !p.matchExpression() || !p.accept(token.Equals) {
		p.discardNode()
		return false
	}
	if !p.matchExpression() {
		p.failf("expected expression after '='")
	}
	p.expect(token.Semicolon, "after assignment")
	p.confirmNode(ast.Statement{Kind: ast.Assign})
	return true
}

// matchReturn parses "return" [expression] ";".
func (p *Parser) matchReturn() bool {
	p.startNode()
	if !p.acceptKeyword(token.Return) {
		p.discardNode()
		return false
	}
	p.matchExpression()
	p.expect(token.Semicolon, "after return")
	p.confirmNode(ast.Statement{Kind: ast.Return})
	return true
}

// matchConditional parses "if" expression block ["else" (block | conditional)].
func (p *Parser) matchConditional() bool {
	p.startNode()
	if !p.acceptKeyword(token.If) {
		p.discardNode()
		return false
	}
	if !p.matchExpression() {
		p.failf("expected condition after 'if'")
	}
	if !p.matchBlock() {
		p.failf("expected block after condition")
	}
	if p.acceptKeyword(token.Else) {
		if !p.matchConditional() && !p.matchBlock() {
			p.failf("expected block or 'if' after 'else'")
		}
	}
	p.confirmNode(ast.Statement{Kind: ast.Conditional})
	return true
}

// matchLoop parses "loop" block.
func (p *Parser) matchLoop() bool {
	p.startNode()
	if !p.acceptKeyword(token.Loop) {
		p.discardNode()
		return false
	}
	if !p.matchBlock() {
		p.failf("expected block after 'loop'")
	}
	p.confirmNode(ast.Statement{Kind: ast.Loop})
	return true
}

// matchControl parses ("break" | "continue") ";".
func (p *Parser) matchControl() bool {
	p.startNode()
	var kind ast.StatementKind
	switch {
	case p.acceptKeyword(token.Break):
		kind = ast.Break
	case p.acceptKeyword(token.Continue):
		kind = ast.Continue
	default:
		p.discardNode()
		return false
	}
	p.expect(token.Semicolon, "after "+kind.String())
	p.confirmNode(ast.Statement{Kind: kind})
	return true
}

func (p *Parser) matchBlockStatement() bool {
	p.startNode()
	if !p.matchBlock() {
		p.discardNode()
		return false
	}
	p.confirmNode(ast.Statement{Kind: ast.BlockStatement})
	return true
}

// matchExpressionStatement parses expression ";".
func (p *Parser) matchExpressionStatement() bool {
	p.startNode()
	if !p.matchExpression() {
		p.discardNode()
		return false
	}
	p.expect(token.Semicolon, "after expression")
	p.confirmNode(ast.Statement{Kind: ast.ExpressionStatement})
	return true
}
