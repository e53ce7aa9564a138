package parser

import (
	"gofront/pkg/ast"
	"gofront/pkg/token"
)

// matchProgram parses { symbol } End.
func (p *Parser) matchProgram() ast.NodeID {
	p.startNode()
	for p.matchSymbol() {
	}
	if !p.peekToken().Is(token.End) {
		p.failf("expected function, structure or variable declaration")
	}
	return p.confirmNode(ast.Program{})
}

func (p *Parser) matchSymbol() bool {
	return p.matchFunction() || p.matchStructure() || p.matchVariable()
}

// matchFunction parses
//
//	IDENT ":" ["="] "function" "(" [argument {"," argument}] ")"
//	      ["->" (returned | "(" returned {"," returned} ")")] block
func (p *Parser) matchFunction() bool {
	p.startNode()
	name := p.peekToken()
	if !p.accept(token.Identifier) || !p.accept(token.Colon) {
		p.discardNode()
		return false
	}
	p.accept(token.Equals)
	if !p.acceptKeyword(token.Function) {
		p.discardNode()
		return false
	}

	p.expect(token.LParen, "after 'function'")
	if p.matchArgument() {
		for p.accept(token.Comma) {
			if !p.matchArgument() {
				p.failf("expected argument after ','")
			}
		}
	}
	p.expect(token.RParen, "to close argument list")

	if p.accept(token.Minus) {
		p.expect(token.Greater, "in '->'")
		if p.accept(token.LParen) {
			if !p.matchReturned() {
				p.failf("expected return type")
			}
			for p.accept(token.Comma) {
				if !p.matchReturned() {
					p.failf("expected return type after ','")
				}
			}
			p.expect(token.RParen, "to close return list")
		} else if !p.matchReturned() {
			p.failf("expected return type after '->'")
		}
	}

	if !p.matchBlock() {
		p.failf("expected function body")
	}
	p.confirmNode(ast.Function{Name: name.Text})
	return true
}

// matchArgument parses IDENT ":" datatype.
func (p *Parser) matchArgument() bool {
	p.startNode()
	name := p.peekToken()
	if !p.accept(token.Identifier) || !p.accept(token.Colon) {
		p.discardNode()
		return false
	}
	if !p.matchDatatype() {
		p.failf("expected datatype for argument %s", name.Text)
	}
	p.confirmNode(ast.Argument{Name: name.Text})
	return true
}

func (p *Parser) matchReturned() bool {
	p.startNode()
	if !p.matchDatatype() {
		p.discardNode()
		return false
	}
	p.confirmNode(ast.Returned{})
	return true
}

// matchStructure parses IDENT ":" "=" "struct" "{" {member} "}" [";"].
func (p *Parser) matchStructure() bool {
	p.startNode()
	name := p.peekToken()
	if !p.accept(token.Identifier) || !p.accept(token.Colon) || !p.accept(token.Equals) || !p.acceptKeyword(token.Struct) {
		p.discardNode()
		return false
	}
	p.matchMembers()
	p.accept(token.Semicolon)
	p.confirmNode(ast.Structure{Name: name.Text})
	return true
}

// matchMembers parses "{" {member} "}" into pending Member nodes.
func (p *Parser) matchMembers() {
	p.expect(token.LBrace, "to open struct body")
	for p.matchMember() {
	}
	p.expect(token.RBrace, "to close struct body")
}

// matchMember parses IDENT ":" datatype ";".
func (p *Parser) matchMember() bool {
	p.startNode()
	name := p.peekToken()
	if !p.accept(token.Identifier) || !p.accept(token.Colon) {
		p.discardNode()
		return false
	}
	if !p.matchDatatype() {
		p.failf("expected datatype for member %s", name.Text)
	}
	p.expect(token.Semicolon, "after member")
	p.confirmNode(ast.Member{Name: name.Text})
	return true
}

// matchVariable parses IDENT ":" datatype ["=" expression] ";".
func (p *Parser) matchVariable() bool {
	p.startNode()
	name := p.peekToken()
	if !p.accept(token.Identifier) || !p.accept(token.Colon) {
		p.discardNode()
		return false
	}
	if !p.matchDatatype() {
		p.failf("expected datatype for variable %s", name.Text)
	}
	if p.accept(token.Equals) && !p.matchExpression() {
		p.failf("expected initializer for variable %s", name.Text)
	}
	p.expect(token.Semicolon, "after variable declaration")
	p.confirmNode(ast.Variable{Name: name.Text})
	return true
}
