package parser

import (
	"gofront/pkg/ast"
	"gofront/pkg/token"
)

// matchDatatype parses {qualifier} ("&" datatype | terminal).
func (p *Parser) matchDatatype() bool {
	p.startNode()
	for p.peekToken().IsKeyword(token.Mut) {
		p.leaf(ast.Qualifier{Kind: ast.Mut})
	}
	if p.accept(token.Ampersand) {
		if !p.matchDatatype() {
			p.failf("expected datatype after '&'")
		}
		p.confirmNode(ast.Datatype{Kind: ast.Pointer})
		return true
	}
	if !p.matchTerminal() {
		p.discardNode()
		return false
	}
	p.confirmNode(ast.Datatype{Kind: ast.Terminal})
	return true
}

// matchTerminal parses primitive | IDENT | "struct" "{" {member} "}".
func (p *Parser) matchTerminal() bool {
	tok := p.peekToken()
	switch {
	case tok.Kind == token.Keyword && tok.Keyword.IsPrimitive():
		prim, _ := ast.PrimitiveFor(tok.Keyword)
		p.leaf(ast.Primitive{Kind: prim})
		return true
	case tok.Kind == token.Identifier:
		p.leaf(ast.Identifier{Name: tok.Text})
		return true
	case tok.IsKeyword(token.Struct):
		p.startNode()
		p.consumeToken()
		p.matchMembers()
		p.confirmNode(ast.Structure{})
		return true
	}
	return false
}
