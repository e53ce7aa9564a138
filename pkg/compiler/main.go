// Package compiler drives the front end: source text is preprocessed, lexed
// into tokens, parsed into an ast.Arena and resolved in place.
//
// Pipeline: source → Preprocess → lexer.Lex → parser.Parse → resolver.Resolve
package compiler
