// Package lexer turns source text into the token stream read by the parser.
package lexer

import (
	"strconv"
	"unicode"

	"gofront/pkg/diag"
	"gofront/pkg/token"
)

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based column
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) here() token.Pos {
	return token.Pos{Line: l.line, Col: l.col}
}

func (l *Lexer) errorf(pos token.Pos, format string, args ...any) error {
	return diag.Errorf(diag.Grammar, pos, format, args...)
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed.
func (l *Lexer) skipBlockComment(start token.Pos) error {
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return l.errorf(start, "unterminated block comment")
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// scanIdent collects an identifier or keyword.
func (l *Lexer) scanIdent() token.Token {
	pos := l.here()
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	if w := token.Lookup(text); w != token.NoWord {
		return token.Token{Kind: token.Keyword, Keyword: w, Text: text, Pos: pos}
	}
	return token.Token{Kind: token.Identifier, Text: text, Pos: pos}
}

func isHex(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanNumber collects a decimal or hex integer, or a decimal float with a
// single '.' followed by at least one digit.
func (l *Lexer) scanNumber() (token.Token, error) {
	pos := l.here()
	start := l.pos

	if l.peek() == '0' && (l.peek2() == 'x' || l.peek2() == 'X') {
		l.advance()
		l.advance()
		for l.pos < len(l.src) && isHex(l.peek()) {
			l.advance()
		}
		text := string(l.src[start:l.pos])
		v, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			return token.Token{}, l.errorf(pos, "invalid integer %q", text)
		}
		return token.Token{Kind: token.Constant, Constant: token.IntConst(v), Text: text, Pos: pos}, nil
	}

	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	float := false
	if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
		float = true
		l.advance()
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			l.advance()
		}
		if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
			return token.Token{}, l.errorf(pos, "two periods in number")
		}
	}

	text := string(l.src[start:l.pos])
	if float {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token.Token{}, l.errorf(pos, "invalid float %q", text)
		}
		return token.Token{Kind: token.Constant, Constant: token.FloatConst(v), Text: text, Pos: pos}, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token.Token{}, l.errorf(pos, "invalid integer %q", text)
	}
	return token.Token{Kind: token.Constant, Constant: token.IntConst(v), Text: text, Pos: pos}, nil
}

// scanEscape consumes the rune after a backslash.
func (l *Lexer) scanEscape(pos token.Pos, quote rune) (rune, error) {
	next := l.advance()
	switch next {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '0':
		return 0, nil
	case '\\':
		return '\\', nil
	case quote:
		return quote, nil
	}
	return 0, l.errorf(pos, "unknown escape sequence \\%c", next)
}

// scanChar collects a character literal 'c'. Character literals become
// integer constants holding the code point.
func (l *Lexer) scanChar() (token.Token, error) {
	pos := l.here()
	start := l.pos
	l.advance() // opening '

	var val rune
	switch r := l.peek(); r {
	case '\'':
		return token.Token{}, l.errorf(pos, "empty character literal")
	case '\\':
		l.advance()
		v, err := l.scanEscape(pos, '\'')
		if err != nil {
			return token.Token{}, err
		}
		val = v
	default:
		val = l.advance()
	}

	if l.peek() != '\'' {
		return token.Token{}, l.errorf(pos, "unterminated character literal")
	}
	l.advance()
	return token.Token{Kind: token.Constant, Constant: token.IntConst(int64(val)), Text: string(l.src[start:l.pos]), Pos: pos}, nil
}

// scanString collects a string literal "...".
func (l *Lexer) scanString() (token.Token, error) {
	pos := l.here()
	start := l.pos
	l.advance() // opening "
	var val []rune

	for l.pos < len(l.src) && l.peek() != '"' {
		r := l.peek()
		if r == '\n' {
			return token.Token{}, l.errorf(pos, "unterminated string literal")
		}
		if r == '\\' {
			l.advance()
			v, err := l.scanEscape(pos, '"')
			if err != nil {
				return token.Token{}, err
			}
			val = append(val, v)
			continue
		}
		val = append(val, l.advance())
	}
	if l.pos >= len(l.src) {
		return token.Token{}, l.errorf(pos, "unterminated string literal")
	}
	l.advance() // closing "
	return token.Token{Kind: token.Constant, Constant: token.StrConst(string(val)), Text: string(l.src[start:l.pos]), Pos: pos}, nil
}

// nextToken skips whitespace and comments and returns the next token.
func (l *Lexer) nextToken() (token.Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return token.Token{Kind: token.End, Pos: l.here()}, nil
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		if l.peek() == '/' && l.peek2() == '*' {
			start := l.here()
			l.advance()
			l.advance()
			if err := l.skipBlockComment(start); err != nil {
				return token.Token{}, err
			}
			continue
		}
		break
	}

	ch := l.peek()
	switch {
	case isIdentStart(ch):
		return l.scanIdent(), nil
	case unicode.IsDigit(ch):
		return l.scanNumber()
	case ch == '"':
		return l.scanString()
	case ch == '\'':
		return l.scanChar()
	}

	pos := l.here()
	if k, ok := token.Punctuation(ch); ok {
		l.advance()
		return token.Token{Kind: k, Text: string(ch), Pos: pos}, nil
	}
	return token.Token{}, l.errorf(pos, "unexpected character %q", ch)
}

// Lex tokenises src and returns all tokens including the final End token.
// It stops at the first illegal character or unterminated literal.
func Lex(src string) ([]token.Token, error) {
	l := newLexer(src)
	var tokens []token.Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.End {
			return tokens, nil
		}
	}
}
