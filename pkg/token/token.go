// Package token defines the lexical units consumed by the parser.
package token

import (
	"fmt"
	"strconv"
)

// Kind identifies the category of a lexed token.
type Kind int

const (
	End Kind = iota // sentinel: end of input

	Identifier // name
	Keyword    // reserved word, see Token.Keyword
	Constant   // literal, see Token.Constant

	// Paired delimiters
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]

	// Single-character punctuation. Multi-character operators such as "&&"
	// or "->" are never fused here; the parser combines them with lookahead.
	Ampersand  // &
	Caret      // ^
	Percent    // %
	Equals     // =
	Semicolon  // ;
	Colon      // :
	Comma      // ,
	Dot        // .
	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Backslash  // \
	Less       // <
	Greater    // >
	Tilde      // ~
	Pipe       // |
	Dollar     // $
	Bang       // !
	Question   // ?
	Backtick   // `
)

var kindNames = [...]string{
	End:        "End",
	Identifier: "Identifier",
	Keyword:    "Keyword",
	Constant:   "Constant",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
	Ampersand:  "&",
	Caret:      "^",
	Percent:    "%",
	Equals:     "=",
	Semicolon:  ";",
	Colon:      ":",
	Comma:      ",",
	Dot:        ".",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Backslash:  "\\",
	Less:       "<",
	Greater:    ">",
	Tilde:      "~",
	Pipe:       "|",
	Dollar:     "$",
	Bang:       "!",
	Question:   "?",
	Backtick:   "`",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// punctuation maps a source rune to its single-character Kind.
var punctuation = map[rune]Kind{}

func init() {
	for k := LParen; k <= Backtick; k++ {
		punctuation[[]rune(kindNames[k])[0]] = k
	}
}

// Punctuation reports the Kind for a punctuation rune.
func Punctuation(r rune) (Kind, bool) {
	k, ok := punctuation[r]
	return k, ok
}

// Word is a reserved word.
type Word int

const (
	NoWord Word = iota
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	C8
	Mut
	Return
	Function
	Struct
	If
	Else
	Loop
	Break
	Continue
)

var words = [...]string{
	NoWord:   "",
	U8:       "u8",
	U16:      "u16",
	U32:      "u32",
	U64:      "u64",
	I8:       "i8",
	I16:      "i16",
	I32:      "i32",
	I64:      "i64",
	F32:      "f32",
	F64:      "f64",
	C8:       "c8",
	Mut:      "mut",
	Return:   "return",
	Function: "function",
	Struct:   "struct",
	If:       "if",
	Else:     "else",
	Loop:     "loop",
	Break:    "break",
	Continue: "continue",
}

var keywords = map[string]Word{}

func init() {
	for w := U8; w <= Continue; w++ {
		keywords[words[w]] = w
	}
}

// Lookup returns the reserved word spelled s, or NoWord.
func Lookup(s string) Word {
	return keywords[s]
}

func (w Word) String() string {
	if int(w) > 0 && int(w) < len(words) {
		return words[w]
	}
	return fmt.Sprintf("Word(%d)", int(w))
}

// IsPrimitive reports whether w names a primitive datatype.
func (w Word) IsPrimitive() bool {
	return w >= U8 && w <= C8
}

// ConstKind tags the payload of a Const.
type ConstKind int

const (
	Int ConstKind = iota
	Float
	Str
)

// Const is a literal value.
type Const struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
}

func IntConst(v int64) Const     { return Const{Kind: Int, Int: v} }
func FloatConst(v float64) Const { return Const{Kind: Float, Float: v} }
func StrConst(v string) Const    { return Const{Kind: Str, Str: v} }

func (c Const) String() string {
	switch c.Kind {
	case Int:
		return fmt.Sprintf("Int(%d)", c.Int)
	case Float:
		return "Float(" + strconv.FormatFloat(c.Float, 'g', -1, 64) + ")"
	default:
		return fmt.Sprintf("String(%q)", c.Str)
	}
}

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Kind     Kind
	Keyword  Word   // set when Kind == Keyword
	Constant Const  // set when Kind == Constant
	Text     string // identifier name, or the source text of the token
	Pos      Pos
}

// Is reports whether t is the punctuation or structural kind k.
func (t Token) Is(k Kind) bool {
	return t.Kind == k
}

// IsKeyword reports whether t is the reserved word w.
func (t Token) IsKeyword(w Word) bool {
	return t.Kind == Keyword && t.Keyword == w
}

func (t Token) String() string {
	switch t.Kind {
	case Identifier:
		return fmt.Sprintf("Identifier(%s)", t.Text)
	case Keyword:
		return fmt.Sprintf("Keyword(%s)", t.Keyword)
	case Constant:
		return fmt.Sprintf("Constant(%s)", t.Constant)
	default:
		return t.Kind.String()
	}
}
