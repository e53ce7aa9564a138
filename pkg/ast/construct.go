package ast

import (
	"fmt"

	"gofront/pkg/token"
)

// Construct is the payload of a Node. It is implemented by every value type
// in this file; the set is closed.
type Construct interface {
	construct()
	String() string
}

// Program is the root of a unit.
//
//	{ Function | Structure | Variable }
type Program struct{}

// Function is a function declaration.
//
//	{ Argument } , { Returned } , Block
type Function struct {
	Name string
}

// Structure is a struct declaration. Size stays 0 until the layout pass
// computes it; an inline struct has an empty Name.
//
//	{ Member }
type Structure struct {
	Name string
	Size int
}

// Variable is a variable declaration.
//
//	Datatype , [ Expression ]
type Variable struct {
	Name string
}

// Argument is a function parameter.
//
//	Datatype
type Argument struct {
	Name string
}

// Returned is one entry of a function's return list.
//
//	Datatype
type Returned struct{}

// Member is a struct field. Offset is filled in by the layout pass.
//
//	Datatype
type Member struct {
	Name   string
	Offset int
}

// Block is a braced sequence of statements and declarations.
type Block struct{}

// Statement children depend on Kind:
//
//	Assign       Expression , Expression
//	Return       [ Expression ]
//	Conditional  Expression , Block , [ Block | Statement(Conditional) ]
//	Loop         Block
//	Break        -
//	Continue     -
//	Block        Block
//	Expression   Expression
type Statement struct {
	Kind StatementKind
}

// Datatype children: { Qualifier } followed by Primitive, Identifier,
// Reference or Structure for a Terminal, or a nested Datatype for a Pointer.
type Datatype struct {
	Kind DatatypeKind
}

type Qualifier struct {
	Kind QualifierKind
}

type Primitive struct {
	Kind PrimitiveKind
}

// Expression children depend on Kind:
//
//	Call        Identifier , { Expression }
//	Unary       Expression
//	Binary      Expression , Expression
//	Constant    -
//	Identifier  Identifier
type Expression struct {
	Kind  ExpressionKind
	Op    Operator    // Unary and Binary
	Value token.Const // Constant
}

// Identifier is an unresolved name.
type Identifier struct {
	Name string
}

// Reference replaces an Identifier once its declaration is known.
type Reference struct {
	Target NodeID
}

func (Program) construct()    {}
func (Function) construct()   {}
func (Structure) construct()  {}
func (Variable) construct()   {}
func (Argument) construct()   {}
func (Returned) construct()   {}
func (Member) construct()     {}
func (Block) construct()      {}
func (Statement) construct()  {}
func (Datatype) construct()   {}
func (Qualifier) construct()  {}
func (Primitive) construct()  {}
func (Expression) construct() {}
func (Identifier) construct() {}
func (Reference) construct()  {}

func (Program) String() string     { return "Program" }
func (c Function) String() string  { return fmt.Sprintf("Function(%s)", c.Name) }
func (c Structure) String() string { return fmt.Sprintf("Structure(%s, %d)", c.Name, c.Size) }
func (c Variable) String() string  { return fmt.Sprintf("Variable(%s)", c.Name) }
func (c Argument) String() string  { return fmt.Sprintf("Argument(%s)", c.Name) }
func (Returned) String() string    { return "Returned" }
func (c Member) String() string    { return fmt.Sprintf("Member(%s, %d)", c.Name, c.Offset) }
func (Block) String() string       { return "Block" }
func (c Statement) String() string { return fmt.Sprintf("Statement(%s)", c.Kind) }
func (c Datatype) String() string  { return fmt.Sprintf("Datatype(%s)", c.Kind) }
func (c Qualifier) String() string { return fmt.Sprintf("Qualifier(%s)", c.Kind) }
func (c Primitive) String() string { return fmt.Sprintf("Primitive(%s)", c.Kind) }
func (c Identifier) String() string {
	return fmt.Sprintf("Identifier(%s)", c.Name)
}
func (c Reference) String() string { return fmt.Sprintf("Reference(%d)", c.Target) }

func (c Expression) String() string {
	switch c.Kind {
	case Call:
		return "Expression(Function)"
	case Unary:
		return fmt.Sprintf("Expression(UnaryOp(%s))", c.Op)
	case Binary:
		return fmt.Sprintf("Expression(BinaryOp(%s))", c.Op)
	case Constant:
		return fmt.Sprintf("Expression(Constant(%s))", c.Value)
	default:
		return "Expression(Identifier)"
	}
}

type StatementKind int

const (
	Assign StatementKind = iota
	Return
	Conditional
	Loop
	Break
	Continue
	BlockStatement
	ExpressionStatement
)

var statementNames = [...]string{
	Assign:              "Assign",
	Return:              "Return",
	Conditional:         "Conditional",
	Loop:                "Loop",
	Break:               "Break",
	Continue:            "Continue",
	BlockStatement:      "Block",
	ExpressionStatement: "Expression",
}

func (k StatementKind) String() string { return statementNames[k] }

type DatatypeKind int

const (
	Terminal DatatypeKind = iota
	Pointer
)

func (k DatatypeKind) String() string {
	if k == Pointer {
		return "Pointer"
	}
	return "Terminal"
}

type QualifierKind int

const (
	Mut QualifierKind = iota
)

func (QualifierKind) String() string { return "Mut" }

type PrimitiveKind int

const (
	I8 PrimitiveKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	C8
)

var primitiveNames = [...]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64", C8: "c8",
}

var primitiveSizes = [...]int{
	I8: 1, I16: 2, I32: 4, I64: 8,
	U8: 1, U16: 2, U32: 4, U64: 8,
	F32: 4, F64: 8, C8: 1,
}

func (k PrimitiveKind) String() string { return primitiveNames[k] }

// Size is the storage size of the primitive in bytes.
func (k PrimitiveKind) Size() int { return primitiveSizes[k] }

// PrimitiveFor maps a primitive keyword to its kind.
func PrimitiveFor(w token.Word) (PrimitiveKind, bool) {
	switch w {
	case token.I8:
		return I8, true
	case token.I16:
		return I16, true
	case token.I32:
		return I32, true
	case token.I64:
		return I64, true
	case token.U8:
		return U8, true
	case token.U16:
		return U16, true
	case token.U32:
		return U32, true
	case token.U64:
		return U64, true
	case token.F32:
		return F32, true
	case token.F64:
		return F64, true
	case token.C8:
		return C8, true
	}
	return 0, false
}

// PointerSize is the storage size of every pointer.
const PointerSize = 8

type ExpressionKind int

const (
	Call ExpressionKind = iota
	Unary
	Binary
	Constant
	Name
)

// Operator is a unary or binary operator.
type Operator int

const (
	// Unary
	Negate Operator = iota
	LogicalNot
	Deref
	Ref

	// Binary
	Add
	Subtract
	Multiply
	Divide
	Modulo
	LogicalAnd
	LogicalOr
	LogicalEquals
	LogicalNotEquals
	Less
	Greater
	LessEquals
	GreaterEquals
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	Access
)

var operatorNames = [...]string{
	Negate:           "Negate",
	LogicalNot:       "LogicalNot",
	Deref:            "Deref",
	Ref:              "Ref",
	Add:              "Add",
	Subtract:         "Subtract",
	Multiply:         "Multiply",
	Divide:           "Divide",
	Modulo:           "Modulo",
	LogicalAnd:       "LogicalAnd",
	LogicalOr:        "LogicalOr",
	LogicalEquals:    "LogicalEquals",
	LogicalNotEquals: "LogicalNotEquals",
	Less:             "Less",
	Greater:          "Greater",
	LessEquals:       "LessEquals",
	GreaterEquals:    "GreaterEquals",
	BitwiseAnd:       "BitwiseAnd",
	BitwiseOr:        "BitwiseOr",
	BitwiseXor:       "BitwiseXor",
	Access:           "Access",
}

func (o Operator) String() string {
	if int(o) >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Priority is the binding priority of a binary operator; lower binds tighter.
func (o Operator) Priority() int {
	switch o {
	case Access:
		return 1
	case Multiply, Divide, Modulo:
		return 20
	case Add, Subtract:
		return 30
	case Less, Greater, LessEquals, GreaterEquals:
		return 40
	case LogicalEquals, LogicalNotEquals:
		return 45
	case BitwiseAnd:
		return 50
	case BitwiseXor:
		return 51
	case BitwiseOr:
		return 52
	case LogicalAnd:
		return 60
	case LogicalOr:
		return 61
	}
	return UnaryPriority
}

// UnaryPriority binds the operand of a prefix operator: only member access
// binds tighter.
const UnaryPriority = 10
