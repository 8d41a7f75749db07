package ast

import (
	"fmt"
	"math"
	"strings"

	"github.com/pattyshack/gt/parseutil"
)

// Integer literal.  The backend only materializes sign-extended imm32 values.
type IntLiteral struct {
	isExpr
	parseutil.StartEndPos

	Value int64
}

var _ Expression = &IntLiteral{}
var _ Validator = &IntLiteral{}

func (lit *IntLiteral) Walk(visitor Visitor) {
	visitor.Enter(lit)
	visitor.Exit(lit)
}

func (lit *IntLiteral) Validate(emitter *parseutil.Emitter) {
	if lit.Value < math.MinInt32 || lit.Value > math.MaxInt32 {
		emitter.Emit(
			lit.Loc(),
			"int literal (%d) does not fit in a sign-extended imm32",
			lit.Value)
	}
}

// Evaluates to the address of a NUL-terminated copy of Value in the data
// segment.
type StringLiteral struct {
	isExpr
	parseutil.StartEndPos

	Value string
}

var _ Expression = &StringLiteral{}
var _ Validator = &StringLiteral{}

func (lit *StringLiteral) Walk(visitor Visitor) {
	visitor.Enter(lit)
	visitor.Exit(lit)
}

func (lit *StringLiteral) Validate(emitter *parseutil.Emitter) {
	if strings.IndexByte(lit.Value, 0) >= 0 {
		emitter.Emit(lit.Loc(), "string literal contains a NUL byte")
	}
}

// Local variable reference.
type Identifier struct {
	isExpr
	parseutil.StartEndPos

	Name string
}

var _ Expression = &Identifier{}
var _ Validator = &Identifier{}

func (ident *Identifier) Walk(visitor Visitor) {
	visitor.Enter(ident)
	visitor.Exit(ident)
}

func (ident *Identifier) Validate(emitter *parseutil.Emitter) {
	if ident.Name == "" {
		emitter.Emit(ident.Loc(), "empty identifier name")
	}
}

// Evaluates to the address of a local variable's stack slot.
type AddressOf struct {
	isExpr
	parseutil.StartEndPos

	Name string
}

var _ Expression = &AddressOf{}
var _ Validator = &AddressOf{}

func (addr *AddressOf) Walk(visitor Visitor) {
	visitor.Enter(addr)
	visitor.Exit(addr)
}

func (addr *AddressOf) Validate(emitter *parseutil.Emitter) {
	if addr.Name == "" {
		emitter.Emit(addr.Loc(), "empty address-of variable name")
	}
}

type UnaryOperator string

const (
	Negate    = UnaryOperator("neg")
	Increment = UnaryOperator("inc")
)

type UnaryExpression struct {
	isExpr
	parseutil.StartEndPos

	Operator UnaryOperator
	Operand  Expression
}

var _ Expression = &UnaryExpression{}
var _ Validator = &UnaryExpression{}

func (unary *UnaryExpression) Walk(visitor Visitor) {
	visitor.Enter(unary)
	walkExpression(unary.Operand, visitor)
	visitor.Exit(unary)
}

func (unary *UnaryExpression) Validate(emitter *parseutil.Emitter) {
	switch unary.Operator {
	case Negate, Increment: // ok
	default:
		emitter.Emit(
			unary.Loc(),
			"unexpected unary operator (%s)",
			unary.Operator)
	}
	validateExpression(emitter, unary.Loc(), "unary operand", unary.Operand)
}

type BinaryOperator string

const (
	Add        = BinaryOperator("+")
	Sub        = BinaryOperator("-")
	Mul        = BinaryOperator("*")
	Div        = BinaryOperator("/")
	Mod        = BinaryOperator("%")
	BitwiseAnd = BinaryOperator("&")
	BitwiseOr  = BinaryOperator("|")
	BitwiseXor = BinaryOperator("^")

	Equal          = BinaryOperator("==")
	NotEqual       = BinaryOperator("!=")
	Less           = BinaryOperator("<")
	LessOrEqual    = BinaryOperator("<=")
	Greater        = BinaryOperator(">")
	GreaterOrEqual = BinaryOperator(">=")
)

func (op BinaryOperator) IsRelational() bool {
	switch op {
	case Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual:
		return true
	}
	return false
}

func (op BinaryOperator) IsArithmetic() bool {
	switch op {
	case Add, Sub, Mul, Div, Mod, BitwiseAnd, BitwiseOr, BitwiseXor:
		return true
	}
	return false
}

// Relational binary expressions evaluate to 1 when the relation holds and 0
// otherwise.
type BinaryExpression struct {
	isExpr
	parseutil.StartEndPos

	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

var _ Expression = &BinaryExpression{}
var _ Validator = &BinaryExpression{}

func (binary *BinaryExpression) Walk(visitor Visitor) {
	visitor.Enter(binary)
	walkExpression(binary.Left, visitor)
	walkExpression(binary.Right, visitor)
	visitor.Exit(binary)
}

func (binary *BinaryExpression) Validate(emitter *parseutil.Emitter) {
	if !binary.Operator.IsRelational() && !binary.Operator.IsArithmetic() {
		emitter.Emit(
			binary.Loc(),
			"unexpected binary operator (%s)",
			binary.Operator)
	}
	validateExpression(emitter, binary.Loc(), "left operand", binary.Left)
	validateExpression(emitter, binary.Loc(), "right operand", binary.Right)
}

// Direct kernel call.  Evaluates to the kernel's return value.
type SysCall struct {
	isExpr
	parseutil.StartEndPos

	Number Expression
	Args   []Expression
}

var _ Expression = &SysCall{}
var _ Validator = &SysCall{}

func (call *SysCall) Walk(visitor Visitor) {
	visitor.Enter(call)
	walkExpression(call.Number, visitor)
	for _, arg := range call.Args {
		walkExpression(arg, visitor)
	}
	visitor.Exit(call)
}

func (call *SysCall) Validate(emitter *parseutil.Emitter) {
	validateExpression(emitter, call.Loc(), "syscall number", call.Number)
	for idx, arg := range call.Args {
		validateExpression(
			emitter,
			call.Loc(),
			fmt.Sprintf("syscall argument %d", idx),
			arg)
	}
}
