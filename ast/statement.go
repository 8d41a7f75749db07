package ast

import (
	"github.com/pattyshack/gt/parseutil"
)

// <Name> = <Value>.  The first assignment to a name declares the local
// variable.
type Assignment struct {
	isStmt
	parseutil.StartEndPos

	Name  string
	Value Expression
}

var _ Statement = &Assignment{}
var _ Validator = &Assignment{}

func (assign *Assignment) Walk(visitor Visitor) {
	visitor.Enter(assign)
	walkExpression(assign.Value, visitor)
	visitor.Exit(assign)
}

func (assign *Assignment) Validate(emitter *parseutil.Emitter) {
	if assign.Name == "" {
		emitter.Emit(assign.Loc(), "empty assignment variable name")
	}
	validateExpression(emitter, assign.Loc(), "assignment value", assign.Value)
}

// Evaluates an expression for its side effects.
type ExpressionStatement struct {
	isStmt
	parseutil.StartEndPos

	Expression Expression
}

var _ Statement = &ExpressionStatement{}
var _ Validator = &ExpressionStatement{}

func (stmt *ExpressionStatement) Walk(visitor Visitor) {
	visitor.Enter(stmt)
	walkExpression(stmt.Expression, visitor)
	visitor.Exit(stmt)
}

func (stmt *ExpressionStatement) Validate(emitter *parseutil.Emitter) {
	validateExpression(emitter, stmt.Loc(), "expression", stmt.Expression)
}

// Terminates the process with the given status.
type Exit struct {
	isStmt
	parseutil.StartEndPos

	Value Expression
}

var _ Statement = &Exit{}
var _ Validator = &Exit{}

func (exit *Exit) Walk(visitor Visitor) {
	visitor.Enter(exit)
	walkExpression(exit.Value, visitor)
	visitor.Exit(exit)
}

func (exit *Exit) Validate(emitter *parseutil.Emitter) {
	validateExpression(emitter, exit.Loc(), "exit status", exit.Value)
}
