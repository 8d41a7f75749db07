package ast

import (
	"github.com/pattyshack/gt/parseutil"
)

type Node interface {
	parseutil.Locatable
	Walk(Visitor)
}

type Visitor interface {
	Enter(Node)
	Exit(Node)
}

type Validator interface {
	Validate(*parseutil.Emitter)
}

// A node that evaluates to a single 64-bit value.
type Expression interface {
	Node
	isExpression()
}

type isExpr struct{}

func (isExpr) isExpression() {}

type Statement interface {
	Node
	isStatement()
}

type isStmt struct{}

func (isStmt) isStatement() {}

func walkStatements(statements []Statement, visitor Visitor) {
	for _, statement := range statements {
		if statement != nil {
			statement.Walk(visitor)
		}
	}
}

// Missing expressions are reported by the parent's Validate.
func walkExpression(expr Expression, visitor Visitor) {
	if expr != nil {
		expr.Walk(visitor)
	}
}

func validateExpression(
	emitter *parseutil.Emitter,
	loc parseutil.Location,
	kind string,
	expr Expression,
) {
	if expr == nil {
		emitter.Emit(loc, "missing %s", kind)
	}
}

// The root of a compilation unit.  Statements are executed in order; a
// program that falls off the end exits with status 0.
type Program struct {
	parseutil.StartEndPos

	Statements []Statement
}

var _ Node = &Program{}

func (program *Program) Walk(visitor Visitor) {
	visitor.Enter(program)
	walkStatements(program.Statements, visitor)
	visitor.Exit(program)
}
