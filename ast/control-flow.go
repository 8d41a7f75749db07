package ast

import (
	"github.com/pattyshack/gt/parseutil"
)

func validateCondition(
	emitter *parseutil.Emitter,
	kind string,
	condition *BinaryExpression,
) {
	if condition == nil {
		emitter.Emit(parseutil.Location{}, "%s statement has no condition", kind)
		return
	}

	if !condition.Operator.IsRelational() {
		emitter.Emit(
			condition.Loc(),
			"%s condition must be a relational expression, found (%s)",
			kind,
			condition.Operator)
	}
}

// if (<Condition>) { <Then> } else { <Else> }
//
// Else may be empty.
type If struct {
	isStmt
	parseutil.StartEndPos

	Condition *BinaryExpression
	Then      []Statement
	Else      []Statement
}

var _ Statement = &If{}
var _ Validator = &If{}

func (stmt *If) Walk(visitor Visitor) {
	visitor.Enter(stmt)
	if stmt.Condition != nil {
		stmt.Condition.Walk(visitor)
	}
	walkStatements(stmt.Then, visitor)
	walkStatements(stmt.Else, visitor)
	visitor.Exit(stmt)
}

func (stmt *If) Validate(emitter *parseutil.Emitter) {
	validateCondition(emitter, "if", stmt.Condition)
}

// while (<Condition>) { <Body> }
type While struct {
	isStmt
	parseutil.StartEndPos

	Condition *BinaryExpression
	Body      []Statement
}

var _ Statement = &While{}
var _ Validator = &While{}

func (stmt *While) Walk(visitor Visitor) {
	visitor.Enter(stmt)
	if stmt.Condition != nil {
		stmt.Condition.Walk(visitor)
	}
	walkStatements(stmt.Body, visitor)
	visitor.Exit(stmt)
}

func (stmt *While) Validate(emitter *parseutil.Emitter) {
	validateCondition(emitter, "while", stmt.Condition)
}

// do { <Body> } while (<Condition>)
type DoWhile struct {
	isStmt
	parseutil.StartEndPos

	Body      []Statement
	Condition *BinaryExpression
}

var _ Statement = &DoWhile{}
var _ Validator = &DoWhile{}

func (stmt *DoWhile) Walk(visitor Visitor) {
	visitor.Enter(stmt)
	walkStatements(stmt.Body, visitor)
	if stmt.Condition != nil {
		stmt.Condition.Walk(visitor)
	}
	visitor.Exit(stmt)
}

func (stmt *DoWhile) Validate(emitter *parseutil.Emitter) {
	validateCondition(emitter, "do-while", stmt.Condition)
}
