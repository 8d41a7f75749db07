package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/wren/ast"
)

type astSyntaxValidator struct {
	*parseutil.Emitter
}

func ValidateAstSyntax(emitter *parseutil.Emitter) Pass[*ast.Program] {
	return &astSyntaxValidator{
		Emitter: emitter,
	}
}

func (validator *astSyntaxValidator) Process(program *ast.Program) {
	program.Walk(validator)
}

func (validator *astSyntaxValidator) Enter(node ast.Node) {
	validatable, ok := node.(ast.Validator)
	if ok {
		validatable.Validate(validator.Emitter)
	}
}

func (validator *astSyntaxValidator) Exit(node ast.Node) {
}
