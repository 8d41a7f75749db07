package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
)

// Validates the program and lays out its local variables.  The returned
// frame is only meaningful when the emitter has no errors.
func Analyze(
	program *ast.Program,
	emitter *parseutil.Emitter,
) *architecture.StackFrame {
	// Parallel passes within a group must not share an emitter.
	syntaxEmitter := &parseutil.Emitter{}
	collector := NewLocalsCollector()

	passes := [][]Pass[*ast.Program]{
		{ValidateAstSyntax(syntaxEmitter), collector},
		{CheckLocalReferences(emitter, collector)},
	}

	Process(
		program,
		passes,
		func() bool {
			if syntaxEmitter.HasErrors() {
				emitter.EmitErrors(syntaxEmitter.Errors()...)
				return true
			}
			return false
		})

	return collector.Frame()
}
