package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/wren/ast"
)

type localsReferenceChecker struct {
	*parseutil.Emitter
	collector *LocalsCollector
}

// Reports references to variables that are never assigned.  Must run after
// the collector.
func CheckLocalReferences(
	emitter *parseutil.Emitter,
	collector *LocalsCollector,
) Pass[*ast.Program] {
	return &localsReferenceChecker{
		Emitter:   emitter,
		collector: collector,
	}
}

func (checker *localsReferenceChecker) Process(program *ast.Program) {
	program.Walk(checker)
}

func (checker *localsReferenceChecker) check(loc parseutil.Location, name string) {
	_, ok := checker.collector.Frame().Offset(name)
	if !ok {
		checker.Emit(loc, "undefined variable (%s)", name)
	}
}

func (checker *localsReferenceChecker) Enter(n ast.Node) {
	switch node := n.(type) {
	case *ast.Identifier:
		checker.check(node.Loc(), node.Name)
	case *ast.AddressOf:
		checker.check(node.Loc(), node.Name)
	}
}

func (checker *localsReferenceChecker) Exit(node ast.Node) {
}
