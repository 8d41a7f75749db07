package analyzer

import (
	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
)

// Allocates one frame slot per assigned local variable, in first assignment
// order.
type LocalsCollector struct {
	frame *architecture.StackFrame
}

func NewLocalsCollector() *LocalsCollector {
	return &LocalsCollector{
		frame: architecture.NewStackFrame(),
	}
}

func (collector *LocalsCollector) Frame() *architecture.StackFrame {
	return collector.frame
}

func (collector *LocalsCollector) Process(program *ast.Program) {
	program.Walk(collector)
}

func (collector *LocalsCollector) Enter(node ast.Node) {
	assign, ok := node.(*ast.Assignment)
	if !ok {
		return
	}

	collector.frame.Allocate(assign.Name)
}

func (collector *LocalsCollector) Exit(node ast.Node) {
}
