package platform

import (
	"fmt"
	"io"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
)

// Generates code which leaves expr's value in dest.  Backend operations that
// consume sub-expressions (e.g., InvokeSysCall) call back into the driver
// through the evaluator.
type Evaluator func(
	ctx *Context,
	dest *architecture.Register,
	expr ast.Expression,
) error

type Options struct {
	// When non-nil, one line is written per emitted instruction.
	Trace io.Writer

	Evaluator Evaluator
}

// The per compilation unit emission state.  A context is not safe for
// concurrent use.
type Context struct {
	Code *architecture.Buffer
	Data *architecture.Buffer

	Relocations *RelocationTable

	evaluate Evaluator
	trace    io.Writer

	hasEmptyString bool
	emptyString    architecture.Offset
}

func NewContext(options Options) *Context {
	return &Context{
		Code:        architecture.NewBuffer("code"),
		Data:        architecture.NewBuffer("data"),
		Relocations: &RelocationTable{},
		evaluate:    options.Evaluator,
		trace:       options.Trace,
	}
}

func (ctx *Context) Evaluate(
	dest *architecture.Register,
	expr ast.Expression,
) error {
	if ctx.evaluate == nil {
		return ErrNoEvaluator
	}
	return ctx.evaluate(ctx, dest, expr)
}

func (ctx *Context) Tracef(format string, args ...interface{}) {
	if ctx.trace == nil {
		return
	}

	// Trace output is best effort.
	_, _ = fmt.Fprintf(ctx.trace, format+"\n", args...)
}

// Appends bytes to the data segment and returns their offset.
func (ctx *Context) AddData(bytes ...byte) architecture.Offset {
	offset := ctx.Data.Position()
	ctx.Data.AppendBytes(bytes...)
	return offset
}

// The offset of the shared empty string sentinel.  The sentinel is allocated
// on first use.
func (ctx *Context) EmptyString() architecture.Offset {
	if !ctx.hasEmptyString {
		ctx.emptyString = ctx.AddData(0)
		ctx.hasEmptyString = true
	}
	return ctx.emptyString
}

func (ctx *Context) Artifact() *Artifact {
	return &Artifact{
		Code:        ctx.Code.Bytes(),
		Data:        ctx.Data.Bytes(),
		Relocations: ctx.Relocations.Entries(),
	}
}
