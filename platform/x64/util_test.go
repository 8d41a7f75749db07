package x64

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
	"github.com/pattyshack/wren/emulator"
	"github.com/pattyshack/wren/platform"
)

func newTestBackend(t *testing.T, options Options) Backend {
	backend, err := NewBackend(platform.Linux, options)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return backend.(Backend)
}

// Only int literals are evaluated.
func evaluateIntLiteral(
	ctx *platform.Context,
	dest *architecture.Register,
	expr ast.Expression,
) error {
	lit, ok := expr.(*ast.IntLiteral)
	if !ok {
		return fmt.Errorf("unexpected expression: %T", expr)
	}

	Backend{}.MovImmediate(ctx, dest, int32(lit.Value))
	return nil
}

func newTestContext() (*platform.Context, *bytes.Buffer) {
	trace := &bytes.Buffer{}
	ctx := platform.NewContext(platform.Options{
		Trace:     trace,
		Evaluator: evaluateIntLiteral,
	})
	return ctx, trace
}

func traceLines(trace *bytes.Buffer) []string {
	content := strings.TrimSpace(trace.String())
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func run(t *testing.T, ctx *platform.Context) (*emulator.Machine, *emulator.Result) {
	machine, err := emulator.New(ctx.Artifact(), emulator.Config{MaxSteps: 10000})
	if err != nil {
		t.Fatalf("cannot load artifact: %s", err)
	}

	result, err := machine.Run()
	if err != nil {
		t.Fatalf("unexpected execution error: %s", err)
	}

	if !result.Exited {
		t.Fatalf("program did not exit")
	}

	return machine, result
}

func expectBytes(t *testing.T, name string, actual []byte, expected []byte) {
	if !bytes.Equal(actual, expected) {
		t.Errorf("%s: expected % x, found % x", name, expected, actual)
	}
}
