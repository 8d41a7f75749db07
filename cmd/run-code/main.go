//go:build unix

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pattyshack/gt/parseutil"
	"github.com/xyproto/env/v2"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
	"github.com/pattyshack/wren/codegen"
	"github.com/pattyshack/wren/emulator"
	"github.com/pattyshack/wren/platform"
	"github.com/pattyshack/wren/platform/x64"
)

// Usage: run-code <program.yaml>
//
// Compiles the program and runs it under the emulator, forwarding writes on
// stdout / stderr to the host.  The process exits with the program's exit
// status.
//
// Environment:
//
//	WREN_DEBUG_TRAPS  surround if blocks with int3 traps
//	WREN_TRACE        print the instruction trace to stderr
//	WREN_CODE_BASE    code segment load address (default 0x400000)
//	WREN_DATA_BASE    data segment load address (default 0x600000)
//	WREN_MAX_STEPS    instruction budget (default 1000000)
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: run-code <program.yaml>")
		os.Exit(2)
	}

	status, err := run(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(status)
}

func address(name string, defaultValue architecture.Address) (
	architecture.Address,
	error,
) {
	value := env.Str(name)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (%s): %w", name, value, err)
	}
	return architecture.Address(parsed), nil
}

func run(fileName string) (int, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	program, err := ast.DecodeProgram(fileName, file)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fileName, err)
	}

	backend, err := x64.NewBackend(
		platform.Linux,
		x64.Options{
			DebugTraps: env.Bool("WREN_DEBUG_TRAPS"),
		})
	if err != nil {
		return 0, err
	}

	options := codegen.Options{}
	if env.Bool("WREN_TRACE") {
		options.Trace = os.Stderr
	}

	emitter := &parseutil.Emitter{}
	artifact := codegen.Compile(program, backend, emitter, options)
	if emitter.HasErrors() {
		for _, err := range emitter.Errors() {
			fmt.Fprintf(os.Stderr, "%s: %s\n", fileName, err)
		}
		return 0, fmt.Errorf("%s: compilation failed", fileName)
	}

	codeBase, err := address("WREN_CODE_BASE", emulator.DefaultCodeBase)
	if err != nil {
		return 0, err
	}

	dataBase, err := address("WREN_DATA_BASE", emulator.DefaultDataBase)
	if err != nil {
		return 0, err
	}

	result, err := emulator.Run(
		artifact,
		emulator.Config{
			CodeBase: codeBase,
			DataBase: dataBase,
			MaxSteps: env.Int("WREN_MAX_STEPS", emulator.DefaultMaxSteps),
			SysCalls: emulator.HostHandler{},
		})
	if err != nil {
		return 0, err
	}

	if !result.Exited {
		return 0, fmt.Errorf("%s: program did not exit", fileName)
	}

	return result.ExitStatus, nil
}
