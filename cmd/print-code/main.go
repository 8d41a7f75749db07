package main

import (
	"fmt"
	"os"

	"github.com/pattyshack/gt/parseutil"
	"github.com/xyproto/env/v2"
	"golang.org/x/arch/x86/x86asm"

	"github.com/pattyshack/wren/ast"
	"github.com/pattyshack/wren/codegen"
	"github.com/pattyshack/wren/platform"
	"github.com/pattyshack/wren/platform/x64"
)

// Usage: print-code <program.yaml>...
//
// WREN_DEBUG_TRAPS=1 surrounds if blocks with int3 traps.  WREN_TRACE=1 also
// prints the backend's instruction trace.
func main() {
	backend, err := x64.NewBackend(
		platform.Linux,
		x64.Options{
			DebugTraps: env.Bool("WREN_DEBUG_TRAPS"),
		})
	if err != nil {
		fmt.Println("Backend error:", err)
		os.Exit(1)
	}

	for _, fileName := range os.Args[1:] {
		fmt.Println("=====================")
		fmt.Println("File name:", fileName)
		fmt.Println("---------------------")
		file, err := os.Open(fileName)
		if err != nil {
			fmt.Println("Open error:", err)
			continue
		}

		program, err := ast.DecodeProgram(fileName, file)
		file.Close()
		if err != nil {
			fmt.Println("Decode error:", err)
			continue
		}

		fmt.Println(ast.TreeString(program, "  "))

		options := codegen.Options{}
		if env.Bool("WREN_TRACE") {
			fmt.Println("---------------------")
			fmt.Println("Trace:")
			options.Trace = os.Stdout
		}

		emitter := &parseutil.Emitter{}
		artifact := codegen.Compile(program, backend, emitter, options)

		errs := emitter.Errors()
		if len(errs) > 0 {
			fmt.Println("---------------------------")
			fmt.Println("Found", len(errs), "errors:")
			fmt.Println("---------------------------")
			for idx, err := range errs {
				fmt.Printf("error %d: %s\n", idx, err)
			}
			continue
		}

		printArtifact(artifact)
	}
}

func printArtifact(artifact *platform.Artifact) {
	fmt.Println("---------------------")
	fmt.Printf("Code (%d bytes):\n", len(artifact.Code))

	code := artifact.Code
	for pos := 0; pos < len(code); {
		inst, err := x86asm.Decode(code[pos:], 64)
		if err != nil {
			fmt.Printf("  %6x: (bad) %02x\n", pos, code[pos])
			pos++
			continue
		}

		fmt.Printf(
			"  %6x: % -30x %s\n",
			pos,
			code[pos:pos+inst.Len],
			x86asm.IntelSyntax(inst, uint64(pos), nil))
		pos += inst.Len
	}

	fmt.Println("---------------------")
	fmt.Printf("Data (%d bytes): %q\n", len(artifact.Data), artifact.Data)

	if len(artifact.Relocations) > 0 {
		fmt.Println("---------------------")
		fmt.Println("Relocations:")
		for idx, relocation := range artifact.Relocations {
			fmt.Printf("  %d: %s\n", idx, relocation)
		}
	}
}
