// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"acirgen/internal/acir"
	acirerrors "acirgen/internal/errors"
	"acirgen/internal/lower"
	"acirgen/internal/ssa"
	"acirgen/internal/ssasyntax"
	"acirgen/internal/ucode"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: acirgen <lower|print> <file.ssa>")
		os.Exit(1)
	}

	cmd, path := os.Args[1], os.Args[2]

	switch cmd {
	case "lower":
		runLower(path)
	case "print":
		runPrint(path)
	default:
		color.Red("unknown subcommand %q", cmd)
		os.Exit(1)
	}
}

func runPrint(path string) {
	prog, _, err := ssasyntax.ParseFile(path)
	if err != nil {
		os.Exit(1)
	}
	fn := prog.Main()
	fmt.Print(ssa.Print(fn))
	color.Green("parsed %s", path)
}

func runLower(path string) {
	source, readErr := os.ReadFile(path)
	if readErr != nil {
		color.Red("failed to read file: %s", readErr)
		os.Exit(1)
	}

	prog, positions, err := ssasyntax.ParseFile(path)
	if err != nil {
		os.Exit(1)
	}

	builder := acir.NewRefBuilder()
	catalog := ucode.MapCatalog{}
	out, lowerErr := lower.Lower(prog, catalog, builder, lower.DuplicationAllowed)
	if lowerErr != nil {
		reportLoweringError(path, string(source), positions, lowerErr)
		os.Exit(1)
	}

	fmt.Print(acir.Print(out))
	color.Green("lowered %s", path)
}

// reportLoweringError attaches source positions recovered during parsing to
// err's call stack and renders it the same way a syntax error would be.
func reportLoweringError(path, source string, positions ssasyntax.PositionMap, err error) {
	builder, ok := err.(*acirerrors.LoweringErrorBuilder)
	if !ok {
		color.Red("lowering failed: %s", err)
		return
	}
	compilerErr := builder.Build()
	positions.Attach(&compilerErr)
	reporter := acirerrors.NewErrorReporter(path, source)
	fmt.Print(reporter.FormatError(compilerErr))
}
