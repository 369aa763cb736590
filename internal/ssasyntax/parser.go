package ssasyntax

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"acirgen/internal/ssa"
)

var parser = participle.MustBuild[Program](
	participle.Lexer(SSALexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
	participle.Unquote("String"),
)

// ParseString parses the textual SSA surface syntax into internal/ssa's
// in-memory representation, plus a PositionMap for translating lowering
// errors back into source locations. filename is used only for
// diagnostics.
func ParseString(filename, source string) (*ssa.Program, PositionMap, error) {
	ast, err := parser.ParseString(filename, source)
	if err != nil {
		reportParseError(source, err)
		return nil, nil, err
	}
	prog, positions, err := ToProgram(ast)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	return prog, positions, nil
}

// ParseFile reads path and parses it as textual SSA.
func ParseFile(path string) (*ssa.Program, PositionMap, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}

// reportParseError prints a Rust-style caret diagnostic for a syntax error,
// mirroring the teacher grammar package's reportParseError.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
