package acir

import (
	"fmt"
	"strings"
)

// Print renders a completed Program as a flat, human-readable opcode dump:
// witness ranges, then the append-only opcode stream in emission order,
// then the return witnesses. Used by cmd/acirgen's "lower" subcommand and
// by golden-file tests that assert on lowering output without comparing Go
// struct values directly.
func Print(p *Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "witnesses: %d\n", p.NumWitnesses)
	fmt.Fprintf(&b, "inputs: %s\n", varList(p.InputWitnesses))
	for _, op := range p.Opcodes {
		b.WriteString(printOpcode(op))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "return: %s\n", varList(p.ReturnWitnesses))
	return b.String()
}

func printOpcode(op Opcode) string {
	switch o := op.(type) {
	case GateOpcode:
		if o.Message != "" {
			return fmt.Sprintf("%s %s -> v%d  # %s", o.Kind, varList(o.Inputs), o.Output, o.Message)
		}
		return fmt.Sprintf("%s %s -> v%d", o.Kind, varList(o.Inputs), o.Output)
	case RangeCheckOpcode:
		return fmt.Sprintf("range_check v%d < 2^%d", o.Var, o.BitWidth)
	case MemoryOpcode:
		switch o.Kind {
		case MemInit:
			return fmt.Sprintf("mem[%d] = init %s", o.Block, varList(o.InitValues))
		case MemRead:
			return fmt.Sprintf("v%d = mem[%d][v%d]", o.Value, o.Block, o.Index)
		case MemWrite:
			return fmt.Sprintf("mem[%d][v%d] = v%d", o.Block, o.Index, o.Value)
		default:
			return "<unknown memory opcode>"
		}
	case BlackBoxOpcode:
		return fmt.Sprintf("black_box %s %s -> %s", o.Kind, varList(o.Inputs), varList(o.Outputs))
	case SortOpcode:
		return fmt.Sprintf("sort %s -> %s", varList(o.Inputs), varList(o.Outputs))
	case UnconstrainedCallOpcode:
		return fmt.Sprintf("unconstrained_call %q %s -> %s [predicate v%d]", o.Artifact, varList(o.Inputs), varList(o.Outputs), o.Predicate)
	default:
		return "<unknown opcode>"
	}
}

func varList(vs []Variable) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("v%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
