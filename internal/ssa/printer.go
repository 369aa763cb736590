package ssa

import (
	"fmt"
	"strings"
)

// Printer renders a Function back to the textual SSA assembly syntax
// internal/ssasyntax parses, so fixtures round-trip and diagnostics can
// quote the instruction that failed.
type Printer struct {
	indent int
	output strings.Builder
}

func NewPrinter() *Printer { return &Printer{} }

func Print(fn *Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(fn *Function) {
	kw := "fn"
	if fn.Runtime == Unconstrained {
		kw = "unconstrained fn"
	}
	params := make([]string, len(fn.Params))
	for i, id := range fn.Params {
		params[i] = fmt.Sprintf("v%d: %s", id, fn.ParamTypes[i].String())
	}
	p.writeLine("%s %s(%s) {", kw, fn.Name, strings.Join(params, ", "))
	p.indent++
	isParam := make(map[ValueID]bool, len(fn.Params))
	for _, id := range fn.Params {
		isParam[id] = true
	}
	for _, v := range fn.DFG.AllValues() {
		if isParam[v.ID] {
			continue
		}
		switch {
		case v.Constant != nil:
			p.writeLine("v%d = const %s %s", v.ID, v.Type.String(), v.Constant.Big)
		case v.Literal != nil:
			elems := make([]string, len(v.Literal))
			for i, e := range v.Literal {
				elems[i] = fmt.Sprintf("v%d", e)
			}
			p.writeLine("v%d = literal %s [%s]", v.ID, v.Type.String(), strings.Join(elems, ", "))
		}
	}
	for _, inst := range fn.Instructions {
		p.printInstruction(fn, inst)
	}
	if fn.Return != nil {
		vals := make([]string, len(fn.Return.Values))
		for i, v := range fn.Return.Values {
			vals[i] = fmt.Sprintf("v%d", v)
		}
		p.writeLine("return %s", strings.Join(vals, ", "))
	}
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printInstruction(fn *Function, inst Instruction) {
	switch i := inst.(type) {
	case *BinaryInstruction:
		p.writeLine("v%d = binary %s v%d, v%d", i.Result, i.Op, i.LHS, i.RHS)
	case *ConstrainInstruction:
		p.writeLine("constrain v%d, v%d, %q", i.LHS, i.RHS, i.Msg)
	case *CastInstruction:
		p.writeLine("v%d = cast v%d as %s", i.Result, i.Value, i.To.String())
	case *NotInstruction:
		p.writeLine("v%d = not v%d", i.Result, i.Value)
	case *TruncateInstruction:
		p.writeLine("v%d = truncate v%d to %d bits (max %d)", i.Result, i.Value, i.BitSize, i.MaxBitSize)
	case *EnableSideEffectsInstruction:
		p.writeLine("enable_side_effects v%d", i.Condition)
	case *ArrayGetInstruction:
		p.writeLine("v%d = array_get v%d, v%d", i.Result, i.Array, i.Index)
	case *ArraySetInstruction:
		p.writeLine("v%d = array_set v%d, v%d, v%d", i.Result, i.Array, i.Index, i.Value)
	case *CallInstruction:
		results := make([]string, len(i.Results))
		for j, r := range i.Results {
			results[j] = fmt.Sprintf("v%d", r)
		}
		args := make([]string, len(i.Args))
		for j, a := range i.Args {
			args[j] = fmt.Sprintf("v%d", a)
		}
		lhs := ""
		if len(results) > 0 {
			lhs = strings.Join(results, ", ") + " = "
		}
		retTypes := make([]string, len(i.ResultTypes))
		for j, t := range i.ResultTypes {
			retTypes[j] = t.String()
		}
		arrow := ""
		if len(retTypes) > 0 {
			arrow = " -> " + strings.Join(retTypes, ", ")
		}
		p.writeLine("%scall %s %s(%s)%s", lhs, callKindString(i.Kind), i.Target, strings.Join(args, ", "), arrow)
	case *AllocateInstruction:
		p.writeLine("v%d = allocate", i.Result)
	case *LoadInstruction:
		p.writeLine("v%d = load v%d", i.Result, i.Address)
	case *StoreInstruction:
		p.writeLine("store v%d, v%d", i.Address, i.Value)
	default:
		p.writeLine("<unknown instruction>")
	}
}

func callKindString(k CallKind) string {
	switch k {
	case CallUnconstrained:
		return "unconstrained"
	case CallIntrinsic:
		return "intrinsic"
	case CallDirect:
		return "direct"
	default:
		return "unconstrained"
	}
}
