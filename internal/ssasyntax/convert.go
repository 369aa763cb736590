package ssasyntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"acirgen/internal/errors"
	"acirgen/internal/ssa"
)

// PositionMap recovers the textual source location of a lowered
// instruction: function name to instruction id to the Position it was
// parsed from. lower.Lower's errors carry a Frame per call-stack entry with
// Function/Instruction but no Position (the pass works over in-memory
// ssa.Program values with no source text); the CLI and LSP bridge use this
// map to fill the Position back in before rendering a diagnostic.
type PositionMap map[string]map[ssa.InstructionID]errors.Position

// Attach fills in the Position of every frame in err that this map has a
// source location for, plus err.Position itself from the innermost frame
// (whatever Position that frame holds afterwards). Frames with no matching entry (constructed ssa.Program fixtures
// with no parsed source) are left untouched.
func (pm PositionMap) Attach(err *errors.CompilerError) {
	for i := range err.Frames {
		f := &err.Frames[i]
		if fn, ok := pm[f.Function]; ok {
			if pos, ok := fn[ssa.InstructionID(f.Instruction)]; ok {
				f.Position = pos
			}
		}
	}
	if len(err.Frames) > 0 {
		err.Position = err.Frames[len(err.Frames)-1].Position
	}
}

// funcScope tracks, while converting one Function, the mapping from the
// textual vN names used in the source to the ValueIDs internal/ssa.Builder
// actually assigns (the two need not agree numerically — the builder owns
// its own counter) and the type each name was declared or inferred with.
type funcScope struct {
	b         *ssa.Builder
	ids       map[string]ssa.ValueID
	types     map[string]ssa.Type
	positions map[ssa.InstructionID]errors.Position
}

func newFuncScope(b *ssa.Builder) *funcScope {
	return &funcScope{
		b:         b,
		ids:       map[string]ssa.ValueID{},
		types:     map[string]ssa.Type{},
		positions: map[ssa.InstructionID]errors.Position{},
	}
}

// recordPosition notes that the next instruction the Builder appends was
// parsed from pos. Call it immediately before any builder call that appends
// an ssa.Instruction (not for Const/Literal, which only create DFG values).
func (s *funcScope) recordPosition(pos lexer.Position) {
	if pos.Line == 0 {
		return
	}
	s.positions[s.b.CurrentInstructionID()] = errors.Position{Line: pos.Line, Column: pos.Column}
}

func (s *funcScope) bind(name string, id ssa.ValueID, t ssa.Type) {
	s.ids[name] = id
	s.types[name] = t
}

func (s *funcScope) resolve(name string) (ssa.ValueID, error) {
	id, ok := s.ids[name]
	if !ok {
		return 0, fmt.Errorf("undefined value %s", name)
	}
	return id, nil
}

func (s *funcScope) resolveAll(names []string) ([]ssa.ValueID, error) {
	out := make([]ssa.ValueID, len(names))
	for i, n := range names {
		id, err := s.resolve(n)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (s *funcScope) typeOf(name string) ssa.Type {
	return s.types[name]
}

// ToProgram converts a parsed textual program into internal/ssa's in-memory
// representation. The first function declared becomes Program.MainID,
// matching spec.md §3's "distinguished entry point" (the textual surface
// has no separate way to name an entry point; the file's order picks it).
func ToProgram(p *Program) (*ssa.Program, PositionMap, error) {
	if len(p.Functions) == 0 {
		return nil, nil, fmt.Errorf("program has no functions")
	}
	prog := &ssa.Program{Functions: map[string]*ssa.Function{}}
	positions := PositionMap{}
	for i, f := range p.Functions {
		fn, fnPositions, err := convertFunction(f)
		if err != nil {
			return nil, nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		prog.Functions[f.Name] = fn
		positions[f.Name] = fnPositions
		if i == 0 {
			prog.MainID = f.Name
		}
	}
	return prog, positions, nil
}

func convertFunction(f *Function) (*ssa.Function, map[ssa.InstructionID]errors.Position, error) {
	runtime := ssa.Constrained
	if f.Unconstrained {
		runtime = ssa.Unconstrained
	}
	b := ssa.NewBuilder(f.Name, runtime)
	scope := newFuncScope(b)

	for _, p := range f.Params {
		t, err := convertType(p.Type)
		if err != nil {
			return nil, nil, err
		}
		id := b.Param(t)
		scope.bind(p.Name, id, t)
	}

	for _, inst := range f.Instructions {
		if err := convertInstruction(scope, inst); err != nil {
			return nil, nil, err
		}
	}

	return b.Build(), scope.positions, nil
}

func convertInstruction(s *funcScope, inst *Instruction) error {
	if inst.Const == nil && inst.Literal == nil {
		s.recordPosition(inst.Pos)
	}
	switch {
	case inst.Const != nil:
		t, err := convertType(inst.Const.Type)
		if err != nil {
			return err
		}
		id := s.b.Constant(t, inst.Const.Literal)
		return bindSingle(s, inst.Results, id, t)

	case inst.Literal != nil:
		t, err := convertType(inst.Literal.Type)
		if err != nil {
			return err
		}
		elems, err := s.resolveAll(inst.Literal.Elements)
		if err != nil {
			return err
		}
		id := s.b.ArrayLiteral(t, elems)
		return bindSingle(s, inst.Results, id, t)

	case inst.Binary != nil:
		return convertBinary(s, inst.Results, inst.Binary)

	case inst.Constrain != nil:
		lhs, err := s.resolve(inst.Constrain.LHS)
		if err != nil {
			return err
		}
		rhs, err := s.resolve(inst.Constrain.RHS)
		if err != nil {
			return err
		}
		s.b.Constrain(lhs, rhs, unquote(inst.Constrain.Msg))
		return nil

	case inst.Cast != nil:
		v, err := s.resolve(inst.Cast.Value)
		if err != nil {
			return err
		}
		to, err := convertType(inst.Cast.To)
		if err != nil {
			return err
		}
		id := s.b.Cast(v, to)
		return bindSingle(s, inst.Results, id, to)

	case inst.Not != nil:
		v, err := s.resolve(inst.Not.Value)
		if err != nil {
			return err
		}
		t := s.typeOf(inst.Not.Value)
		id := s.b.Not(v, t)
		return bindSingle(s, inst.Results, id, t)

	case inst.Truncate != nil:
		v, err := s.resolve(inst.Truncate.Value)
		if err != nil {
			return err
		}
		bitSize, err := strconv.Atoi(inst.Truncate.BitSize)
		if err != nil {
			return err
		}
		maxBitSize, err := strconv.Atoi(inst.Truncate.MaxBitSize)
		if err != nil {
			return err
		}
		srcType := s.typeOf(inst.Truncate.Value)
		resultType := &ssa.NumericType{Kind: kindOf(srcType), BitWidth: bitSize}
		id := s.b.Truncate(v, bitSize, maxBitSize, resultType)
		return bindSingle(s, inst.Results, id, resultType)

	case inst.Enable != nil:
		cond, err := s.resolve(inst.Enable.Condition)
		if err != nil {
			return err
		}
		s.b.EnableSideEffects(cond)
		return nil

	case inst.ArrayGet != nil:
		arr, err := s.resolve(inst.ArrayGet.Array)
		if err != nil {
			return err
		}
		idx, err := s.resolve(inst.ArrayGet.Index)
		if err != nil {
			return err
		}
		elemType := elementTypeOf(s.typeOf(inst.ArrayGet.Array))
		id := s.b.ArrayGet(arr, idx, elemType)
		return bindSingle(s, inst.Results, id, elemType)

	case inst.ArraySet != nil:
		arr, err := s.resolve(inst.ArraySet.Array)
		if err != nil {
			return err
		}
		idx, err := s.resolve(inst.ArraySet.Index)
		if err != nil {
			return err
		}
		val, err := s.resolve(inst.ArraySet.Value)
		if err != nil {
			return err
		}
		arrType := s.typeOf(inst.ArraySet.Array)
		id := s.b.ArraySet(arr, idx, val, arrType)
		return bindSingle(s, inst.Results, id, arrType)

	case inst.Allocate != nil:
		t := ssa.Type(&ssa.ReferenceType{Inner: &ssa.NumericType{Kind: ssa.FieldKind}})
		id := s.b.Allocate(t)
		return bindSingle(s, inst.Results, id, t)

	case inst.Load != nil:
		addr, err := s.resolve(inst.Load.Address)
		if err != nil {
			return err
		}
		var t ssa.Type = &ssa.NumericType{Kind: ssa.FieldKind}
		if rt, ok := s.typeOf(inst.Load.Address).(*ssa.ReferenceType); ok {
			t = rt.Inner
		}
		id := s.b.Load(addr, t)
		return bindSingle(s, inst.Results, id, t)

	case inst.Store != nil:
		addr, err := s.resolve(inst.Store.Address)
		if err != nil {
			return err
		}
		val, err := s.resolve(inst.Store.Value)
		if err != nil {
			return err
		}
		s.b.Store(addr, val)
		return nil

	case inst.Call != nil:
		return convertCall(s, inst.Results, inst.Call)

	case inst.Return != nil:
		vals, err := s.resolveAll(inst.Return.Values)
		if err != nil {
			return err
		}
		s.b.Return(vals...)
		return nil

	default:
		return fmt.Errorf("empty instruction")
	}
}

func bindSingle(s *funcScope, names []string, id ssa.ValueID, t ssa.Type) error {
	if len(names) != 1 {
		return fmt.Errorf("expected exactly one result binding, got %d", len(names))
	}
	s.bind(names[0], id, t)
	return nil
}

var binaryOps = map[string]ssa.BinaryOp{
	"add": ssa.OpAdd, "sub": ssa.OpSub, "mul": ssa.OpMul, "div": ssa.OpDiv,
	"eq": ssa.OpEq, "lt": ssa.OpLt, "xor": ssa.OpXor, "and": ssa.OpAnd,
	"or": ssa.OpOr, "mod": ssa.OpMod,
}

func convertBinary(s *funcScope, results []string, b *BinaryOp) error {
	op, ok := binaryOps[b.Op]
	if !ok {
		return fmt.Errorf("unknown binary op %q", b.Op)
	}
	lhs, err := s.resolve(b.LHS)
	if err != nil {
		return err
	}
	rhs, err := s.resolve(b.RHS)
	if err != nil {
		return err
	}
	resultType := s.typeOf(b.LHS)
	if op == ssa.OpEq || op == ssa.OpLt {
		resultType = &ssa.NumericType{Kind: ssa.UnsignedKind, BitWidth: 1}
	}
	id := s.b.Binary(op, lhs, rhs, resultType)
	return bindSingle(s, results, id, resultType)
}

func convertCall(s *funcScope, results []string, c *CallOp) error {
	var kind ssa.CallKind
	switch c.Kind {
	case "unconstrained":
		kind = ssa.CallUnconstrained
	case "intrinsic":
		kind = ssa.CallIntrinsic
	case "direct":
		kind = ssa.CallDirect
	default:
		return fmt.Errorf("unknown call kind %q", c.Kind)
	}
	args, err := s.resolveAll(c.Args)
	if err != nil {
		return err
	}
	resultTypes := make([]ssa.Type, len(c.Results))
	for i, rt := range c.Results {
		t, err := convertType(rt)
		if err != nil {
			return err
		}
		resultTypes[i] = t
	}
	if len(resultTypes) != len(results) {
		return fmt.Errorf("call %s: %d result bindings but %d declared result types", c.Target, len(results), len(resultTypes))
	}
	ids := s.b.Call(kind, c.Target, args, resultTypes)
	for i, id := range ids {
		s.bind(results[i], id, resultTypes[i])
	}
	return nil
}

func convertType(t *Type) (ssa.Type, error) {
	switch {
	case t.Array != nil:
		elems := make([]ssa.Type, len(t.Array.Elements))
		for i, e := range t.Array.Elements {
			et, err := convertType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		length, err := strconv.Atoi(t.Array.Length)
		if err != nil {
			return nil, err
		}
		return &ssa.ArrayType{ElementTypes: elems, Length: length}, nil
	case t.Slice != nil:
		elems := make([]ssa.Type, len(t.Slice.Elements))
		for i, e := range t.Slice.Elements {
			et, err := convertType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		return &ssa.SliceType{ElementTypes: elems}, nil
	default:
		return parseNumericType(t.Name)
	}
}

func parseNumericType(name string) (*ssa.NumericType, error) {
	if name == "Field" {
		return &ssa.NumericType{Kind: ssa.FieldKind}, nil
	}
	if len(name) < 2 {
		return nil, fmt.Errorf("unrecognized type %q", name)
	}
	kind := ssa.UnsignedKind
	switch name[0] {
	case 'u':
		kind = ssa.UnsignedKind
	case 'i':
		kind = ssa.SignedKind
	default:
		return nil, fmt.Errorf("unrecognized type %q", name)
	}
	width, err := strconv.Atoi(name[1:])
	if err != nil {
		return nil, fmt.Errorf("unrecognized type %q", name)
	}
	return &ssa.NumericType{Kind: kind, BitWidth: width}, nil
}

func elementTypeOf(t ssa.Type) ssa.Type {
	switch v := t.(type) {
	case *ssa.ArrayType:
		if len(v.ElementTypes) > 0 {
			return v.ElementTypes[0]
		}
	case *ssa.SliceType:
		if len(v.ElementTypes) > 0 {
			return v.ElementTypes[0]
		}
	}
	return &ssa.NumericType{Kind: ssa.FieldKind}
}

func kindOf(t ssa.Type) ssa.NumericKind {
	if nt, ok := t.(*ssa.NumericType); ok {
		return nt.Kind
	}
	return ssa.UnsignedKind
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}
