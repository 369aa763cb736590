package ssa

import "sort"

// ValueID identifies an SSA value. IDs are unique within a Program.
type ValueID int

// InstructionID identifies an instruction within a function, used for
// call-stack attribution on errors and for the last-use liveness map.
type InstructionID int

// Runtime selects which backend a function's body is lowered through.
type Runtime int

const (
	Constrained Runtime = iota
	Unconstrained
)

// Value is a single SSA value: an id, a type, and (optionally) the extra
// data needed to resolve it without re-walking instructions — a numeric
// constant, an array/slice literal's element list, or a copy-propagation
// target. At most one of Constant/Literal is set; ResolvesTo is ValueID(0)
// (itself is never a valid id) when the value is not a copy of another.
type Value struct {
	ID         ValueID
	Type       Type
	Constant   *ConstantData
	Literal    []ValueID // array/slice literal elements, outermost-first
	ResolvesTo ValueID
}

// ConstantData is the extracted value of a numeric constant.
type ConstantData struct {
	// Big is the constant's value as a decimal/hex string, kept untyped
	// here; callers convert through internal/field when lowering.
	Big string
}

// DataFlowGraph owns every Value in a function and provides the accessors
// the lowering pass needs: type lookup, constant/literal extraction, and
// copy-propagation resolution.
type DataFlowGraph struct {
	values map[ValueID]*Value
}

func NewDataFlowGraph() *DataFlowGraph {
	return &DataFlowGraph{values: make(map[ValueID]*Value)}
}

func (g *DataFlowGraph) Insert(v *Value) { g.values[v.ID] = v }

func (g *DataFlowGraph) Value(id ValueID) *Value { return g.values[id] }

// AllValues returns every Value the graph owns, ordered by ascending
// ValueID. Used by internal/ssa's Printer to dump constant/literal values
// that aren't themselves instructions.
func (g *DataFlowGraph) AllValues() []*Value {
	out := make([]*Value, 0, len(g.values))
	for _, v := range g.values {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *DataFlowGraph) TypeOf(id ValueID) Type {
	v := g.values[g.ResolveID(id)]
	if v == nil {
		return nil
	}
	return v.Type
}

// ResolveID follows copy-propagation links to the underlying defining value.
func (g *DataFlowGraph) ResolveID(id ValueID) ValueID {
	seen := map[ValueID]bool{}
	for {
		v, ok := g.values[id]
		if !ok || v.ResolvesTo == 0 || v.ResolvesTo == id {
			return id
		}
		if seen[id] {
			return id // defensive: never trust a cyclic copy chain
		}
		seen[id] = true
		id = v.ResolvesTo
	}
}

// NumericConstant extracts a numeric constant's literal text, following
// copy propagation first.
func (g *DataFlowGraph) NumericConstant(id ValueID) (*ConstantData, bool) {
	v := g.values[g.ResolveID(id)]
	if v == nil || v.Constant == nil {
		return nil, false
	}
	return v.Constant, true
}

// ArrayLiteral extracts an array/slice literal's element ids, following
// copy propagation first.
func (g *DataFlowGraph) ArrayLiteral(id ValueID) ([]ValueID, bool) {
	v := g.values[g.ResolveID(id)]
	if v == nil || v.Literal == nil {
		return nil, false
	}
	return v.Literal, true
}

// Function is a single function's entry block: parameters, a linear
// instruction stream, and a terminating Return. There is no control flow
// within the block — branching, loops, and phi nodes are resolved by
// earlier passes before this representation is produced.
type Function struct {
	Name         string
	Runtime      Runtime
	Params       []ValueID
	ParamTypes   []Type
	Instructions []Instruction
	Return       *ReturnTerminator
	DFG          *DataFlowGraph
	// LastUse maps an array/slice-typed value id to the instruction id of
	// its final use, a liveness hint letting ArraySet mutate its source
	// block in place instead of copying.
	LastUse map[ValueID]InstructionID
}

func NewFunction(name string, runtime Runtime) *Function {
	return &Function{
		Name:    name,
		Runtime: runtime,
		DFG:     NewDataFlowGraph(),
		LastUse: make(map[ValueID]InstructionID),
	}
}

// Program is the whole SSA input: a named set of functions and the id of
// the distinguished entry point the lowering pass drives from.
type Program struct {
	MainID    string
	Functions map[string]*Function
}

func NewProgram(mainID string) *Program {
	return &Program{MainID: mainID, Functions: make(map[string]*Function)}
}

func (p *Program) Main() *Function { return p.Functions[p.MainID] }
