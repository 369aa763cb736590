package acir

import "acirgen/internal/field"

// RefBuilder is a straightforward in-memory Builder: every call both
// allocates whatever witnesses it needs and appends an Opcode describing
// what happened, in call order. It is not a production gate compiler (gate
// shapes, range-check gadgets, and black-box internals are explicitly a
// non-goal — spec §1); it exists so the lowering pass has something to
// drive end to end and so the property tests in spec §8 have something
// concrete to assert against.
type RefBuilder struct {
	nextVar      Variable
	numWitnesses int
	opcodes      []Opcode
	constants    map[Variable]field.Element
	initialized  map[BlockID]bool
	returns      []Variable
	inputs       []Variable
}

func NewRefBuilder() *RefBuilder {
	return &RefBuilder{
		constants:   make(map[Variable]field.Element),
		initialized: make(map[BlockID]bool),
	}
}

func (b *RefBuilder) AllocateVariable() Variable {
	b.nextVar++
	b.numWitnesses++
	return b.nextVar
}

// AllocateInput is like AllocateVariable but also records the variable as
// one of the program's input witnesses; used by the driver when binding
// function parameters.
func (b *RefBuilder) AllocateInput() Variable {
	v := b.AllocateVariable()
	b.inputs = append(b.inputs, v)
	return v
}

func (b *RefBuilder) AddConstant(c field.Element) Variable {
	v := b.AllocateVariable()
	b.constants[v] = c
	b.opcodes = append(b.opcodes, GateOpcode{Kind: "const", Output: v})
	return v
}

func (b *RefBuilder) gate(kind string, inputs []Variable) Variable {
	out := b.AllocateVariable()
	b.opcodes = append(b.opcodes, GateOpcode{Kind: kind, Inputs: inputs, Output: out})
	return out
}

func (b *RefBuilder) Add(a, c Variable) Variable { return b.gate("add", []Variable{a, c}) }
func (b *RefBuilder) Sub(a, c Variable) Variable { return b.gate("sub", []Variable{a, c}) }
func (b *RefBuilder) Mul(a, c Variable) Variable { return b.gate("mul", []Variable{a, c}) }

func (b *RefBuilder) Div(a, c, predicate Variable) Variable {
	return b.gate("div", []Variable{a, c, predicate})
}

func (b *RefBuilder) Eq(a, c Variable) Variable { return b.gate("eq", []Variable{a, c}) }

func (b *RefBuilder) Lt(a, c, predicate Variable) Variable {
	return b.gate("lt", []Variable{a, c, predicate})
}

func (b *RefBuilder) Xor(a, c Variable, bitWidth int) Variable {
	return b.gate("xor", []Variable{a, c})
}

func (b *RefBuilder) And(a, c Variable, bitWidth int) Variable {
	return b.gate("and", []Variable{a, c})
}

func (b *RefBuilder) Or(a, c Variable, bitWidth int) Variable {
	return b.gate("or", []Variable{a, c})
}

func (b *RefBuilder) Mod(a, c, predicate Variable) Variable {
	return b.gate("mod", []Variable{a, c, predicate})
}

func (b *RefBuilder) Not(a Variable, bitWidth int) Variable { return b.gate("not", []Variable{a}) }

func (b *RefBuilder) Truncate(a Variable, bitSize, maxBitSize int) Variable {
	return b.gate("truncate", []Variable{a})
}

func (b *RefBuilder) RangeCheck(a Variable, bitWidth int) {
	b.opcodes = append(b.opcodes, RangeCheckOpcode{Var: a, BitWidth: bitWidth})
}

func (b *RefBuilder) AssertEq(a, c Variable, msg string) {
	b.opcodes = append(b.opcodes, GateOpcode{Kind: "assert_eq", Inputs: []Variable{a, c}, Message: msg})
}

func (b *RefBuilder) InitMemoryBlock(block BlockID, values []Variable) {
	if b.initialized[block] {
		panic("acir: memory block initialized more than once")
	}
	b.initialized[block] = true
	b.opcodes = append(b.opcodes, MemoryOpcode{Kind: MemInit, Block: block, InitValues: append([]Variable{}, values...)})
}

func (b *RefBuilder) ReadMemory(block BlockID, index Variable) Variable {
	if !b.initialized[block] {
		panic("acir: read from uninitialized memory block")
	}
	out := b.AllocateVariable()
	b.opcodes = append(b.opcodes, MemoryOpcode{Kind: MemRead, Block: block, Index: index, Value: out})
	return out
}

func (b *RefBuilder) WriteMemory(block BlockID, index Variable, value Variable) {
	if !b.initialized[block] {
		panic("acir: write to uninitialized memory block")
	}
	b.opcodes = append(b.opcodes, MemoryOpcode{Kind: MemWrite, Block: block, Index: index, Value: value})
}

func (b *RefBuilder) EmitBlackBox(kind string, inputs []Variable, numOutputs int) []Variable {
	outputs := make([]Variable, numOutputs)
	for i := range outputs {
		outputs[i] = b.AllocateVariable()
	}
	b.opcodes = append(b.opcodes, BlackBoxOpcode{Kind: kind, Inputs: inputs, Outputs: outputs})
	return outputs
}

func (b *RefBuilder) EmitSortNetwork(inputs []Variable) []Variable {
	outputs := make([]Variable, len(inputs))
	for i := range outputs {
		outputs[i] = b.AllocateVariable()
	}
	b.opcodes = append(b.opcodes, SortOpcode{Inputs: inputs, Outputs: outputs})
	return outputs
}

func (b *RefBuilder) EmitUnconstrainedCall(artifact string, inputs []Variable, numOutputs int, predicate Variable) []Variable {
	outputs := make([]Variable, numOutputs)
	for i := range outputs {
		outputs[i] = b.AllocateVariable()
	}
	b.opcodes = append(b.opcodes, UnconstrainedCallOpcode{Artifact: artifact, Inputs: inputs, Outputs: outputs, Predicate: predicate})
	return outputs
}

func (b *RefBuilder) MarkReturnWitness(v Variable) {
	b.returns = append(b.returns, v)
}

func (b *RefBuilder) Finish() *Program {
	return &Program{
		NumWitnesses:    b.numWitnesses,
		InputWitnesses:  append([]Variable{}, b.inputs...),
		Opcodes:         b.opcodes,
		ReturnWitnesses: append([]Variable{}, b.returns...),
		Constants:       b.constants,
	}
}

// CountMulGates returns the number of multiplication gates in a completed
// program's opcode stream — used by the predicate-transparency property
// test (spec §8): when the side-effects predicate is the constant 1
// throughout, no predicate-multiplexing `predicate*x + (1-predicate)*y`
// gates should appear, which is checkable by counting "mul" gates against
// a baseline run.
func CountMulGates(p *Program) int {
	n := 0
	for _, op := range p.Opcodes {
		if g, ok := op.(GateOpcode); ok && g.Kind == "mul" {
			n++
		}
	}
	return n
}
