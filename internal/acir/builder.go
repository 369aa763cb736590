package acir

import "acirgen/internal/field"

// Builder is the constraint-builder collaborator described in spec §6: the
// low-level ACIR emitter that owns witness indices, gate emission, range
// checks, black-box gadgets, and memory opcodes. The lowering pass never
// inspects gate shapes; it only composes these calls, in SSA order, and
// the resulting interleaving is exactly what Finish must preserve.
type Builder interface {
	AllocateVariable() Variable
	// AllocateInput is like AllocateVariable but also records the witness
	// as one of the program's input witnesses.
	AllocateInput() Variable
	AddConstant(c field.Element) Variable

	Add(a, b Variable) Variable
	Sub(a, b Variable) Variable
	Mul(a, b Variable) Variable
	// Div, Lt, and Mod receive the active predicate so that a division by
	// zero, or an out-of-range comparison, under a false predicate does not
	// poison the rest of the circuit.
	Div(a, b, predicate Variable) Variable
	Eq(a, b Variable) Variable
	Lt(a, b, predicate Variable) Variable
	Xor(a, b Variable, bitWidth int) Variable
	And(a, b Variable, bitWidth int) Variable
	Or(a, b Variable, bitWidth int) Variable
	Mod(a, b, predicate Variable) Variable
	Not(a Variable, bitWidth int) Variable
	Truncate(a Variable, bitSize, maxBitSize int) Variable
	RangeCheck(a Variable, bitWidth int)

	AssertEq(a, b Variable, msg string)

	InitMemoryBlock(block BlockID, values []Variable)
	ReadMemory(block BlockID, index Variable) Variable
	WriteMemory(block BlockID, index Variable, value Variable)

	EmitBlackBox(kind string, inputs []Variable, numOutputs int) []Variable
	EmitSortNetwork(inputs []Variable) []Variable
	EmitUnconstrainedCall(artifact string, inputs []Variable, numOutputs int, predicate Variable) []Variable

	MarkReturnWitness(v Variable)

	Finish() *Program
}
