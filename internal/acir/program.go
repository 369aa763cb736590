package acir

import "acirgen/internal/field"

// Opcode is one entry of the append-only output stream: either a gate
// emitted by the constraint builder or a memory-block opcode. Constraint
// emission and memory-opcode emission interleave in this single ordered
// list, and that interleaving must match SSA order exactly (spec §5) —
// downstream solvers may rely on it for witness derivation.
type Opcode interface {
	isOpcode()
}

// GateOpcode is an opaque arithmetic gate the reference builder logs for
// introspection (mul-gate counting for the predicate-transparency property,
// human-readable dumps); the pass itself never inspects gate shapes, it
// only knows it called Add/Sub/Mul/etc.
type GateOpcode struct {
	Kind    string
	Inputs  []Variable
	Output  Variable
	Message string // non-empty for AssertEq-derived gates
}

func (GateOpcode) isOpcode() {}

// RangeCheckOpcode records a range-check gadget invocation.
type RangeCheckOpcode struct {
	Var      Variable
	BitWidth int
}

func (RangeCheckOpcode) isOpcode() {}

// MemoryOpcode is one of the three memory-block operations.
type MemoryOpcodeKind int

const (
	MemInit MemoryOpcodeKind = iota
	MemRead
	MemWrite
)

type MemoryOpcode struct {
	Kind  MemoryOpcodeKind
	Block BlockID
	Index Variable // meaningless for MemInit
	Value Variable // result var for MemRead, written var for MemWrite; init values live in InitValues
	InitValues []Variable
}

func (MemoryOpcode) isOpcode() {}

// BlackBoxOpcode records a black-box gadget (hash, EC op, ...) invocation.
type BlackBoxOpcode struct {
	Kind    string
	Inputs  []Variable
	Outputs []Variable
}

func (BlackBoxOpcode) isOpcode() {}

// SortOpcode records a sorting-network gadget invocation.
type SortOpcode struct {
	Inputs  []Variable
	Outputs []Variable
}

func (SortOpcode) isOpcode() {}

// UnconstrainedCallOpcode records an invocation of the unconstrained
// bytecode VM, gated by the predicate active at the call site.
type UnconstrainedCallOpcode struct {
	Artifact  string
	Inputs    []Variable
	Outputs   []Variable
	Predicate Variable
}

func (UnconstrainedCallOpcode) isOpcode() {}

// Program is the completed ACIR program: the witness-index range allocated
// for inputs, the append-only ordered opcode stream, and the list of
// witnesses marked as return values.
type Program struct {
	NumWitnesses    int
	InputWitnesses  []Variable
	Opcodes         []Opcode
	ReturnWitnesses []Variable
	Constants       map[Variable]field.Element
}
