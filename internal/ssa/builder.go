package ssa

// Builder assembles a Function's entry block one instruction at a time. It
// exists to give tests, the textual SSA surface syntax (internal/ssasyntax),
// and the CLI a convenient way to construct fixtures; it plays the role of
// the "SSA construction" stage this pass otherwise treats as an external,
// already-complete input (spec Non-goals: SSA construction is out of scope
// for the lowering pass itself, but something has to build the fixtures
// that exercise it).
type Builder struct {
	fn           *Function
	valueCounter ValueID
	instCounter  InstructionID
}

func NewBuilder(name string, runtime Runtime) *Builder {
	return &Builder{fn: NewFunction(name, runtime)}
}

func (b *Builder) nextValue() ValueID {
	b.valueCounter++
	return b.valueCounter
}

func (b *Builder) nextInst() InstructionID {
	b.instCounter++
	return b.instCounter
}

// Param declares a new entry-block parameter of type t and returns its id.
func (b *Builder) Param(t Type) ValueID {
	id := b.nextValue()
	b.fn.DFG.Insert(&Value{ID: id, Type: t})
	b.fn.Params = append(b.fn.Params, id)
	b.fn.ParamTypes = append(b.fn.ParamTypes, t)
	return id
}

// Constant creates a fresh numeric constant value of type t.
func (b *Builder) Constant(t Type, literal string) ValueID {
	id := b.nextValue()
	b.fn.DFG.Insert(&Value{ID: id, Type: t, Constant: &ConstantData{Big: literal}})
	return id
}

// ArrayLiteral creates a fresh static array/slice value from its element ids.
func (b *Builder) ArrayLiteral(t Type, elements []ValueID) ValueID {
	id := b.nextValue()
	b.fn.DFG.Insert(&Value{ID: id, Type: t, Literal: elements})
	return id
}

// value registers a fresh result value of type t for an instruction about
// to be appended and returns its id.
func (b *Builder) value(t Type) ValueID {
	id := b.nextValue()
	b.fn.DFG.Insert(&Value{ID: id, Type: t})
	return id
}

func (b *Builder) append(i Instruction) { b.fn.Instructions = append(b.fn.Instructions, i) }

func (b *Builder) Binary(op BinaryOp, lhs, rhs ValueID, resultType Type) ValueID {
	result := b.value(resultType)
	b.append(&BinaryInstruction{ID: b.nextInst(), Result: result, Op: op, LHS: lhs, RHS: rhs})
	return result
}

func (b *Builder) Constrain(lhs, rhs ValueID, msg string) {
	b.append(&ConstrainInstruction{ID: b.nextInst(), LHS: lhs, RHS: rhs, Msg: msg})
}

func (b *Builder) Cast(v ValueID, to Type) ValueID {
	result := b.value(to)
	b.append(&CastInstruction{ID: b.nextInst(), Result: result, Value: v, To: to})
	return result
}

func (b *Builder) Not(v ValueID, t Type) ValueID {
	result := b.value(t)
	b.append(&NotInstruction{ID: b.nextInst(), Result: result, Value: v})
	return result
}

func (b *Builder) Truncate(v ValueID, bitSize, maxBitSize int, t Type) ValueID {
	result := b.value(t)
	b.append(&TruncateInstruction{ID: b.nextInst(), Result: result, Value: v, BitSize: bitSize, MaxBitSize: maxBitSize})
	return result
}

func (b *Builder) EnableSideEffects(cond ValueID) {
	b.append(&EnableSideEffectsInstruction{ID: b.nextInst(), Condition: cond})
}

func (b *Builder) ArrayGet(array, index ValueID, elemType Type) ValueID {
	result := b.value(elemType)
	b.append(&ArrayGetInstruction{ID: b.nextInst(), Result: result, Array: array, Index: index})
	return result
}

func (b *Builder) ArraySet(array, index, value ValueID, arrayType Type) ValueID {
	result := b.value(arrayType)
	b.append(&ArraySetInstruction{ID: b.nextInst(), Result: result, Array: array, Index: index, Value: value})
	return result
}

// Allocate, Load, and Store build fixtures that exercise the lowering
// pass's ReferenceEncountered error path (spec dispatch table: these
// instructions should never survive to this pass on well-formed input).
func (b *Builder) Allocate(t Type) ValueID {
	result := b.value(t)
	b.append(&AllocateInstruction{ID: b.nextInst(), Result: result})
	return result
}

func (b *Builder) Load(address ValueID, t Type) ValueID {
	result := b.value(t)
	b.append(&LoadInstruction{ID: b.nextInst(), Result: result, Address: address})
	return result
}

func (b *Builder) Store(address, value ValueID) {
	b.append(&StoreInstruction{ID: b.nextInst(), Address: address, Value: value})
}

func (b *Builder) Call(kind CallKind, target string, args []ValueID, resultTypes []Type) []ValueID {
	results := make([]ValueID, len(resultTypes))
	for i, t := range resultTypes {
		results[i] = b.value(t)
	}
	b.append(&CallInstruction{ID: b.nextInst(), Results: results, Kind: kind, Target: target, Args: args, ResultTypes: resultTypes})
	return results
}

func (b *Builder) MarkLastUse(v ValueID, inst InstructionID) { b.fn.LastUse[v] = inst }

func (b *Builder) Return(values ...ValueID) {
	b.fn.Return = &ReturnTerminator{ID: b.nextInst(), Values: values}
}

// CurrentInstructionID returns the id the next appended instruction will
// receive, useful for callers building a LastUse map against instructions
// they are about to emit.
func (b *Builder) CurrentInstructionID() InstructionID { return b.instCounter + 1 }

func (b *Builder) Build() *Function { return b.fn }
