// Package lower is the lowering pass itself: the Lowering Driver, Value
// Model, Array Subsystem, Predicate & Arithmetic, and Intrinsics/VM Bridge
// components described in spec.md §4, composed against the internal/acir
// Builder and internal/ucode Catalog collaborators.
package lower

import (
	"acirgen/internal/acir"
	"acirgen/internal/errors"
	"acirgen/internal/field"
	"acirgen/internal/ssa"
	"acirgen/internal/ucode"
)

// ReturnMode selects the §4.1 "distinctness pass" behavior.
type ReturnMode int

const (
	DuplicationAllowed ReturnMode = iota
	Distinct
)

// sliceSize is one entry of the slice-size tracking map (spec §4.3): a
// slice's logical length, plus an optional back-reference to a nested
// slice's own value id (never a pointer graph — design note §9).
type sliceSize struct {
	Len           int
	NestedValueID ssa.ValueID
	hasNested     bool
}

// elementSizesEntry caches a built element-type-sizes table (spec §4.3):
// the block it lives in and how many entries (logical elements + 1) it has.
type elementSizesEntry struct {
	Block BlockKey
	Len   int
}

// BlockKey is this package's alias for acir.BlockID. The two disjoint
// namespaces (user blocks, internal element-size blocks) share one counter
// and are kept apart by living in separate maps, userBlocks and
// internalBlocks (spec §3 "Block identifiers").
type BlockKey = acir.BlockID

// Context is the single owned mutable state object the pass threads
// through every lowering call (design note §9 "pervasive driver state").
// Nothing here is global; a fresh Context is created per Lower call.
type Context struct {
	prog    *ssa.Program
	fn      *ssa.Function
	builder acir.Builder
	catalog ucode.Catalog
	distinct ReturnMode

	cache map[ssa.ValueID]acir.Value

	userBlocks     map[ssa.ValueID]BlockKey
	internalBlocks map[ssa.ValueID]elementSizesEntry
	initialized    map[BlockKey]bool
	blockCounter   BlockKey

	sliceSizes map[ssa.ValueID]sliceSize

	predicate       acir.Variable
	predicateIsOne  bool

	callStack []errors.Frame

	linkedArtifacts map[string]*ucode.Linked
}

func newContext(prog *ssa.Program, fn *ssa.Function, builder acir.Builder, catalog ucode.Catalog, distinct ReturnMode) *Context {
	return &Context{
		prog:            prog,
		fn:              fn,
		builder:         builder,
		catalog:         catalog,
		distinct:        distinct,
		cache:           make(map[ssa.ValueID]acir.Value),
		userBlocks:      make(map[ssa.ValueID]BlockKey),
		internalBlocks:  make(map[ssa.ValueID]elementSizesEntry),
		initialized:     make(map[BlockKey]bool),
		sliceSizes:      make(map[ssa.ValueID]sliceSize),
		predicateIsOne:  true,
		linkedArtifacts: make(map[string]*ucode.Linked),
	}
}

// Lower drives the entire pass: binds parameters, dispatches every
// instruction of the entry block in order, applies the distinctness pass to
// the terminator's return values, and finishes the builder.
func Lower(prog *ssa.Program, catalog ucode.Catalog, builder acir.Builder, distinct ReturnMode) (*acir.Program, error) {
	fn := prog.Main()
	if fn == nil {
		return nil, internalErr(errors.UnknownInstruction("<missing main function>"), nil)
	}

	ctx := newContext(prog, fn, builder, catalog, distinct)

	if fn.Runtime == ssa.Unconstrained {
		outputs, err := ctx.lowerUnconstrainedMain()
		if err != nil {
			return nil, err
		}
		ctx.markReturns(outputs)
		return builder.Finish(), nil
	}

	if err := ctx.bindParams(); err != nil {
		return nil, err
	}

	for _, inst := range fn.Instructions {
		if err := ctx.lowerInstruction(inst); err != nil {
			return nil, err
		}
	}

	if fn.Return == nil {
		return nil, internalErr(errors.UnknownInstruction("<missing return terminator>"), ctx.callStack)
	}

	returns := make([]acir.Value, 0, len(fn.Return.Values))
	for _, id := range fn.Return.Values {
		v, err := ctx.valueFor(id)
		if err != nil {
			return nil, err
		}
		returns = append(returns, v)
	}

	if err := ctx.markReturns(returns); err != nil {
		return nil, err
	}

	return builder.Finish(), nil
}

// bindParams materializes every entry-block parameter as a fresh ACIR
// value. Array/slice-typed parameters are NOT eagerly flattened into a
// memory block (spec.md §4 supplemented feature "convert_ssa_block_params"):
// CreateFromType only allocates leaf scalars; the user block is created
// lazily the first time the value is actually indexed. Every non-Field leaf
// is range-checked against its declared bit width as it is bound: the
// constraint builder has no other way to learn that an input witness the
// caller claims is a u8 actually fits in 8 bits (spec.md §8 end-to-end
// scenario 2: "main(x, y: u8) ... output includes range-checks on x, y").
func (c *Context) bindParams() error {
	for i, id := range c.fn.Params {
		t := c.fn.ParamTypes[i]
		val, err := c.createFromType(t, func() acir.Variable { return c.builder.AllocateInput() })
		if err != nil {
			return err
		}
		c.cache[id] = val
		if _, ok := t.(*ssa.SliceType); ok {
			// createFromType always binds a slice parameter to an empty
			// StaticArray (value.go's createFromType); record that length
			// up front so elementLayout's StaticArray fallback (array.go)
			// is only ever needed for slices materialized mid-function.
			c.sliceSizes[id] = sliceSize{Len: 0}
		}
		if err := c.rangeCheckInputs(val); err != nil {
			return err
		}
	}
	return nil
}

// rangeCheckInputs range-checks every non-Field leaf of a freshly bound
// parameter value. DynamicArray never occurs here (parameters are bound via
// createFromType, which only ever produces Scalar/StaticArray).
func (c *Context) rangeCheckInputs(v acir.Value) error {
	flat, err := acir.Flatten(v)
	if err != nil {
		return internalErr(errors.FlattenDynamicArray(), c.callStack)
	}
	for _, leaf := range flat {
		if !leaf.Type.IsField {
			c.builder.RangeCheck(leaf.Var, leaf.Type.BitWidth)
		}
	}
	return nil
}

// markReturns applies the §4.1 distinctness pass and marks every flattened
// leaf of every return value as a return witness. A DynamicArray return
// value is read back element by element from its memory block.
func (c *Context) markReturns(returns []acir.Value) error {
	for _, v := range returns {
		var leaves []acir.Variable
		if dyn, ok := v.(acir.DynamicArray); ok {
			if err := c.requireInitialized(dyn.Block, "read"); err != nil {
				return err
			}
			for i := 0; i < dyn.FlatLen; i++ {
				idx := c.builder.AddConstant(field.FromUint64(uint64(i)))
				leaves = append(leaves, c.builder.ReadMemory(dyn.Block, idx))
			}
		} else {
			flat, err := acir.Flatten(v)
			if err != nil {
				return internalErr(errors.FlattenDynamicArray(), c.callStack)
			}
			for _, leaf := range flat {
				leaves = append(leaves, leaf.Var)
			}
		}
		for _, w := range leaves {
			if c.distinct == Distinct {
				fresh := c.builder.AllocateVariable()
				c.builder.AssertEq(fresh, w, "distinct return witness")
				w = fresh
			}
			c.builder.MarkReturnWitness(w)
		}
	}
	return nil
}

func (c *Context) lowerUnconstrainedMain() ([]acir.Value, error) {
	args := make([]acir.Variable, 0, len(c.fn.Params))
	for range c.fn.Params {
		args = append(args, c.builder.AllocateInput())
	}
	return c.lowerUnconstrainedCallRaw(c.fn.Name, args, c.fn.DFG, nil)
}

// valueFor resolves an SSA value id to its cached ACIR value, following
// copy propagation and materializing constants/literals on first demand
// (Value Model "created on first demand" lifecycle, spec §3).
func (c *Context) valueFor(id ssa.ValueID) (acir.Value, error) {
	id = c.fn.DFG.ResolveID(id)
	if v, ok := c.cache[id]; ok {
		return v, nil
	}

	dfgVal := c.fn.DFG.Value(id)
	if dfgVal == nil {
		return nil, internalErr(errors.CacheMiss(int(id)), c.callStack)
	}

	if dfgVal.Constant != nil {
		v, err := c.materializeConstant(dfgVal.Type, dfgVal.Constant)
		if err != nil {
			return nil, err
		}
		c.cache[id] = v
		return v, nil
	}

	if dfgVal.Literal != nil {
		v, err := c.materializeLiteral(dfgVal.Type, dfgVal.Literal)
		if err != nil {
			return nil, err
		}
		c.cache[id] = v
		return v, nil
	}

	return nil, internalErr(errors.CacheMiss(int(id)), c.callStack)
}

func (c *Context) materializeConstant(t ssa.Type, data *ssa.ConstantData) (acir.Value, error) {
	nt, ok := t.(*ssa.NumericType)
	if !ok {
		return nil, internalErr(errors.CastOfArray(t.String()), c.callStack)
	}
	big, ok := parseConstant(data.Big)
	if !ok {
		return nil, internalErr(errors.UnknownInstruction("malformed constant literal "+data.Big), c.callStack)
	}
	fe := field.FromBigInt(big)
	v := c.builder.AddConstant(fe)
	return acir.Scalar{Var: v, Type: numericTypeOf(nt)}, nil
}

func (c *Context) materializeLiteral(t ssa.Type, elements []ssa.ValueID) (acir.Value, error) {
	vals := make([]acir.Value, len(elements))
	for i, id := range elements {
		v, err := c.valueFor(id)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return acir.StaticArray{Elements: vals}, nil
}

func numericTypeOf(t *ssa.NumericType) acir.NumericType {
	return acir.NumericType{
		IsField:  t.Kind == ssa.FieldKind,
		Signed:   t.Kind == ssa.SignedKind,
		BitWidth: t.BitWidth,
	}
}

// currentPredicate lazily materializes the constant-1 predicate the first
// time an operation needs a concrete variable for it (Div/Lt/Mod always
// receive one; dynamic array gating only needs one once EnableSideEffects
// has actually run). This keeps the identity-function scenario (spec §8
// end-to-end scenario 1) free of any spurious constant opcode when no
// predicate is ever referenced.
func (c *Context) currentPredicate() acir.Variable {
	if c.predicate == 0 {
		c.predicate = c.builder.AddConstant(field.One())
	}
	return c.predicate
}

func (c *Context) pushFrame(inst ssa.Instruction) {
	c.callStack = append(c.callStack, errors.Frame{Function: c.fn.Name, Instruction: int(inst.InstrID())})
}

func (c *Context) popFrame() {
	if len(c.callStack) > 0 {
		c.callStack = c.callStack[:len(c.callStack)-1]
	}
}

func internalErr(b *errors.LoweringErrorBuilder, frames []errors.Frame) error {
	return b.WithFrames(frames)
}
