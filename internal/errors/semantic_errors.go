package errors

import "fmt"

// LoweringErrorBuilder provides a fluent interface for attaching notes, help
// text, and a call stack to a lowering-pass error.
type LoweringErrorBuilder struct {
	err CompilerError
}

// NewInternalError builds an Internal error (spec §7): an invariant
// violation the pass should never itself trigger on well-formed input.
func NewInternalError(code, message string) *LoweringErrorBuilder {
	return &LoweringErrorBuilder{err: CompilerError{Level: Error, Code: code, Message: message, Length: 1}}
}

// NewUserError builds a User-visible runtime error: a fact about the
// specific program being lowered, not a bug in the pass.
func NewUserError(code, message string) *LoweringErrorBuilder {
	return &LoweringErrorBuilder{err: CompilerError{Level: Error, Code: code, Message: message, Length: 1}}
}

// NewUnsupportedError builds an Unsupported-construct error.
func NewUnsupportedError(code, message string) *LoweringErrorBuilder {
	return &LoweringErrorBuilder{err: CompilerError{Level: Error, Code: code, Message: message, Length: 1}}
}

func (b *LoweringErrorBuilder) WithFrames(frames []Frame) *LoweringErrorBuilder {
	b.err.Frames = append([]Frame{}, frames...)
	if len(frames) > 0 {
		b.err.Position = frames[len(frames)-1].Position
	}
	return b
}

func (b *LoweringErrorBuilder) WithNote(note string) *LoweringErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *LoweringErrorBuilder) WithHelp(help string) *LoweringErrorBuilder {
	b.err.HelpText = help
	return b
}

func (b *LoweringErrorBuilder) Build() CompilerError { return b.err }

func (b *LoweringErrorBuilder) Error() string { return b.err.Message }

// Category reports which of the three spec §7 taxonomy buckets this error
// falls into, derived from its code.
func (b *LoweringErrorBuilder) Category() string { return GetErrorCategory(b.err.Code) }

// Common constructors, one per invariant/edge case named in spec §7.

func UninitializedBlock(block int, op string) *LoweringErrorBuilder {
	return NewInternalError(ErrorUninitializedBlock,
		fmt.Sprintf("memory block %d was %s before being initialized", block, op)).
		WithNote("every memory block must be initialized exactly once before any read or write")
}

func DoubleInitBlock(block int) *LoweringErrorBuilder {
	return NewInternalError(ErrorDoubleInitBlock,
		fmt.Sprintf("memory block %d was initialized more than once", block))
}

func CacheMiss(valueID int) *LoweringErrorBuilder {
	return NewInternalError(ErrorCacheMiss,
		fmt.Sprintf("no ACIR value cached for SSA value v%d", valueID))
}

func ShapeMismatch(lhs, rhs string) *LoweringErrorBuilder {
	return NewInternalError(ErrorShapeMismatch,
		fmt.Sprintf("constrain operands have incompatible shapes: %s vs %s", lhs, rhs))
}

func ReferenceEncountered(kind string) *LoweringErrorBuilder {
	return NewInternalError(ErrorReferenceEncountered,
		fmt.Sprintf("%s instruction reached the lowering pass; reference elimination must precede it", kind)).
		WithNote("Allocate/Load/Store are not part of this pass's dispatch table")
}

func DirectCallUninlined(target string) *LoweringErrorBuilder {
	return NewInternalError(ErrorDirectCallUninlined,
		fmt.Sprintf("direct call to %q reached the lowering pass uninlined", target))
}

func UnknownInstruction(kind string) *LoweringErrorBuilder {
	return NewInternalError(ErrorUnknownInstruction,
		fmt.Sprintf("instruction kind %s has no lowering rule", kind))
}

func FlattenDynamicArray() *LoweringErrorBuilder {
	return NewInternalError(ErrorFlattenDynamicArray,
		"cannot flatten a dynamic array without reading its memory block")
}

func IndexOutOfBounds(index, length int) *LoweringErrorBuilder {
	return NewUserError(ErrorIndexOutOfBounds,
		fmt.Sprintf("index %d is out of bounds for an array of length %d", index, length))
}

func BitWidthTooLarge(width, max int) *LoweringErrorBuilder {
	return NewUserError(ErrorBitWidthTooLarge,
		fmt.Sprintf("integer bit width %d exceeds the maximum supported width %d (half the field modulus)", width, max)).
		WithNote("a binary operation at this width could overflow the field modulus")
}

func CastOfArray(t string) *LoweringErrorBuilder {
	return NewUserError(ErrorCastOfArray, fmt.Sprintf("cannot cast a %s value", t))
}

func UnlinkableCallee(label string) *LoweringErrorBuilder {
	return NewUserError(ErrorUnlinkableCallee,
		fmt.Sprintf("unconstrained function %q could not be linked: no artifact registered", label))
}

func OperandTypeMismatch(lhs, rhs string) *LoweringErrorBuilder {
	return NewUserError(ErrorOperandTypeMismatch,
		fmt.Sprintf("binary operands have incompatible types: %s vs %s", lhs, rhs))
}

func DynamicSliceIndex(op string) *LoweringErrorBuilder {
	return NewUnsupportedError(ErrorDynamicSliceIndex,
		fmt.Sprintf("%s requires a compile-time constant index; slice length should be fully tracked", op))
}

func NestedDynamicArraySet() *LoweringErrorBuilder {
	return NewUnsupportedError(ErrorNestedDynamicArraySet,
		"cannot store a dynamic array value inside another dynamic array")
}
