package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorReporterFormatsInternalError(t *testing.T) {
	source := `fn main(x: Field) -> Field {
  v1 = array_get v0, v0
  return v1
}`
	reporter := NewErrorReporter("main.ssa", source)

	err := UninitializedBlock(3, "read").
		WithFrames([]Frame{{Function: "main", Instruction: 2, Position: Position{Line: 2, Column: 8}}}).
		Build()
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUninitializedBlock+"]")
	assert.Contains(t, formatted, "before being initialized")
	assert.Contains(t, formatted, "main.ssa:2:8")
	assert.Contains(t, formatted, "while lowering main (instruction 2)")
}

func TestCacheMissError(t *testing.T) {
	err := CacheMiss(7).Build()
	assert.Equal(t, ErrorCacheMiss, err.Code)
	assert.Contains(t, err.Message, "v7")
	assert.Equal(t, "Internal", GetErrorCategory(err.Code))
}

func TestShapeMismatchError(t *testing.T) {
	err := ShapeMismatch("Scalar", "StaticArray").Build()
	assert.Equal(t, ErrorShapeMismatch, err.Code)
	assert.Contains(t, err.Message, "Scalar")
	assert.Contains(t, err.Message, "StaticArray")
}

func TestIndexOutOfBoundsError(t *testing.T) {
	err := IndexOutOfBounds(5, 3).Build()
	assert.Equal(t, ErrorIndexOutOfBounds, err.Code)
	assert.Equal(t, "UserVisible", GetErrorCategory(err.Code))
	assert.Contains(t, err.Message, "index 5")
	assert.Contains(t, err.Message, "length 3")
}

func TestBitWidthTooLargeError(t *testing.T) {
	err := BitWidthTooLarge(200, 127).Build()
	assert.Equal(t, ErrorBitWidthTooLarge, err.Code)
	assert.Len(t, err.Notes, 1)
	assert.Contains(t, err.Notes[0], "overflow")
}

func TestDynamicSliceIndexError(t *testing.T) {
	err := DynamicSliceIndex("slice_remove").Build()
	assert.Equal(t, ErrorDynamicSliceIndex, err.Code)
	assert.Equal(t, "Unsupported", GetErrorCategory(err.Code))
	assert.Contains(t, err.Message, "slice_remove")
}

func TestNestedDynamicArraySetError(t *testing.T) {
	err := NestedDynamicArraySet().Build()
	assert.Equal(t, ErrorNestedDynamicArraySet, err.Code)
	assert.Equal(t, "Unsupported", GetErrorCategory(err.Code))
}

func TestWithFramesSetsPosition(t *testing.T) {
	frames := []Frame{
		{Function: "main", Instruction: 1, Position: Position{Line: 1, Column: 1}},
		{Function: "main", Instruction: 4, Position: Position{Line: 4, Column: 3}},
	}
	err := UnlinkableCallee("double").WithFrames(frames).Build()
	assert.Equal(t, Position{Line: 4, Column: 3}, err.Position)
	assert.Len(t, err.Frames, 2)
}

func TestErrorMarkerCreation(t *testing.T) {
	source := `let variable = value;`
	reporter := NewErrorReporter("test.ssa", source)

	marker := reporter.createMarker(5, 8, Error) // "variable" is 8 chars at column 5

	spaces := strings.Count(marker, " ")
	assert.Equal(t, 4, spaces) // column 5 means 4 spaces before
	carets := strings.Count(marker, "^")
	assert.Equal(t, 8, carets) // 8 character length
}

func TestErrorLevels(t *testing.T) {
	source := `test`
	reporter := NewErrorReporter("test.ssa", source)
	pos := Position{Line: 1, Column: 1}

	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	errorFormatted := reporter.FormatError(errorErr)
	warningFormatted := reporter.FormatError(warningErr)

	assert.Contains(t, errorFormatted, "error:")
	assert.Contains(t, warningFormatted, "warning:")
}

func TestGetErrorDescriptionCoversEveryCode(t *testing.T) {
	codes := []string{
		ErrorUninitializedBlock, ErrorDoubleInitBlock, ErrorCacheMiss, ErrorShapeMismatch,
		ErrorReferenceEncountered, ErrorDirectCallUninlined, ErrorUnknownInstruction,
		ErrorFlattenDynamicArray, ErrorIndexOutOfBounds, ErrorBitWidthTooLarge,
		ErrorCastOfArray, ErrorUnlinkableCallee, ErrorOperandTypeMismatch,
		ErrorDynamicSliceIndex, ErrorNestedDynamicArraySet,
	}
	for _, code := range codes {
		assert.NotEqual(t, "unknown error code", GetErrorDescription(code))
	}
}
