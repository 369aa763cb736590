package lspbridge

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	acirerrors "acirgen/internal/errors"
)

// ConvertLoweringError turns a lowering-pass error, with its call-stack
// frames already carrying positions from ssasyntax.PositionMap.Attach, into
// an LSP diagnostic positioned at the innermost frame. A zero Position
// (lower.Lower ran on a frame with no recovered source location) falls back
// to the first line, which keeps the diagnostic visible rather than
// dropping it.
func ConvertLoweringError(err acirerrors.CompilerError) protocol.Diagnostic {
	line := err.Position.Line
	col := err.Position.Column
	if line <= 0 {
		line, col = 1, 1
	}

	message := err.Message
	for i := len(err.Frames) - 1; i >= 0; i-- {
		f := err.Frames[i]
		message += fmt.Sprintf("\n  while lowering %s (instruction %d)", f.Function, f.Instruction)
	}
	for _, n := range err.Notes {
		message += "\nnote: " + n
	}
	if err.HelpText != "" {
		message += "\nhelp: " + err.HelpText
	}

	length := err.Length
	if length <= 0 {
		length = 1
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1)},
			End:   protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1 + length)},
		},
		Severity: severityFor(err.Level),
		Source:   ptrString("acirgen-lower"),
		Code:     &protocol.IntegerOrString{Value: err.Code},
		Message:  message,
	}
}

func severityFor(level acirerrors.ErrorLevel) *protocol.DiagnosticSeverity {
	s := protocol.DiagnosticSeverityError
	switch level {
	case acirerrors.Warning:
		s = protocol.DiagnosticSeverityWarning
	case acirerrors.Note, acirerrors.Help:
		s = protocol.DiagnosticSeverityInformation
	}
	return &s
}

func ptrString(s string) *string { return &s }
