package errors

// Diagnostic codes for the IR core.
//
// The IR has no source text or file positions (it is a pure in-memory
// library), so these codes classify ir.Diagnostic.Kind and the handful
// of builder-level invariant violations that surface as panics rather
// than diagnostics. Codes are grouped by range so a caller can bucket
// them without a switch over every individual value.
//
// E0001-E0099: verification diagnostics (ir.Verify)
// E0100-E0199: builder invariant violations (panics, reported here only
//              for documentation/tooling purposes)

const (
	// E0001: a Use's declared type disagrees with its referent's actual type.
	CodeTypeMismatch = "E0001"

	// E0002: a Use references an instruction unlinked from its block.
	CodeDanglingUse = "E0002"

	// E0003: a block is missing its terminator, or a terminator appears
	// somewhere other than a block's final instruction.
	CodeMalformedTerminator = "E0003"

	// E0100: an instruction was built with no current insertion point.
	CodeNoInsertionPoint = "E0100"

	// E0101: a struct field, struct, alias, global, or function name
	// collided with an existing one.
	CodeDuplicateName = "E0101"
)

// CodeForKind maps an ir.DiagnosticKind's String() form to its code.
func CodeForKind(kind string) string {
	switch kind {
	case "TypeMismatch":
		return CodeTypeMismatch
	case "DanglingUse":
		return CodeDanglingUse
	case "MalformedTerminator":
		return CodeMalformedTerminator
	default:
		return ""
	}
}

// Description returns a human-readable explanation of a diagnostic code.
func Description(code string) string {
	switch code {
	case CodeTypeMismatch:
		return "a use's declared type does not match its referent's actual type"
	case CodeDanglingUse:
		return "a use references an instruction that has been unlinked from its block"
	case CodeMalformedTerminator:
		return "a block does not end in exactly one terminator instruction"
	case CodeNoInsertionPoint:
		return "an instruction was built with no current insertion point set"
	case CodeDuplicateName:
		return "a name collided with one already present in its namespace"
	default:
		return "unknown diagnostic code"
	}
}

// IsBuilderInvariant reports whether code names a builder-level
// invariant violation (a programmer bug raised as a panic) rather than
// a Verify diagnostic against an already-built Module.
func IsBuilderInvariant(code string) bool {
	return code >= "E0100" && code < "E0200"
}
