package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Compile error catalog
// ---------------------------------------------------------------------------

// ErrorCode classifies a compilation failure.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrMissingParen
	ErrUnexpectedChar
	ErrIllegalAssignment
	ErrMissingBracket
	ErrIllegalStatementTermination
)

// String returns the fixed human-readable text for the error code, suitable
// for display by an editor or console layer.
func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "None"
	case ErrMissingParen:
		return "Mismatched parens"
	case ErrUnexpectedChar:
		return "Unexpected character"
	case ErrIllegalAssignment:
		return "Left side of = must be assignable (a variable or address)"
	case ErrMissingBracket:
		return "Missing ]"
	case ErrIllegalStatementTermination:
		return "Illegal statement termination.\nSemi-colon may not appear within parens or ternary operators."
	default:
		return "Unknown"
	}
}

// Error reports a compilation failure together with the character offset at
// which parsing stopped.
type Error struct {
	Code   ErrorCode
	Offset int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.Code, e.Offset)
}
