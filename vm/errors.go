package vm

// ---------------------------------------------------------------------------
// Runtime error catalog
// ---------------------------------------------------------------------------

// RuntimeError classifies the outcome of a single Run invocation. Runtime
// errors are in-band values rather than Go errors so the audio path never
// allocates; they halt the current invocation but are local to it, and the
// program's persistent memory stays intact for the next call.
type RuntimeError int

const (
	ErrNone RuntimeError = iota
	ErrDivideByZero
	ErrMissingOperand
	ErrMissingOpcode
	ErrInconsistentStack
	ErrEmptyProgram
	ErrGetOutOfBounds
	ErrPutOutOfBounds
)

// String returns the fixed human-readable text for the error, suitable for
// display by an editor or console layer.
func (e RuntimeError) String() string {
	switch e {
	case ErrNone:
		return "None"
	case ErrDivideByZero:
		return "Divide by zero"
	case ErrMissingOperand:
		return "Missing operand"
	case ErrMissingOpcode:
		return "Unimplemented opcode"
	case ErrInconsistentStack:
		return "Inconsistent stack"
	case ErrEmptyProgram:
		return "Empty program (instruction count is zero)"
	case ErrGetOutOfBounds:
		return "Input access is out of bounds"
	case ErrPutOutOfBounds:
		return "Output access is out of bounds"
	default:
		return "Unknown"
	}
}
