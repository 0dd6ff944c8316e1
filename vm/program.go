package vm

// ---------------------------------------------------------------------------
// Program: compiled operation sequence + persistent memory
// ---------------------------------------------------------------------------

// MemorySize is the number of Value slots in a program's persistent memory
// space. Every address is reduced modulo MemorySize before use, so any
// 64-bit Value is a valid address. Single-letter variables live at
// ascii(letter)+128 and intentionally alias the explicitly addressed space.
const MemorySize = 65536

// SampleRateVar is the pseudo-variable holding the host sample rate. Its
// memory slot is initialized to DefaultSampleRate at compile time so the
// frequency operator works before the host configures anything.
const SampleRateVar = '~'

// RangeVar is the pseudo-variable holding the output range used by the
// waveform shaper operations (typically 2^bits - 1 for the host bit depth).
const RangeVar = 'r'

// DefaultSampleRate seeds the SampleRateVar slot of every new program.
const DefaultSampleRate = 44100

// Program owns a compiled operation sequence and a private, persistent
// memory space. The sequence is immutable after compilation; the memory
// mutates during execution and persists across Run calls for the lifetime
// of the Program. A Program has no internal locking: the caller must
// serialize Run against any other access, and must swap in a newly
// compiled Program atomically with respect to in-flight Run calls.
type Program struct {
	ops []Op
	mem [MemorySize]Value

	// Operand stack, reused across invocations to keep the audio path
	// allocation-free. Run drains it to at most one residual entry before
	// returning.
	stack []Value
}

// NewProgram wraps a compiled operation sequence in a fresh Program with a
// zeroed memory space, seeding the sample-rate slot.
func NewProgram(ops []Op) *Program {
	p := &Program{
		ops:   append([]Op(nil), ops...),
		stack: make([]Value, 0, 16),
	}
	p.SetVar(SampleRateVar, DefaultSampleRate)
	return p
}

// InstructionCount returns the length of the compiled sequence.
func (p *Program) InstructionCount() int {
	return len(p.ops)
}

// Ops returns a copy of the compiled operation sequence, for disassembly
// and structural comparison.
func (p *Program) Ops() []Op {
	return append([]Op(nil), p.ops...)
}

// wrap reduces an arbitrary address into memory bounds. Negative addresses
// wrap around the end of the space rather than faulting.
func wrap(address Value) Value {
	address %= MemorySize
	if address < 0 {
		address += MemorySize
	}
	return address
}

// Peek reads the memory slot for an arbitrary address.
func (p *Program) Peek(address Value) Value {
	return p.mem[wrap(address)]
}

// Poke writes the memory slot for an arbitrary address.
func (p *Program) Poke(address, value Value) {
	p.mem[wrap(address)] = value
}

// VarAddress returns the fixed memory address reserved for a single-letter
// variable.
func VarAddress(name byte) Value {
	return Value(name) + 128
}

// GetVar reads the memory slot reserved for a single-letter variable.
func (p *Program) GetVar(name byte) Value {
	return p.Peek(VarAddress(name))
}

// SetVar writes the memory slot reserved for a single-letter variable.
// Hosts use this to publish pseudo-variables (time, range, sample rate)
// between invocations.
func (p *Program) SetVar(name byte, value Value) {
	p.Poke(VarAddress(name), value)
}
