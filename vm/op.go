// Package vm implements the stack-based virtual machine that executes
// compiled expression programs at audio rate. A Program pairs an immutable
// operation sequence with a private, persistent memory space; the host
// invokes Run once per sample (or block) with a channel buffer, and the
// final statement value is broadcast to every channel unless the program
// wrote channels explicitly.
package vm

import "fmt"

// ---------------------------------------------------------------------------
// Value and operation model
// ---------------------------------------------------------------------------

// Value is the language's sole numeric type: a 64-bit signed integer with
// native wraparound arithmetic. Values double as memory addresses and
// channel indices.
type Value = int64

// OpCode identifies a single VM operation.
type OpCode byte

// Stack and memory operations.
const (
	OpNUM OpCode = iota // push literal operand
	OpPEK               // pop address, push memory[address]
	OpPOK               // pop value and address, store, push value
	OpGET               // pop channel index, push channel value
	OpPUT               // pop value and channel index, store, push value
	OpPOP               // discard top of stack (statement boundary)
)

// Unary operations.
const (
	OpNEG OpCode = iota + 0x10 // arithmetic negation
	OpSIN                      // quantized sine shaper
	OpSQR                      // quantized square shaper
	OpFREQ                     // semitone offset to phase increment
	OpTRI                      // quantized triangle shaper
)

// Binary and ternary operations.
const (
	OpMUL OpCode = iota + 0x20
	OpDIV
	OpMOD
	OpADD
	OpSUB
	OpBSL // bit shift left, count masked mod 64
	OpBSR // bit shift right, count masked mod 64
	OpAND
	OpOR
	OpXOR
	OpCLT // less-than comparison, pushes 0 or 1
	OpCGT // greater-than comparison, pushes 0 or 1
	OpTRN // ternary select
)

// opNames maps opcodes to their mnemonic for disassembly.
var opNames = map[OpCode]string{
	OpNUM: "NUM",
	OpPEK: "PEK",
	OpPOK: "POK",
	OpGET: "GET",
	OpPUT: "PUT",
	OpPOP: "POP",

	OpNEG:  "NEG",
	OpSIN:  "SIN",
	OpSQR:  "SQR",
	OpFREQ: "FREQ",
	OpTRI:  "TRI",

	OpMUL: "MUL",
	OpDIV: "DIV",
	OpMOD: "MOD",
	OpADD: "ADD",
	OpSUB: "SUB",
	OpBSL: "BSL",
	OpBSR: "BSR",
	OpAND: "AND",
	OpOR:  "OR",
	OpXOR: "XOR",
	OpCLT: "CLT",
	OpCGT: "CGT",
	OpTRN: "TRN",
}

// String returns the opcode mnemonic.
func (c OpCode) String() string {
	if name, ok := opNames[c]; ok {
		return name
	}
	return "???"
}

// Op is one compiled instruction: an opcode plus an optional literal
// operand. Val carries the literal for OpNUM and is zero for every other
// opcode.
type Op struct {
	Code OpCode `cbor:"code"`
	Val  Value  `cbor:"val"`
}

// String renders the instruction for disassembly listings.
func (op Op) String() string {
	if op.Code == OpNUM {
		return fmt.Sprintf("NUM %d", op.Val)
	}
	return op.Code.String()
}
