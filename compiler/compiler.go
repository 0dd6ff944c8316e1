// Package compiler translates expression source text into vm operation
// sequences. The grammar is a precedence-climbing hierarchy parsed by
// recursive descent: each level owns its operator set and falls through to
// the next tighter level on mismatch. Compilation either produces a fully
// built vm.Program or an Error with the offset where parsing stopped; a
// failed compile never yields a partial program.
package compiler

import (
	"math"
	"strconv"

	"github.com/chazu/evaluator/vm"
)

// ---------------------------------------------------------------------------
// Compilation state
// ---------------------------------------------------------------------------

// state carries everything the grammar-level methods need: the source
// cursor, nesting counters, the pending error, and the emitted sequence.
// It is threaded explicitly through every level; nothing is global.
type state struct {
	src      string
	pos      int
	parens   int
	brackets int
	depth    int
	code     ErrorCode
	ops      []vm.Op
}

// cur returns the byte under the cursor, or 0 at end of input.
func (s *state) cur() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

func (s *state) emit(code vm.OpCode) {
	s.ops = append(s.ops, vm.Op{Code: code})
}

func (s *state) emitNum(v vm.Value) {
	s.ops = append(s.ops, vm.Op{Code: vm.OpNUM, Val: v})
}

func (s *state) fail(code ErrorCode) bool {
	s.code = code
	return false
}

func (s *state) skipSpace() {
	for isSpace(s.cur()) {
		s.pos++
	}
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// ---------------------------------------------------------------------------
// Grammar levels, loosest binding first
// ---------------------------------------------------------------------------

// parseStatements is the statement-sequence level: expressions separated
// by semicolons, each semicolon emitting a POP to commit the statement
// value. Nesting depth is owned by the callers: parentheses raise it,
// ternary branches re-enter at the depth of the enclosing sequence. A
// semicolon anywhere but depth 1 is illegal because a POP emitted under a
// paren would desynchronize the stack at run time.
func (s *state) parseStatements() bool {
	for s.cur() != 0 {
		if !s.parseAssign() {
			return false
		}
		s.skipSpace()
		if s.cur() != ';' {
			return true
		}
		if s.depth != 1 {
			return s.fail(ErrIllegalStatementTermination)
		}
		s.pos++
		s.emit(vm.OpPOP)
		// Eat whitespace after the terminator in case it is the last
		// symbol of the program.
		s.skipSpace()
	}
	return true
}

// parseAssign handles `=`, the loosest infix operator. The left side must
// have just compiled to a dereference (PEK for variables and @-addresses,
// GET for bracket targets); that trailing dereference is removed so the
// address it would have consumed feeds the matching store operation
// emitted after the right side. Anything else on the left is illegal:
// `5 = 4` does not assign, but `@5 = 4`, `a = 4` and `[0] = 4` do.
func (s *state) parseAssign() bool {
	if !s.parseTernary() {
		return false
	}
	for {
		s.skipSpace()
		if s.cur() != '=' {
			return true
		}
		s.pos++
		if len(s.ops) == 0 {
			return s.fail(ErrIllegalAssignment)
		}
		code := s.ops[len(s.ops)-1].Code
		if code != vm.OpPEK && code != vm.OpGET {
			return s.fail(ErrIllegalAssignment)
		}
		s.ops = s.ops[:len(s.ops)-1]
		if !s.parseTernary() {
			return false
		}
		if code == vm.OpPEK {
			s.emit(vm.OpPOK)
		} else {
			s.emit(vm.OpPUT)
		}
	}
}

// parseTernary handles `?:`. Both branches re-enter the full grammar at
// the enclosing nesting depth. A branch that was itself a terminated
// statement ends in POP; the select operation is inserted beneath that POP
// so the statement boundary is preserved while the branch value stays
// consumable, which is what lets `1?2:3;` keep its trailing POP.
func (s *state) parseTernary() bool {
	if !s.parseOr() {
		return false
	}
	for {
		s.skipSpace()
		if s.cur() != '?' {
			return true
		}
		s.pos++
		if !s.parseStatements() {
			return false
		}
		s.skipSpace()
		if s.cur() != ':' {
			return s.fail(ErrUnexpectedChar)
		}
		s.pos++
		if !s.parseStatements() {
			return false
		}
		if n := len(s.ops); n > 0 && s.ops[n-1].Code == vm.OpPOP {
			s.ops = s.ops[:n-1]
			s.emit(vm.OpTRN)
			s.emit(vm.OpPOP)
		} else {
			s.emit(vm.OpTRN)
		}
	}
}

func (s *state) parseOr() bool {
	if !s.parseXor() {
		return false
	}
	for {
		s.skipSpace()
		if s.cur() != '|' {
			return true
		}
		s.pos++
		if !s.parseXor() {
			return false
		}
		s.emit(vm.OpOR)
	}
}

func (s *state) parseXor() bool {
	if !s.parseAnd() {
		return false
	}
	for {
		s.skipSpace()
		if s.cur() != '^' {
			return true
		}
		s.pos++
		if !s.parseAnd() {
			return false
		}
		s.emit(vm.OpXOR)
	}
}

func (s *state) parseAnd() bool {
	if !s.parseCmpOrShift() {
		return false
	}
	for {
		s.skipSpace()
		if s.cur() != '&' {
			return true
		}
		s.pos++
		if !s.parseCmpOrShift() {
			return false
		}
		s.emit(vm.OpAND)
	}
}

// parseCmpOrShift resolves `<` and `>` by lookahead: doubled tokens are bit
// shifts, single tokens are comparisons.
func (s *state) parseCmpOrShift() bool {
	if !s.parseSummands() {
		return false
	}
	for {
		s.skipSpace()
		op := s.cur()
		if op != '<' && op != '>' {
			return true
		}
		s.pos++
		if s.cur() != op {
			if !s.parseSummands() {
				return false
			}
			if op == '<' {
				s.emit(vm.OpCLT)
			} else {
				s.emit(vm.OpCGT)
			}
		} else {
			s.pos++
			if !s.parseSummands() {
				return false
			}
			if op == '<' {
				s.emit(vm.OpBSL)
			} else {
				s.emit(vm.OpBSR)
			}
		}
	}
}

func (s *state) parseSummands() bool {
	if !s.parseFactors() {
		return false
	}
	for {
		s.skipSpace()
		op := s.cur()
		if op != '+' && op != '-' {
			return true
		}
		s.pos++
		if !s.parseFactors() {
			return false
		}
		if op == '+' {
			s.emit(vm.OpADD)
		} else {
			s.emit(vm.OpSUB)
		}
	}
}

func (s *state) parseFactors() bool {
	if !s.parseAtom() {
		return false
	}
	for {
		s.skipSpace()
		op := s.cur()
		if op != '*' && op != '/' && op != '%' {
			return true
		}
		s.pos++
		if !s.parseAtom() {
			return false
		}
		switch op {
		case '*':
			s.emit(vm.OpMUL)
		case '/':
			s.emit(vm.OpDIV)
		case '%':
			s.emit(vm.OpMOD)
		}
	}
}

// parseAtom compiles a run of unary prefix markers followed by exactly one
// primary: a parenthesized sub-expression, a single-letter variable, or an
// unsigned decimal literal. The prefix markers are collected on a stack
// and emitted after the primary, so the first-read marker applies last.
// Each `[` marker additionally requires a matching `]` after the primary.
func (s *state) parseAtom() bool {
	s.skipSpace()

	var unary []vm.OpCode
	closers := 0
	for {
		op := s.cur()
		if op != '-' && op != '+' && op != '$' && op != '#' && op != 'F' && op != 'T' && op != '@' && op != '[' {
			break
		}
		switch op {
		case '-':
			unary = append(unary, vm.OpNEG)
		case '+':
			// no-op prefix
		case '$':
			unary = append(unary, vm.OpSIN)
		case '#':
			unary = append(unary, vm.OpSQR)
		case 'F':
			unary = append(unary, vm.OpFREQ)
		case 'T':
			unary = append(unary, vm.OpTRI)
		case '@':
			unary = append(unary, vm.OpPEK)
		case '[':
			unary = append(unary, vm.OpGET)
			s.brackets++
			closers++
		}
		s.pos++
	}

	switch {
	case s.cur() == '(':
		s.pos++
		s.parens++
		s.depth++
		if !s.parseStatements() {
			return false
		}
		if s.cur() != ')' {
			return s.fail(ErrMissingParen)
		}
		s.pos++
		s.parens--
		s.depth--

	case isAlpha(s.cur()):
		// A variable is sugar for a fixed memory address.
		s.emitNum(vm.VarAddress(s.cur()))
		s.emit(vm.OpPEK)
		s.pos++

	default:
		start := s.pos
		for isDigit(s.cur()) {
			s.pos++
		}
		if s.pos == start {
			return s.fail(ErrUnexpectedChar)
		}
		n, err := strconv.ParseUint(s.src[start:s.pos], 10, 64)
		if err != nil {
			// Out-of-range literals saturate.
			n = math.MaxUint64
		}
		s.emitNum(vm.Value(n))
	}

	// Each bracket marker consumes its closer here, immediately after the
	// primary; bracketing a compound expression requires parens, as in
	// `[(c+1)]`.
	for ; closers > 0; closers-- {
		s.skipSpace()
		if s.cur() != ']' {
			return s.fail(ErrMissingBracket)
		}
		s.pos++
		s.brackets--
	}

	for i := len(unary) - 1; i >= 0; i-- {
		s.emit(unary[i])
	}

	return true
}

// ---------------------------------------------------------------------------
// Entry point
// ---------------------------------------------------------------------------

// Compile parses source text and returns a ready-to-run program, or an
// Error carrying the failure kind and the offset at which parsing stopped.
// Source with no statements compiles to an empty program, which Run
// rejects at execution time.
func Compile(source string) (*vm.Program, *Error) {
	s := &state{src: source, depth: 1}

	s.parseStatements()

	if s.code == ErrNone {
		// The cursor should rest on end-of-input with no parens open.
		if s.parens != 0 || s.cur() == ')' {
			s.code = ErrMissingParen
		} else if s.cur() != 0 {
			s.code = ErrUnexpectedChar
		}
	}

	if s.code != ErrNone {
		return nil, &Error{Code: s.code, Offset: s.pos}
	}
	return vm.NewProgram(s.ops), nil
}
