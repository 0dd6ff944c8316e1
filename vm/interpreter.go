package vm

import "math"

// ---------------------------------------------------------------------------
// Interpreter: one pass over the compiled sequence per invocation
// ---------------------------------------------------------------------------

// Run executes the compiled sequence once against the program's persistent
// memory and the caller-owned channel buffer. Each channel slot is readable
// through GET and writable through PUT; if the program never executes a
// PUT, the final statement value is broadcast to every channel instead.
//
// Execution halts at the first runtime error. Errors are local to the
// invocation: memory keeps whatever the program wrote before the fault,
// and the operand stack is drained to at most one residual entry so that
// repeated faulting runs stay bounded.
func (p *Program) Run(channels []Value) RuntimeError {
	if len(p.ops) == 0 {
		return ErrEmptyProgram
	}

	err := ErrNone
	var result Value
	didPut := false

	for i := 0; i < len(p.ops) && err == ErrNone; i++ {
		op := p.ops[i]
		if op.Code == OpPOP {
			// POP marks a statement boundary: the discarded value becomes
			// the running statement result. Underflow here means the
			// sequence itself is malformed, not that an operand is missing.
			if n := len(p.stack); n > 0 {
				result = p.stack[n-1]
				p.stack = p.stack[:n-1]
			} else {
				err = ErrInconsistentStack
			}
			continue
		}
		didPut = didPut || op.Code == OpPUT
		err = p.exec(op, channels)
	}

	// Error-free execution leaves 1 value (program ended in an expression)
	// or 0 values (program ended in a statement terminator, so the result
	// was captured by the final POP).
	if err == ErrNone {
		if n := len(p.stack); n == 1 {
			result = p.stack[0]
			p.stack = p.stack[:0]
		} else if n > 1 {
			err = ErrInconsistentStack
		}
		if !didPut {
			for i := range channels {
				channels[i] = result
			}
		}
	}

	if len(p.stack) > 1 {
		p.stack = p.stack[:1]
	}

	return err
}

func (p *Program) push(v Value) {
	p.stack = append(p.stack, v)
}

// pop1 removes the top of the stack. ok is false on underflow, which the
// caller reports as a missing operand.
func (p *Program) pop1() (a Value, ok bool) {
	n := len(p.stack)
	if n < 1 {
		return 0, false
	}
	a = p.stack[n-1]
	p.stack = p.stack[:n-1]
	return a, true
}

// pop2 removes the top two values. b is the top (right operand), a the one
// beneath it (left operand).
func (p *Program) pop2() (a, b Value, ok bool) {
	n := len(p.stack)
	if n < 2 {
		return 0, 0, false
	}
	a, b = p.stack[n-2], p.stack[n-1]
	p.stack = p.stack[:n-2]
	return a, b, true
}

// pop3 removes the top three values; a is the bottom-most of the three.
func (p *Program) pop3() (a, b, c Value, ok bool) {
	n := len(p.stack)
	if n < 3 {
		return 0, 0, 0, false
	}
	a, b, c = p.stack[n-3], p.stack[n-2], p.stack[n-1]
	p.stack = p.stack[:n-3]
	return a, b, c, true
}

// exec performs a single non-POP operation against the stack, memory, and
// channel buffer.
func (p *Program) exec(op Op, channels []Value) RuntimeError {
	switch op.Code {
	case OpNUM:
		p.push(op.Val)

	case OpPEK:
		a, ok := p.pop1()
		if !ok {
			return ErrMissingOperand
		}
		p.push(p.Peek(a))

	case OpPOK:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.Poke(a, b)
		p.push(b)

	case OpGET:
		a, ok := p.pop1()
		if !ok {
			return ErrMissingOperand
		}
		var v Value
		if a >= 0 && a < Value(len(channels)) {
			v = channels[a]
		} else {
			p.push(0)
			return ErrGetOutOfBounds
		}
		p.push(v)

	case OpPUT:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		if a == -1 {
			for i := range channels {
				channels[i] = b
			}
		} else if a >= 0 && a < Value(len(channels)) {
			channels[a] = b
		} else {
			p.push(b)
			return ErrPutOutOfBounds
		}
		p.push(b)

	case OpNEG:
		a, ok := p.pop1()
		if !ok {
			return ErrMissingOperand
		}
		p.push(-a)

	case OpSIN:
		a, ok := p.pop1()
		if !ok {
			return ErrMissingOperand
		}
		r := p.GetVar(RangeVar)
		hr := r / 2
		r++
		if r == 0 {
			p.push(0)
			return ErrDivideByZero
		}
		s := math.Sin(2 * math.Pi * float64(a%r) / float64(r))
		p.push(Value(s*float64(hr) + float64(hr)))

	case OpSQR:
		a, ok := p.pop1()
		if !ok {
			return ErrMissingOperand
		}
		r := p.GetVar(RangeVar)
		if r == 0 {
			p.push(0)
			return ErrDivideByZero
		}
		var v Value
		if a%r < r/2 {
			v = 0
		} else {
			v = r - 1
		}
		p.push(v)

	case OpFREQ:
		a, ok := p.pop1()
		if !ok {
			return ErrMissingOperand
		}
		if a == 0 {
			p.push(0)
			break
		}
		sr := p.GetVar(SampleRateVar)
		if sr == 0 {
			p.push(0)
			return ErrDivideByZero
		}
		f := math.Round(3 * math.Pow(2, float64(a)/12) * (DefaultSampleRate / float64(sr)))
		p.push(Value(f))

	case OpTRI:
		a, ok := p.pop1()
		if !ok {
			return ErrMissingOperand
		}
		r := p.GetVar(RangeVar)
		if r == 0 {
			p.push(0)
			return ErrDivideByZero
		}
		a *= 2
		m := (a / r) % 2
		p.push(a*m + (r-a-1)*(1-m))

	case OpMUL:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.push(a * b)

	case OpDIV:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		if b == 0 {
			p.push(0)
			return ErrDivideByZero
		}
		if b == -1 {
			// a/-1 wraps for MinInt64; Go's quotient would trap.
			p.push(-a)
		} else {
			p.push(a / b)
		}

	case OpMOD:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		if b == 0 {
			p.push(0)
			return ErrDivideByZero
		}
		if b == -1 {
			p.push(0)
		} else {
			p.push(a % b)
		}

	case OpADD:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.push(a + b)

	case OpSUB:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.push(a - b)

	case OpBSL:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.push(a << (uint64(b) % 64))

	case OpBSR:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.push(a >> (uint64(b) % 64))

	case OpAND:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.push(a & b)

	case OpOR:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.push(a | b)

	case OpXOR:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		p.push(a ^ b)

	case OpCLT:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		if a < b {
			p.push(1)
		} else {
			p.push(0)
		}

	case OpCGT:
		a, b, ok := p.pop2()
		if !ok {
			return ErrMissingOperand
		}
		if a > b {
			p.push(1)
		} else {
			p.push(0)
		}

	case OpTRN:
		a, b, c, ok := p.pop3()
		if !ok {
			return ErrMissingOperand
		}
		if a != 0 {
			p.push(b)
		} else {
			p.push(c)
		}

	default:
		return ErrMissingOpcode
	}

	return ErrNone
}
