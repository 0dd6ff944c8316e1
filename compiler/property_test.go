package compiler

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/chazu/evaluator/vm"
)

// ---------------------------------------------------------------------------
// Random expression model
// ---------------------------------------------------------------------------

// binding strength per operator, loosest first; matches the grammar levels.
var precedence = map[string]int{
	"|": 1,
	"^": 2,
	"&": 3,
	"<": 4, ">": 4, "<<": 4, ">>": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

var binaryOps = []string{"|", "^", "&", "<", ">", "<<", ">>", "+", "-", "*", "/", "%"}

// expr is a literal or a binary node.
type expr struct {
	op          string
	left, right *expr
	lit         vm.Value
}

// render prints the expression with minimal parentheses: a child is
// wrapped only when it binds looser than its parent (or equally, on the
// right, since every level is left-associative).
func (e *expr) render(sb *strings.Builder) {
	if e.op == "" {
		fmt.Fprintf(sb, "%d", e.lit)
		return
	}
	level := precedence[e.op]
	renderChild := func(c *expr, needParens bool) {
		if needParens {
			sb.WriteByte('(')
			c.render(sb)
			sb.WriteByte(')')
		} else {
			c.render(sb)
		}
	}
	renderChild(e.left, e.left.op != "" && precedence[e.left.op] < level)
	sb.WriteString(e.op)
	renderChild(e.right, e.right.op != "" && precedence[e.right.op] <= level)
}

func (e *expr) String() string {
	var sb strings.Builder
	e.render(&sb)
	return sb.String()
}

// eval mirrors the VM's semantics, including the first-fault result.
func (e *expr) eval() (vm.Value, vm.RuntimeError) {
	if e.op == "" {
		return e.lit, vm.ErrNone
	}
	a, err := e.left.eval()
	if err != vm.ErrNone {
		return 0, err
	}
	b, err := e.right.eval()
	if err != vm.ErrNone {
		return 0, err
	}
	switch e.op {
	case "|":
		return a | b, vm.ErrNone
	case "^":
		return a ^ b, vm.ErrNone
	case "&":
		return a & b, vm.ErrNone
	case "<":
		if a < b {
			return 1, vm.ErrNone
		}
		return 0, vm.ErrNone
	case ">":
		if a > b {
			return 1, vm.ErrNone
		}
		return 0, vm.ErrNone
	case "<<":
		return a << (uint64(b) % 64), vm.ErrNone
	case ">>":
		return a >> (uint64(b) % 64), vm.ErrNone
	case "+":
		return a + b, vm.ErrNone
	case "-":
		return a - b, vm.ErrNone
	case "*":
		return a * b, vm.ErrNone
	case "/":
		if b == 0 {
			return 0, vm.ErrDivideByZero
		}
		return a / b, vm.ErrNone
	case "%":
		if b == 0 {
			return 0, vm.ErrDivideByZero
		}
		return a % b, vm.ErrNone
	}
	panic("unknown operator " + e.op)
}

func genLit() gopter.Gen {
	return gen.Int64Range(0, 4096).Map(func(v int64) *expr {
		return &expr{lit: v}
	})
}

func genExpr(depth int) gopter.Gen {
	if depth <= 0 {
		return genLit()
	}
	return gen.Weighted([]gen.WeightedGen{
		{Weight: 2, Gen: genLit()},
		{Weight: 3, Gen: gen.IntRange(0, len(binaryOps)-1).FlatMap(func(i interface{}) gopter.Gen {
			op := binaryOps[i.(int)]
			return gopter.CombineGens(genExpr(depth-1), genExpr(depth-1)).Map(func(vs []interface{}) *expr {
				return &expr{op: op, left: vs[0].(*expr), right: vs[1].(*expr)}
			})
		}, reflect.TypeOf(&expr{}))},
	})
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestArithmeticMatchesReference(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("compiled arithmetic matches model evaluation", prop.ForAll(
		func(e *expr) bool {
			src := e.String()
			prog, cerr := Compile(src)
			if cerr != nil {
				t.Logf("compile failed for %q: %v", src, cerr)
				return false
			}
			channels := []vm.Value{-7, -7}
			runErr := prog.Run(channels)

			want, wantErr := e.eval()
			if runErr != wantErr {
				t.Logf("%q: error %v, want %v", src, runErr, wantErr)
				return false
			}
			if wantErr != vm.ErrNone {
				// A faulting run must not touch the channels.
				return channels[0] == -7 && channels[1] == -7
			}
			return channels[0] == want && channels[1] == want
		},
		genExpr(4),
	))

	properties.Property("statement termination preserves the broadcast value", prop.ForAll(
		func(e *expr) bool {
			if _, err := e.eval(); err != vm.ErrNone {
				return true
			}
			bare, terminated := make([]vm.Value, 2), make([]vm.Value, 2)

			p1, cerr := Compile(e.String())
			if cerr != nil {
				return false
			}
			p2, cerr := Compile(e.String() + ";")
			if cerr != nil {
				return false
			}
			if p1.Run(bare) != vm.ErrNone || p2.Run(terminated) != vm.ErrNone {
				return false
			}
			return bare[0] == terminated[0]
		},
		genExpr(3),
	))

	properties.Property("compilation is deterministic", prop.ForAll(
		func(e *expr) bool {
			src := e.String()
			p1, cerr := Compile(src)
			if cerr != nil {
				return false
			}
			p2, cerr := Compile(src)
			if cerr != nil {
				return false
			}
			return reflect.DeepEqual(p1.Ops(), p2.Ops())
		},
		genExpr(3),
	))

	properties.TestingRun(t)
}
