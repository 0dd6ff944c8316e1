package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chazu/evaluator/compiler"
)

// handleCheckCommand compiles an expression and prints the instruction
// listing, or the compile error with a caret at the failing offset.
func handleCheckCommand(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: evaluator check EXPR")
		os.Exit(1)
	}
	expr := strings.Join(args, " ")

	prog, cerr := compiler.Compile(expr)
	if cerr != nil {
		fmt.Fprintln(os.Stderr, expr)
		fmt.Fprintf(os.Stderr, "%s^\n", strings.Repeat(" ", cerr.Offset))
		fmt.Fprintln(os.Stderr, cerr.Code)
		os.Exit(1)
	}

	for i, op := range prog.Ops() {
		fmt.Printf("%4d  %s\n", i, op)
	}
}
