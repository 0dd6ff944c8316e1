package main

import (
	"fmt"
	"os"

	"github.com/chazu/evaluator/compiler"
	"github.com/chazu/evaluator/preset"
)

// handlePresetsCommand lists and inspects preset banks.
// Usage:
//
//	evaluator presets list [BANK]     # names in the factory or given bank
//	evaluator presets show NAME       # print a preset and compile-check it
//	evaluator presets init PATH       # write the factory bank to PATH
func handlePresetsCommand(args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		bank := preset.Factory()
		if len(args) > 1 {
			loaded, err := preset.Load(args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading bank: %v\n", err)
				os.Exit(1)
			}
			bank = loaded
		}
		for _, p := range bank.Presets {
			fmt.Printf("%-20s %s\n", p.Name, p.Expression)
		}

	case "show":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: evaluator presets show NAME")
			os.Exit(1)
		}
		p, ok := preset.Factory().Find(args[1])
		if !ok {
			fmt.Fprintf(os.Stderr, "No preset named %q\n", args[1])
			os.Exit(1)
		}
		fmt.Printf("name:       %s\n", p.Name)
		fmt.Printf("expression: %s\n", p.Expression)
		fmt.Printf("bit depth:  %d\n", p.BitDepth)
		fmt.Printf("volume:     %g\n", p.Volume)
		if _, cerr := compiler.Compile(p.Expression); cerr != nil {
			fmt.Printf("compile:    %s\n", cerr)
		} else {
			fmt.Printf("compile:    ok\n")
		}

	case "init":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: evaluator presets init PATH")
			os.Exit(1)
		}
		if err := preset.Factory().Save(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing bank: %v\n", err)
			os.Exit(1)
		}
		log.Infof("wrote factory bank to %s", args[1])

	default:
		fmt.Fprintf(os.Stderr, "Unknown presets subcommand: %s\n", args[0])
		os.Exit(1)
	}
}
