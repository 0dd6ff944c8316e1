// Evaluator CLI - compile, inspect, and render bytebeat expression programs
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: evaluator [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  check EXPR             Compile an expression and print its instructions\n")
		fmt.Fprintf(os.Stderr, "  render [flags] EXPR    Render an expression to a WAV file\n")
		fmt.Fprintf(os.Stderr, "  play [flags] EXPR      Play an expression through the default audio device\n")
		fmt.Fprintf(os.Stderr, "  presets [subcommand]   List, show, or write preset banks\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  evaluator check 't*(42&t>>10)'\n")
		fmt.Fprintf(os.Stderr, "  evaluator render -o out.wav -d 10 't*5&t>>7|t*3&t>>10'\n")
		fmt.Fprintf(os.Stderr, "  evaluator play -b 8 '$(t*64)'\n")
		fmt.Fprintf(os.Stderr, "  evaluator presets list\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	switch args[0] {
	case "check":
		handleCheckCommand(args[1:])
	case "render":
		handleRenderCommand(args[1:])
	case "play":
		handlePlayCommand(args[1:])
	case "presets":
		handlePresetsCommand(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
}
