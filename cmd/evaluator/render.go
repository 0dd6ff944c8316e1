package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/evaluator/compiler"
	"github.com/chazu/evaluator/host"
	"github.com/chazu/evaluator/vm"
)

var log = commonlog.GetLogger("evaluator")

// handleRenderCommand renders an expression offline into a WAV file.
func handleRenderCommand(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "out.wav", "Output WAV path")
	seconds := fs.Float64("d", 5, "Duration in seconds")
	bits := fs.Int("b", 8, "Bit depth (1-31)")
	rate := fs.Int("r", 44100, "Sample rate")
	channels := fs.Int("c", 2, "Channel count")
	volume := fs.Float64("vol", 0.5, "Linear output gain")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: evaluator render [flags] EXPR")
		os.Exit(1)
	}
	expr := strings.Join(fs.Args(), " ")

	h, err := newHostForExpression(expr, host.Options{
		SampleRate: *rate,
		BitDepth:   *bits,
		Channels:   *channels,
		Volume:     *volume,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	frames := int(*seconds * float64(*rate))
	samples := make([]float32, frames**channels)
	if rerr := h.Render(samples); rerr != vm.ErrNone {
		log.Warningf("runtime error during render: %s", rerr)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()
	if err := host.WriteWAV(f, samples, *channels, *rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	log.Infof("wrote %d frames to %s", frames, *out)
}

// newHostForExpression compiles an expression and loads it into a fresh
// host, formatting compile failures for the terminal.
func newHostForExpression(expr string, opts host.Options) (*host.Host, error) {
	prog, cerr := compiler.Compile(expr)
	if cerr != nil {
		return nil, fmt.Errorf("%s\n%s^\n%s", expr, strings.Repeat(" ", cerr.Offset), cerr.Code)
	}
	h := host.New(opts)
	h.SetProgram(prog)
	return h, nil
}
