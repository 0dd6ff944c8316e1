package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/gordonklaus/portaudio"

	"github.com/chazu/evaluator/host"
)

// handlePlayCommand streams an expression through the default output
// device until interrupted.
func handlePlayCommand(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	bits := fs.Int("b", 8, "Bit depth (1-31)")
	rate := fs.Int("r", 44100, "Sample rate")
	volume := fs.Float64("vol", 0.5, "Linear output gain")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: evaluator play [flags] EXPR")
		os.Exit(1)
	}
	expr := strings.Join(fs.Args(), " ")

	h, err := newHostForExpression(expr, host.Options{
		SampleRate: *rate,
		BitDepth:   *bits,
		Channels:   2,
		Volume:     *volume,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := portaudio.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	stream, err := portaudio.OpenDefaultStream(0, h.Channels(), float64(*rate), 0, func(out [][]float32) {
		h.RenderChannels(out)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stream: %v\n", err)
		os.Exit(1)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting stream: %v\n", err)
		os.Exit(1)
	}
	defer stream.Stop()

	log.Infof("playing %q at %d Hz, ^C to stop", expr, *rate)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}
