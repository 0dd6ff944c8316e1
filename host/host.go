// Package host drives a compiled expression program at audio rate. It owns
// the pseudo-variables the language exposes to running programs (time,
// milliseconds, bit-depth range, sample rate, note and velocity), invokes
// the VM once per sample frame, and maps the integer channel values into
// normalized float samples through the bit-depth mask.
package host

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/evaluator/vm"
)

var log = commonlog.GetLogger("evaluator.host")

// Pseudo-variables published to the running program.
const (
	timeVar     = 't' // sample counter, incremented once per frame
	millisVar   = 'm' // elapsed milliseconds derived from the counter
	noteVar     = 'n' // current note as a semitone offset
	velocityVar = 'v' // current note velocity
)

// Options configures a Host. Zero fields fall back to defaults.
type Options struct {
	SampleRate int     // frames per second (default 44100)
	BitDepth   int     // output quantization in bits, 1-31 (default 8)
	Channels   int     // channel buffer width (default 2)
	Volume     float64 // linear output gain (default 1.0)
}

// Host renders a program into float sample frames. It is single-threaded
// by contract: the audio callback owns it, and program swaps must be
// serialized against Render calls.
type Host struct {
	program *vm.Program

	sampleRate int
	bits       int
	rng        vm.Value // 2^bits - 1, mirrored into the program's r slot
	channels   int
	volume     float64

	t       vm.Value
	scratch []vm.Value
	frame   []float32
	lastErr vm.RuntimeError
}

// New creates a host with no program loaded. Rendering without a program
// produces silence.
func New(opts Options) *Host {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.BitDepth <= 0 {
		opts.BitDepth = 8
	}
	if opts.Channels <= 0 {
		opts.Channels = 2
	}
	if opts.Volume == 0 {
		opts.Volume = 1.0
	}
	h := &Host{
		sampleRate: opts.SampleRate,
		channels:   opts.Channels,
		volume:     opts.Volume,
		scratch:    make([]vm.Value, opts.Channels),
		frame:      make([]float32, opts.Channels),
	}
	h.setBits(opts.BitDepth)
	return h
}

func (h *Host) setBits(bits int) {
	if bits < 1 {
		bits = 1
	}
	if bits > 31 {
		bits = 31
	}
	h.bits = bits
	h.rng = vm.Value(1)<<bits - 1
}

// SetProgram swaps in a newly compiled program and publishes the host's
// sample rate and range into its memory. The previous program, if any, is
// discarded; callers keep their last working program themselves when a
// recompile fails.
func (h *Host) SetProgram(p *vm.Program) {
	h.program = p
	if p != nil {
		p.SetVar(vm.SampleRateVar, vm.Value(h.sampleRate))
		p.SetVar(vm.RangeVar, h.rng)
		log.Infof("program loaded: %d instructions", p.InstructionCount())
	}
	h.lastErr = vm.ErrNone
}

// Program returns the currently loaded program, or nil.
func (h *Host) Program() *vm.Program {
	return h.program
}

// SetBitDepth changes the output quantization and republishes the range
// pseudo-variable.
func (h *Host) SetBitDepth(bits int) {
	h.setBits(bits)
	if h.program != nil {
		h.program.SetVar(vm.RangeVar, h.rng)
	}
}

// SetNote publishes a note and velocity to the program, for expressions
// that shape pitch with the frequency operator (for example `t*F(n)&r`).
func (h *Host) SetNote(note, velocity vm.Value) {
	if h.program != nil {
		h.program.SetVar(noteVar, note)
		h.program.SetVar(velocityVar, velocity)
	}
}

// ResetTime rewinds the sample counter, as on transport restart.
func (h *Host) ResetTime() {
	h.t = 0
}

// SampleRate returns the configured frame rate.
func (h *Host) SampleRate() int {
	return h.sampleRate
}

// Channels returns the channel buffer width.
func (h *Host) Channels() int {
	return h.channels
}

// LastError returns the runtime error from the most recent frame that
// faulted, for console display; rendering continues past faulting frames.
func (h *Host) LastError() vm.RuntimeError {
	return h.lastErr
}

// toSample folds a channel value into the bit-depth range and maps it to
// [-1, 1].
func (h *Host) toSample(v vm.Value) float32 {
	w := uint64(v) & uint64(h.rng)
	s := 2*float64(w)/float64(h.rng) - 1
	return float32(s * h.volume)
}

// Step renders a single frame into frame, which must hold Channels()
// samples. A frame whose Run faults renders as silence, and the error is
// retained for LastError; execution state stays valid for the next frame.
func (h *Host) Step(frame []float32) vm.RuntimeError {
	if h.program == nil {
		for i := range frame {
			frame[i] = 0
		}
		return vm.ErrNone
	}

	h.program.SetVar(timeVar, h.t)
	h.program.SetVar(millisVar, h.t*1000/vm.Value(h.sampleRate))
	h.t++

	for i := range h.scratch {
		h.scratch[i] = 0
	}
	if err := h.program.Run(h.scratch); err != vm.ErrNone {
		h.lastErr = err
		for i := range frame {
			frame[i] = 0
		}
		return err
	}
	for i := range frame {
		frame[i] = h.toSample(h.scratch[i])
	}
	return vm.ErrNone
}

// Render fills an interleaved buffer with len(out)/Channels() frames and
// returns the error of the last faulting frame, if any.
func (h *Host) Render(out []float32) vm.RuntimeError {
	err := vm.ErrNone
	n := len(out) / h.channels
	for f := 0; f < n; f++ {
		if e := h.Step(out[f*h.channels : (f+1)*h.channels]); e != vm.ErrNone {
			err = e
		}
	}
	return err
}

// RenderChannels fills per-channel buffers of equal length, the shape
// portaudio callbacks hand out.
func (h *Host) RenderChannels(out [][]float32) vm.RuntimeError {
	if len(out) == 0 {
		return vm.ErrNone
	}
	err := vm.ErrNone
	for f := range out[0] {
		if e := h.Step(h.frame); e != vm.ErrNone {
			err = e
		}
		for c := range out {
			out[c][f] = h.frame[c%h.channels]
		}
	}
	return err
}
