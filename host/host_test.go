package host

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/chazu/evaluator/compiler"
	"github.com/chazu/evaluator/vm"
)

func loadExpression(t *testing.T, h *Host, src string) {
	t.Helper()
	prog, cerr := compiler.Compile(src)
	if cerr != nil {
		t.Fatalf("compile %q: %v", src, cerr)
	}
	h.SetProgram(prog)
}

// expected mirrors the host's value-to-sample mapping.
func expected(v vm.Value, rng uint64, volume float64) float32 {
	w := uint64(v) & rng
	return float32((2*float64(w)/float64(rng) - 1) * volume)
}

func TestStepMaskedRamp(t *testing.T) {
	h := New(Options{Volume: 1})
	loadExpression(t, h, "t&r")

	frame := make([]float32, h.Channels())
	for tick := vm.Value(0); tick < 600; tick++ {
		if err := h.Step(frame); err != vm.ErrNone {
			t.Fatalf("tick %d: %v", tick, err)
		}
		want := expected(tick&255, 255, 1)
		if frame[0] != want || frame[1] != want {
			t.Fatalf("tick %d: frame = %v, want %v on both channels", tick, frame, want)
		}
	}
}

func TestStereoChannelsDiverge(t *testing.T) {
	h := New(Options{Volume: 1})
	loadExpression(t, h, "[0]=t*3&r; [1]=t*5&r")

	frame := make([]float32, 2)
	diverged := false
	for tick := 0; tick < 100; tick++ {
		if err := h.Step(frame); err != vm.ErrNone {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if frame[0] != frame[1] {
			diverged = true
		}
	}
	if !diverged {
		t.Fatal("explicit channel writes never diverged")
	}
}

func TestStepRuntimeErrorRendersSilence(t *testing.T) {
	h := New(Options{Volume: 1})
	loadExpression(t, h, "5/0")

	frame := []float32{0.5, 0.5}
	if err := h.Step(frame); err != vm.ErrDivideByZero {
		t.Fatalf("Step = %v, want %v", err, vm.ErrDivideByZero)
	}
	if frame[0] != 0 || frame[1] != 0 {
		t.Fatalf("faulting frame = %v, want silence", frame)
	}
	if h.LastError() != vm.ErrDivideByZero {
		t.Fatalf("LastError = %v", h.LastError())
	}
}

func TestNoProgramRendersSilence(t *testing.T) {
	h := New(Options{})
	out := []float32{1, 1, 1, 1}
	if err := h.Render(out); err != vm.ErrNone {
		t.Fatalf("Render: %v", err)
	}
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d = %f, want 0", i, s)
		}
	}
}

func TestBitDepthPublishesRange(t *testing.T) {
	h := New(Options{Volume: 1})
	loadExpression(t, h, "r")

	frame := make([]float32, 2)
	if err := h.Step(frame); err != vm.ErrNone {
		t.Fatalf("Step: %v", err)
	}
	if want := expected(255, 255, 1); frame[0] != want {
		t.Fatalf("8-bit frame = %v, want %v", frame[0], want)
	}

	h.SetBitDepth(4)
	if err := h.Step(frame); err != vm.ErrNone {
		t.Fatalf("Step: %v", err)
	}
	if want := expected(15, 15, 1); frame[0] != want {
		t.Fatalf("4-bit frame = %v, want %v", frame[0], want)
	}
}

func TestResetTime(t *testing.T) {
	h := New(Options{Volume: 1})
	loadExpression(t, h, "t&r")

	first := make([]float32, 2)
	frame := make([]float32, 2)
	h.Step(first)
	for i := 0; i < 10; i++ {
		h.Step(frame)
	}
	h.ResetTime()
	h.Step(frame)
	if frame[0] != first[0] {
		t.Fatalf("frame after reset = %v, want %v", frame[0], first[0])
	}
}

func TestSetNote(t *testing.T) {
	h := New(Options{Volume: 1})
	loadExpression(t, h, "n")

	h.SetNote(60, 100)
	frame := make([]float32, 2)
	if err := h.Step(frame); err != vm.ErrNone {
		t.Fatalf("Step: %v", err)
	}
	if want := expected(60, 255, 1); frame[0] != want {
		t.Fatalf("note frame = %v, want %v", frame[0], want)
	}
}

func TestRenderChannels(t *testing.T) {
	h := New(Options{Volume: 1})
	loadExpression(t, h, "t&r")

	out := [][]float32{make([]float32, 64), make([]float32, 64)}
	if err := h.RenderChannels(out); err != vm.ErrNone {
		t.Fatalf("RenderChannels: %v", err)
	}
	for f := 0; f < 64; f++ {
		want := expected(vm.Value(f)&255, 255, 1)
		if out[0][f] != want || out[1][f] != want {
			t.Fatalf("frame %d = %v/%v, want %v", f, out[0][f], out[1][f], want)
		}
	}
}

func TestWriteWAV(t *testing.T) {
	var buf bytes.Buffer
	samples := []float32{0, 0.5, -0.5, 2, -2, 1}
	if err := WriteWAV(&buf, samples, 2, 44100); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	data := buf.Bytes()
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("encoded %d bytes, want %d", len(data), 44+len(samples)*2)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint16(data[22:]); got != 2 {
		t.Fatalf("channel count = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:]); got != 44100 {
		t.Fatalf("sample rate = %d, want 44100", got)
	}

	// Clamped samples encode as full-scale PCM.
	if got := int16(binary.LittleEndian.Uint16(data[44+3*2:])); got != 32767 {
		t.Fatalf("over-range sample = %d, want 32767", got)
	}
	if got := int16(binary.LittleEndian.Uint16(data[44+4*2:])); got != -32767 {
		t.Fatalf("under-range sample = %d, want -32767", got)
	}
}
