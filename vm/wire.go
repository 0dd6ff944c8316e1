package vm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Program snapshots
// ---------------------------------------------------------------------------

// A snapshot captures everything durable about a program: the compiled
// sequence and the persistent memory image. Hosts serialize snapshots into
// preset chunks so a reloaded program resumes with the memory state it had
// when saved.
type snapshot struct {
	Ops []Op    `cbor:"ops"`
	Mem []Value `cbor:"mem"`
}

// cbor encoding uses canonical mode for deterministic output.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalProgram serializes a program's operation sequence and memory image
// to CBOR bytes.
func (p *Program) MarshalProgram() ([]byte, error) {
	s := snapshot{
		Ops: p.ops,
		Mem: p.mem[:],
	}
	return cborEncMode.Marshal(&s)
}

// UnmarshalProgram reconstructs a program from CBOR bytes produced by
// MarshalProgram, restoring both the compiled sequence and the memory
// image exactly as saved.
func UnmarshalProgram(data []byte) (*Program, error) {
	var s snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vm: unmarshal program: %w", err)
	}
	if len(s.Mem) > MemorySize {
		return nil, fmt.Errorf("vm: snapshot memory image has %d slots, limit is %d", len(s.Mem), MemorySize)
	}
	p := NewProgram(s.Ops)
	// Overwrite the seeded memory with the saved image.
	for i := range p.mem {
		p.mem[i] = 0
	}
	copy(p.mem[:], s.Mem)
	return p, nil
}
