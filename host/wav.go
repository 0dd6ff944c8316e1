package host

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// WAV export
// ---------------------------------------------------------------------------

// WriteWAV encodes interleaved float samples as a 16-bit PCM RIFF/WAVE
// stream. Samples outside [-1, 1] are clamped.
func WriteWAV(w io.Writer, samples []float32, channels, sampleRate int) error {
	if channels <= 0 {
		return fmt.Errorf("host: invalid channel count %d", channels)
	}

	const bytesPerSample = 2
	dataLen := len(samples) * bytesPerSample
	blockAlign := channels * bytesPerSample

	var header [44]byte
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+dataLen))
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(header[20:], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:], 16) // bits per sample
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(dataLen))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("host: write wav header: %w", err)
	}

	buf := make([]byte, 0, 4096)
	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
		if len(buf) == cap(buf) {
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("host: write wav data: %w", err)
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("host: write wav data: %w", err)
		}
	}
	return nil
}
