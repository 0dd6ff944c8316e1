// Package preset handles named expression programs and their control
// settings, persisted as TOML bank files. The editor layer loads a bank,
// hands expressions to the compiler, and writes the bank back when the
// user saves; the factory bank ships a set of known-good programs.
package preset

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Preset is one named program: the expression text plus the control
// settings the host applies before rendering it.
type Preset struct {
	Name       string  `toml:"name"`
	Expression string  `toml:"expression"`
	BitDepth   int     `toml:"bit-depth"`
	Volume     float64 `toml:"volume"`
}

// Bank is an ordered collection of presets.
type Bank struct {
	Presets []Preset `toml:"preset"`
}

// Load parses a TOML bank file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var b Bank
	if err := toml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &b, nil
}

// Save writes the bank as TOML.
func (b *Bank) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(b); err != nil {
		return fmt.Errorf("encode bank: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// Find returns the preset with the given name.
func (b *Bank) Find(name string) (*Preset, bool) {
	for i := range b.Presets {
		if b.Presets[i].Name == name {
			return &b.Presets[i], true
		}
	}
	return nil, false
}

// Factory returns the built-in bank. Every factory expression compiles
// against the current grammar.
func Factory() *Bank {
	return &Bank{Presets: []Preset{
		{
			Name:       "saw you",
			Expression: "t*128/(r+1)&r",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "sine and dandy",
			Expression: "$(t*64)",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "overtone shuffle",
			Expression: "(t*5&t>>7)|(t*3&t>>10)",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "glitch pilot",
			Expression: "t*(42&t>>10)",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "note to self",
			Expression: "t*F(n)&r",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "square meal",
			Expression: "#(t*32)/2+T(t*48)/2",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "stereo creep",
			Expression: "[0]=t*3&r; [1]=t*5&r",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "counting sheep",
			Expression: "a=a+1; $(a/4)",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "memory lane",
			Expression: "@7=@7+3; @7>>2&r",
			BitDepth:   8,
			Volume:     0.5,
		},
		{
			Name:       "fork in the road",
			Expression: "t>>9&1?t*4&r:T(t*2)",
			BitDepth:   8,
			Volume:     0.5,
		},
	}}
}
