package huffman

import (
	"errors"
	"io"
	"slices"
)

// Frequencies maps every symbol seen in a source to its occurrence count.
// Symbols absent from the source are absent from the map, so every count is >= 1.
type Frequencies map[Symbol]uint64

// CountFrequencies reads r to the end and counts each distinct symbol.
// An empty source yields nil Frequencies and a nil error: there is nothing to encode.
func CountFrequencies(r SymbolReader) (Frequencies, error) {
	var freqs Frequencies
	for {
		s, err := r.ReadSymbol()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if freqs == nil {
			freqs = make(Frequencies)
		}
		freqs[s]++
	}
	return freqs, nil
}

// Symbols returns the symbols of f in ascending order.
func (f Frequencies) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(f))
	for s := range f {
		syms = append(syms, s)
	}
	slices.Sort(syms)
	return syms
}

// Total returns the number of symbols counted.
func (f Frequencies) Total() uint64 {
	var n uint64
	for _, c := range f {
		n += c
	}
	return n
}
