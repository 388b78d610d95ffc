package huffman

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// A Symbol is a unit of the alphabet being compressed. It holds either a byte
// or a Unicode code point, depending on the Alphabet used to read the source.
type Symbol = uint32

// Alphabet selects how a byte stream is split into symbols.
type Alphabet uint8

const (
	// Bytes treats every byte as a symbol. It is lossless for any input.
	Bytes Alphabet = iota
	// Runes treats every UTF-8 encoded code point as a symbol.
	Runes
)

var ErrInvalidUTF8 = errors.New("huffman: invalid utf-8 in rune source")

func (a Alphabet) String() string {
	switch a {
	case Bytes:
		return "bytes"
	case Runes:
		return "runes"
	}
	return fmt.Sprintf("alphabet(%d)", uint8(a))
}

// ParseAlphabet is the inverse of Alphabet.String.
func ParseAlphabet(s string) (Alphabet, error) {
	switch s {
	case "", "bytes", "byte":
		return Bytes, nil
	case "runes", "rune", "utf8", "text":
		return Runes, nil
	}
	return 0, fmt.Errorf("huffman: unknown alphabet %q", s)
}

func (a Alphabet) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Alphabet) UnmarshalText(text []byte) error {
	v, err := ParseAlphabet(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// SymbolReader is a sequential source of symbols. ReadSymbol returns io.EOF
// once the source is exhausted.
type SymbolReader interface {
	ReadSymbol() (Symbol, error)
}

// SymbolWriter is a sequential sink of symbols.
type SymbolWriter interface {
	WriteSymbol(s Symbol) error
	Flush() error
}

// NewSymbolReader returns a SymbolReader splitting r according to a.
func NewSymbolReader(r io.Reader, a Alphabet) SymbolReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	if a == Runes {
		return &runeReader{r: br}
	}
	return &byteReader{r: br}
}

// NewSymbolWriter returns a SymbolWriter that writes symbols to w according to a.
// Flush must be called to push buffered output to w.
func NewSymbolWriter(w io.Writer, a Alphabet) SymbolWriter {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	if a == Runes {
		return &runeWriter{w: bw}
	}
	return &byteWriter{w: bw}
}

type byteReader struct {
	r *bufio.Reader
}

func (b *byteReader) ReadSymbol() (Symbol, error) {
	c, err := b.r.ReadByte()
	if err != nil {
		return 0, err
	}
	return Symbol(c), nil
}

type runeReader struct {
	r *bufio.Reader
}

func (rr *runeReader) ReadSymbol() (Symbol, error) {
	c, size, err := rr.r.ReadRune()
	if err != nil {
		return 0, err
	}
	// ReadRune reports malformed input as a 1-byte RuneError, which would not
	// survive a round trip.
	if c == utf8.RuneError && size == 1 {
		return 0, ErrInvalidUTF8
	}
	return Symbol(c), nil
}

type byteWriter struct {
	w *bufio.Writer
}

func (b *byteWriter) WriteSymbol(s Symbol) error {
	if s > 0xff {
		return fmt.Errorf("huffman: symbol %#x does not fit in a byte", s)
	}
	return b.w.WriteByte(byte(s))
}

func (b *byteWriter) Flush() error { return b.w.Flush() }

type runeWriter struct {
	w *bufio.Writer
}

func (rw *runeWriter) WriteSymbol(s Symbol) error {
	if !utf8.ValidRune(rune(s)) {
		return fmt.Errorf("huffman: symbol %#x is not a valid rune", s)
	}
	_, err := rw.w.WriteRune(rune(s))
	return err
}

func (rw *runeWriter) Flush() error { return rw.w.Flush() }
