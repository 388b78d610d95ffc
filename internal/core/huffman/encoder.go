package huffman

import (
	"errors"
	"fmt"
	"io"
)

var ErrUnknownSymbol = errors.New("huffman: symbol not in code table")

// UnknownSymbolError is returned by Encode when the source holds a symbol
// the table was not built for.
type UnknownSymbolError struct {
	Symbol Symbol
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("huffman: symbol %#x not in code table", e.Symbol)
}

func (e *UnknownSymbolError) Is(target error) bool { return target == ErrUnknownSymbol }

// BitSink receives the encoded bits. Close flushes any partial byte.
type BitSink interface {
	WriteBit(bit bool) error
	Close() error
}

type codeWriter interface {
	WriteCode(bits uint64, n uint8) error
}

// Encode reads src to the end and writes the code of every symbol to sink.
// The sink is closed before Encode returns, whether or not it succeeds.
//
// The table must have been generated from the frequencies of this very
// source; a symbol without a code aborts with an *UnknownSymbolError.
// A nil table encodes an empty source to nothing.
func Encode(t Table, src SymbolReader, sink BitSink) (err error) {
	defer func() {
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
	}()

	cw, fast := sink.(codeWriter)
	for {
		s, rerr := src.ReadSymbol()
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return rerr
		}
		c, ok := t[s]
		if !ok {
			return &UnknownSymbolError{Symbol: s}
		}
		if fast {
			if err := cw.WriteCode(c.Bits, c.Len); err != nil {
				return err
			}
			continue
		}
		for i := 0; i < int(c.Len); i++ {
			if err := sink.WriteBit(c.Bit(i)); err != nil {
				return err
			}
		}
	}
}
