// Package bitstream moves single bits to and from byte streams.
//
// Bits are packed most-significant-bit first within each byte, and the last
// byte is padded with zero bits on Close. Because padding is indistinguishable
// from data, a Source must be told how many bits were written.
package bitstream

import (
	"io"

	"github.com/icza/bitio"
)

// A Sink writes bits to an io.Writer and counts them.
// Write errors are sticky; Close reports the first one.
type Sink struct {
	w    *bitio.Writer
	bits uint64
	err  error
}

func NewSink(w io.Writer) *Sink {
	return &Sink{w: bitio.NewWriter(w)}
}

func (s *Sink) WriteBit(bit bool) error {
	if s.err != nil {
		return s.err
	}
	if s.err = s.w.WriteBool(bit); s.err == nil {
		s.bits++
	}
	return s.err
}

// WriteCode writes the low n bits of bits, most significant first.
func (s *Sink) WriteCode(bits uint64, n uint8) error {
	if s.err != nil {
		return s.err
	}
	if n == 0 {
		return nil
	}
	if s.err = s.w.WriteBits(bits, n); s.err == nil {
		s.bits += uint64(n)
	}
	return s.err
}

// Bits returns the number of bits written so far, padding excluded.
func (s *Sink) Bits() uint64 { return s.bits }

// Bytes returns the number of bytes the written bits occupy once padded.
func (s *Sink) Bytes() uint64 { return PaddedBytes(s.bits) }

// Close pads the final byte and flushes. The underlying writer is not closed.
// Close may be called more than once.
func (s *Sink) Close() error {
	if s.w == nil {
		return s.err
	}
	if err := s.w.Close(); s.err == nil {
		s.err = err
	}
	s.w = nil
	return s.err
}

// A Source reads exactly n bits from an io.Reader.
type Source struct {
	r      *bitio.Reader
	remain uint64
	err    error
}

// NewSource returns a Source that yields the first n bits of r.
// If r is an io.ByteReader it is read directly without extra buffering, so
// the caller may keep reading r after the Source is drained.
func NewSource(r io.Reader, n uint64) *Source {
	return &Source{r: bitio.NewReader(r), remain: n}
}

func (s *Source) HasNext() bool { return s.err == nil && s.remain > 0 }

// Remaining returns the number of bits not yet read.
func (s *Source) Remaining() uint64 { return s.remain }

// ReadBit returns the next bit. It returns io.EOF once all n bits have been
// read, and io.ErrUnexpectedEOF if the underlying reader ends early.
func (s *Source) ReadBit() (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.remain == 0 {
		return false, io.EOF
	}
	bit, err := s.r.ReadBool()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		s.err = err
		return false, err
	}
	s.remain--
	return bit, nil
}

// Close skips the padding of the final byte so that the underlying reader
// is positioned after the bit stream.
func (s *Source) Close() error {
	if s.r != nil {
		s.r.Align()
		s.r = nil
	}
	if s.err == io.ErrUnexpectedEOF {
		return s.err
	}
	return nil
}

// PaddedBytes returns the number of whole bytes needed to hold n bits.
func PaddedBytes(n uint64) uint64 {
	return (n + 7) / 8
}
