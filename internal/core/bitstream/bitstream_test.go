package bitstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
)

func TestSinkBitOrder(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)
	for _, c := range "1011" {
		if err := s.WriteBit(c == '1'); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.WriteCode(0b110010, 6); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if got := s.Bits(); got != 10 {
		t.Errorf("Bits() = %d, want 10", got)
	}
	if got, want := binaryString(buf.Bytes()), "10111100:10000000"; got != want {
		t.Errorf("\ngot  %s\nwant %s", got, want)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func binaryString(b []byte) string {
	var ss []string
	for _, c := range b {
		ss = append(ss, fmt.Sprintf("%08b", c))
	}
	return strings.Join(ss, ":")
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 100; iter++ {
		n := rng.Intn(200)
		want := make([]bool, n)
		var buf bytes.Buffer
		s := NewSink(&buf)
		for i := range want {
			want[i] = rng.Intn(2) == 1
			if err := s.WriteBit(want[i]); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
		if got := uint64(buf.Len()); got != s.Bytes() || got != PaddedBytes(uint64(n)) {
			t.Fatalf("n=%d: %d bytes written, Bytes()=%d", n, got, s.Bytes())
		}

		src := NewSource(bytes.NewReader(buf.Bytes()), s.Bits())
		for i := 0; src.HasNext(); i++ {
			bit, err := src.ReadBit()
			if err != nil {
				t.Fatalf("n=%d bit %d: %v", n, i, err)
			}
			if bit != want[i] {
				t.Fatalf("n=%d bit %d: got %t", n, i, bit)
			}
		}
		if src.Remaining() != 0 {
			t.Errorf("n=%d: %d bits left", n, src.Remaining())
		}
		if _, err := src.ReadBit(); err != io.EOF {
			t.Errorf("n=%d: read past end: %v, want io.EOF", n, err)
		}
	}
}

func TestSourceIgnoresPadding(t *testing.T) {
	// Three data bits; the five padding bits must never be seen.
	src := NewSource(bytes.NewReader([]byte{0b10100000}), 3)
	var got []bool
	for src.HasNext() {
		bit, err := src.ReadBit()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, bit)
	}
	if len(got) != 3 || !got[0] || got[1] || !got[2] {
		t.Errorf("got %v", got)
	}
}

func TestSourceShortInput(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0xff}), 12)
	var err error
	for src.HasNext() {
		if _, err = src.ReadBit(); err != nil {
			break
		}
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF", err)
	}
	if err := src.Close(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Close() = %v", err)
	}
}

func TestSourceLeavesReaderAligned(t *testing.T) {
	r := bytes.NewReader([]byte{0b11000000, 'x'})
	src := NewSource(r, 2)
	for src.HasNext() {
		if _, err := src.ReadBit(); err != nil {
			t.Fatal(err)
		}
	}
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := r.ReadByte()
	if err != nil || b != 'x' {
		t.Errorf("next byte %q, %v; want 'x'", b, err)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSinkStickyError(t *testing.T) {
	s := NewSink(failWriter{})
	for i := 0; i < 64; i++ {
		s.WriteBit(true)
	}
	if err := s.Close(); err == nil || err.Error() != "disk full" {
		t.Errorf("Close() = %v, want disk full", err)
	}
}
