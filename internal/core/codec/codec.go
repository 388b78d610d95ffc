// Package codec frames Huffman-coded data into a self-describing container.
//
// A container is:
//
//	magic    "HUFC"
//	version  1 byte
//	alphabet 1 byte
//	count    uvarint, number of distinct symbols
//	count x  uvarint symbol, uvarint frequency (ascending symbols)
//	bits     uvarint, exact number of payload bits
//	payload  ceil(bits/8) bytes, MSB-first, zero padded
//
// The decoder rebuilds the code tree from the frequency table; tree
// construction is deterministic, so it obtains the very tree used to encode.
package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/DODOEX/huffcodec/internal/core/bitstream"
	"github.com/DODOEX/huffcodec/internal/core/huffman"
)

const (
	Magic   = "HUFC"
	Version = 1
)

var (
	ErrInvalidHeader      = errors.New("codec: invalid header")
	ErrUnsupportedVersion = errors.New("codec: unsupported version")
)

// Stats describes one compression or decompression.
type Stats struct {
	Alphabet        huffman.Alphabet `json:"alphabet"`
	Symbols         uint64           `json:"symbols"`  // symbols in the original data
	Distinct        int              `json:"distinct"` // distinct symbols
	OriginalBytes   int64            `json:"originalBytes"`
	EncodedBits     uint64           `json:"encodedBits"`
	CompressedBytes int64            `json:"compressedBytes"` // header included
}

// Ratio returns CompressedBytes/OriginalBytes, or 0 for empty input.
func (s Stats) Ratio() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.CompressedBytes) / float64(s.OriginalBytes)
}

// Compress reads src twice, once to count symbols and once to encode them,
// and writes a container to dst.
func Compress(src io.ReadSeeker, dst io.Writer, alphabet huffman.Alphabet) (Stats, error) {
	stats := Stats{Alphabet: alphabet}

	start, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return stats, err
	}
	cr := &countingReader{r: src}
	freqs, err := huffman.CountFrequencies(huffman.NewSymbolReader(cr, alphabet))
	if err != nil {
		return stats, fmt.Errorf("count frequencies: %w", err)
	}
	stats.OriginalBytes = cr.n

	return encode(src, start, dst, freqs, stats)
}

// encode writes the container header for freqs, rewinds src to start and
// encodes it as the payload.
func encode(src io.ReadSeeker, start int64, dst io.Writer, freqs huffman.Frequencies, stats Stats) (Stats, error) {
	alphabet := stats.Alphabet
	stats.Symbols = freqs.Total()
	stats.Distinct = len(freqs)

	root := huffman.BuildTree(freqs)
	table, err := huffman.GenerateTable(root)
	if err != nil {
		return stats, err
	}
	stats.EncodedBits = table.EncodedBits(freqs)

	cw := &countingWriter{w: dst}
	bw := bufio.NewWriter(cw)
	if err := writeHeader(bw, alphabet, freqs, stats.EncodedBits); err != nil {
		return stats, err
	}

	if _, err := src.Seek(start, io.SeekStart); err != nil {
		return stats, err
	}
	sink := bitstream.NewSink(bw)
	if err := huffman.Encode(table, huffman.NewSymbolReader(src, alphabet), sink); err != nil {
		return stats, fmt.Errorf("encode: %w", err)
	}
	if sink.Bits() != stats.EncodedBits {
		// the source changed between the two passes
		return stats, fmt.Errorf("codec: wrote %d bits, expected %d", sink.Bits(), stats.EncodedBits)
	}
	if err := bw.Flush(); err != nil {
		return stats, err
	}
	stats.CompressedBytes = cw.n
	return stats, nil
}

// Decompress reads a container from src and writes the original data to dst.
func Decompress(src io.Reader, dst io.Writer) (Stats, error) {
	var stats Stats

	cr := &countingReader{r: src}
	br := bufio.NewReader(cr)
	h, err := readHeader(br)
	if err != nil {
		return stats, err
	}
	stats.Alphabet = h.alphabet
	stats.Symbols = h.freqs.Total()
	stats.Distinct = len(h.freqs)
	stats.EncodedBits = h.bits

	root := huffman.BuildTree(h.freqs)
	if root == nil && h.bits != 0 {
		return stats, fmt.Errorf("%w: %d payload bits without symbols", huffman.ErrCorruptStream, h.bits)
	}

	cw := &countingWriter{w: dst}
	source := bitstream.NewSource(br, h.bits)
	n, err := huffman.Decode(root, source, huffman.NewSymbolWriter(cw, h.alphabet))
	stats.OriginalBytes = cw.n
	stats.CompressedBytes = cr.n - int64(br.Buffered())
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return stats, fmt.Errorf("%w: payload shorter than %d bits", huffman.ErrTruncatedStream, h.bits)
	}
	if err != nil {
		return stats, err
	}
	if uint64(n) != stats.Symbols {
		return stats, fmt.Errorf("%w: decoded %d symbols, expected %d", huffman.ErrCorruptStream, n, stats.Symbols)
	}
	return stats, nil
}

// CompressBytes compresses data in memory.
func CompressBytes(data []byte, alphabet huffman.Alphabet) ([]byte, Stats, error) {
	var buf bytes.Buffer
	stats, err := Compress(bytes.NewReader(data), &buf, alphabet)
	if err != nil {
		return nil, stats, err
	}
	return buf.Bytes(), stats, nil
}

// DecompressBytes decompresses a container held in memory.
func DecompressBytes(data []byte) ([]byte, Stats, error) {
	var buf bytes.Buffer
	stats, err := Decompress(bytes.NewReader(data), &buf)
	if err != nil {
		return nil, stats, err
	}
	return buf.Bytes(), stats, nil
}

type header struct {
	alphabet huffman.Alphabet
	freqs    huffman.Frequencies
	bits     uint64
}

func writeHeader(w *bufio.Writer, alphabet huffman.Alphabet, freqs huffman.Frequencies, bits uint64) error {
	var buf [binary.MaxVarintLen64]byte
	putUvarint := func(v uint64) error {
		_, err := w.Write(buf[:binary.PutUvarint(buf[:], v)])
		return err
	}

	if _, err := w.WriteString(Magic); err != nil {
		return err
	}
	if err := w.WriteByte(Version); err != nil {
		return err
	}
	if err := w.WriteByte(byte(alphabet)); err != nil {
		return err
	}
	if err := putUvarint(uint64(len(freqs))); err != nil {
		return err
	}
	for _, s := range freqs.Symbols() {
		if err := putUvarint(uint64(s)); err != nil {
			return err
		}
		if err := putUvarint(freqs[s]); err != nil {
			return err
		}
	}
	return putUvarint(bits)
}

// maxSymbols bounds the symbol count read from a header: no alphabet has more
// distinct symbols than there are Unicode code points.
const maxSymbols = 0x110000

func readHeader(r *bufio.Reader) (*header, error) {
	var magic [len(Magic)]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if string(magic[:]) != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, magic[:])
	}
	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	a, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	h := &header{alphabet: huffman.Alphabet(a)}
	if h.alphabet != huffman.Bytes && h.alphabet != huffman.Runes {
		return nil, fmt.Errorf("%w: unknown alphabet %d", ErrInvalidHeader, a)
	}

	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: symbol count: %v", ErrInvalidHeader, err)
	}
	if count > maxSymbols {
		return nil, fmt.Errorf("%w: %d symbols", ErrInvalidHeader, count)
	}
	if count > 0 {
		h.freqs = make(huffman.Frequencies, count)
	}
	prev := int64(-1)
	for i := uint64(0); i < count; i++ {
		s, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: symbol: %v", ErrInvalidHeader, err)
		}
		f, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: frequency: %v", ErrInvalidHeader, err)
		}
		if int64(s) <= prev || s > 0xffffffff || f == 0 {
			return nil, fmt.Errorf("%w: bad entry %d:%d", ErrInvalidHeader, s, f)
		}
		if h.alphabet == huffman.Bytes && s > 0xff {
			return nil, fmt.Errorf("%w: symbol %#x in byte alphabet", ErrInvalidHeader, s)
		}
		prev = int64(s)
		h.freqs[huffman.Symbol(s)] = f
	}
	if h.bits, err = binary.ReadUvarint(r); err != nil {
		return nil, fmt.Errorf("%w: bit count: %v", ErrInvalidHeader, err)
	}
	return h, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
