package huffman

import "errors"

var (
	// ErrTruncatedStream means the bits ran out in the middle of a code.
	ErrTruncatedStream = errors.New("huffman: truncated stream")
	// ErrCorruptStream means the bits describe a path that is not in the tree.
	ErrCorruptStream = errors.New("huffman: corrupt stream")
)

// BitSource supplies the encoded bits. HasNext reports false once every
// bit that was written has been read; padding is never returned.
type BitSource interface {
	HasNext() bool
	ReadBit() (bool, error)
	Close() error
}

// Decode walks root from the top for every code in src and writes the symbol
// of each leaf reached to dst. It returns the number of symbols written.
//
// The source is closed and dst flushed before Decode returns. If src runs
// out of bits while the walk is below the root, Decode returns
// ErrTruncatedStream. A nil tree decodes nothing.
func Decode(root *Node, src BitSource, dst SymbolWriter) (n int64, err error) {
	defer func() {
		if ferr := dst.Flush(); err == nil {
			err = ferr
		}
		if cerr := src.Close(); err == nil {
			err = cerr
		}
	}()

	if root == nil {
		return 0, nil
	}

	cur := root
	for src.HasNext() {
		bit, err := src.ReadBit()
		if err != nil {
			return n, err
		}
		if bit {
			cur = cur.right
		} else {
			cur = cur.left
		}
		if cur == nil {
			return n, ErrCorruptStream
		}
		if cur.IsLeaf() {
			if err := dst.WriteSymbol(cur.symbol); err != nil {
				return n, err
			}
			n++
			cur = root
		}
	}
	if cur != root {
		return n, ErrTruncatedStream
	}
	return n, nil
}
