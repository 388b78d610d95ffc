package huffman

import (
	"errors"
	"strings"
)

// MaxCodeLen is the longest code a Table can hold.
const MaxCodeLen = 64

var ErrCodeTooLong = errors.New("huffman: code longer than 64 bits")

// A Code is a bit string. The first bit of the code is the most significant
// of the low Len bits of Bits.
type Code struct {
	Bits uint64
	Len  uint8
}

// Bit returns the i'th bit of c, counting from the start of the code.
func (c Code) Bit(i int) bool {
	return c.Bits>>(int(c.Len)-1-i)&1 == 1
}

// HasPrefix reports whether p is a prefix of c.
func (c Code) HasPrefix(p Code) bool {
	if p.Len > c.Len {
		return false
	}
	return c.Bits>>(c.Len-p.Len) == p.Bits
}

func (c Code) String() string {
	var sb strings.Builder
	for i := 0; i < int(c.Len); i++ {
		if c.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (c Code) appendBit(one bool) Code {
	c.Bits <<= 1
	if one {
		c.Bits |= 1
	}
	c.Len++
	return c
}

// A Table maps each symbol of a code tree to its code.
type Table map[Symbol]Code

// GenerateTable walks root depth-first, appending 0 when descending left and
// 1 when descending right, and records the path to every leaf.
// A nil tree yields a nil Table.
func GenerateTable(root *Node) (Table, error) {
	if root == nil {
		return nil, nil
	}
	t := make(Table)
	if err := t.walk(root, Code{}); err != nil {
		return nil, err
	}
	return t, nil
}

func (t Table) walk(n *Node, c Code) error {
	if n.IsLeaf() {
		t[n.symbol] = c
		return nil
	}
	if c.Len == MaxCodeLen {
		return ErrCodeTooLong
	}
	if n.left != nil {
		if err := t.walk(n.left, c.appendBit(false)); err != nil {
			return err
		}
	}
	if n.right != nil {
		if err := t.walk(n.right, c.appendBit(true)); err != nil {
			return err
		}
	}
	return nil
}

// EncodedBits returns the number of bits needed to encode a source with the
// given frequencies, i.e. the weighted path length of the tree.
// Symbols missing from t are ignored.
func (t Table) EncodedBits(freqs Frequencies) uint64 {
	var n uint64
	for s, f := range freqs {
		n += uint64(t[s].Len) * f
	}
	return n
}
