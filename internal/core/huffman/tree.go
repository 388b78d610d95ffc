package huffman

import "container/heap"

// A Node is a node of a code tree. Leaves carry a symbol and its frequency;
// internal nodes carry only the sum of their children's frequencies.
//
// Nodes are never modified after BuildTree returns them.
type Node struct {
	symbol      Symbol
	freq        uint64
	left, right *Node
	leaf        bool
}

func (n *Node) IsLeaf() bool      { return n.leaf }
func (n *Node) Symbol() Symbol    { return n.symbol }
func (n *Node) Frequency() uint64 { return n.freq }
func (n *Node) Left() *Node       { return n.left }
func (n *Node) Right() *Node      { return n.right }

// Leaves returns the number of leaves under n.
func (n *Node) Leaves() int {
	if n == nil {
		return 0
	}
	if n.leaf {
		return 1
	}
	return n.left.Leaves() + n.right.Leaves()
}

// Depth returns the length of the longest path from n to a leaf.
func (n *Node) Depth() int {
	if n == nil || n.leaf {
		return 0
	}
	return 1 + max(depthOf(n.left), depthOf(n.right))
}

func depthOf(n *Node) int {
	if n == nil {
		return -1
	}
	return n.Depth()
}

// BuildTree builds a Huffman code tree for freqs.
// It returns nil if freqs is empty.
//
// The result is deterministic: trees are ordered by frequency, and ties are
// broken by the order in which the trees entered the queue. Leaves enter in
// ascending symbol order, merged trees in the order they are created.
//
// With a single distinct symbol the root is an internal node whose only
// child is the leaf, on the left, so the symbol's code is "0".
func BuildTree(freqs Frequencies) *Node {
	if len(freqs) == 0 {
		return nil
	}

	f := make(forest, 0, len(freqs))
	for _, s := range freqs.Symbols() {
		f = append(f, entry{node: &Node{symbol: s, freq: freqs[s], leaf: true}, seq: len(f)})
	}
	heap.Init(&f)

	if f.Len() == 1 {
		leaf := heap.Pop(&f).(entry).node
		return &Node{freq: leaf.freq, left: leaf}
	}

	seq := f.Len()
	for f.Len() > 1 {
		a := heap.Pop(&f).(entry).node
		b := heap.Pop(&f).(entry).node
		heap.Push(&f, entry{node: &Node{freq: a.freq + b.freq, left: a, right: b}, seq: seq})
		seq++
	}
	return heap.Pop(&f).(entry).node
}

type entry struct {
	node *Node
	seq  int
}

// forest is a min-heap of trees keyed by root frequency, then insertion sequence.
type forest []entry

func (f forest) Len() int { return len(f) }
func (f forest) Less(i, j int) bool {
	if f[i].node.freq != f[j].node.freq {
		return f[i].node.freq < f[j].node.freq
	}
	return f[i].seq < f[j].seq
}
func (f forest) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *forest) Push(x any)   { *f = append(*f, x.(entry)) }
func (f *forest) Pop() any {
	old := *f
	e := old[len(old)-1]
	*f = old[:len(old)-1]
	return e
}
