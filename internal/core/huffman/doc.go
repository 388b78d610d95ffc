// Package huffman implements static Huffman coding.
//
// The pipeline is strictly sequential:
//
//	freqs, _ := CountFrequencies(src)  // one pass over the source
//	root := BuildTree(freqs)           // greedy merge, deterministic ties
//	table, _ := GenerateTable(root)    // depth-first, left=0 right=1
//	Encode(table, src2, sink)          // second pass over the source
//	Decode(root, source, dst)          // walk the same tree bit by bit
//
// An empty source flows through as nil values and encodes to nothing.
package huffman
