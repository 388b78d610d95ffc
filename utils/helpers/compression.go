package helpers

import (
	"github.com/DODOEX/huffcodec/internal/core/codec"
	"github.com/DODOEX/huffcodec/internal/core/huffman"
)

func Compress(data []byte) ([]byte, error) {
	out, _, err := codec.CompressBytes(data, huffman.Bytes)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func Decompress(data []byte) ([]byte, error) {
	if data, _, err := codec.DecompressBytes(data); err != nil {
		return nil, err
	} else {
		return data, nil
	}
}
