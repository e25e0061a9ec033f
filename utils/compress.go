package utils

import (
	"bytes"
	"compress/gzip"
	"io"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsGzip reports whether data starts with the gzip header.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// MaybeDecompress returns gzip-compressed input decompressed and any other
// input unchanged, so cached payloads can be stored either way.
func MaybeDecompress(data []byte) ([]byte, error) {
	if !IsGzip(data) {
		return data, nil
	}
	gzipReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gzipReader.Close()
	return io.ReadAll(gzipReader)
}
