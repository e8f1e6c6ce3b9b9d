// Package pkcs7 implements PKCS#7 block padding.
package pkcs7

import (
	"bytes"

	"github.com/pkg/errors"
)

var (
	ErrInvalidBlockSize = errors.New("pkcs7: block size must be between 1 and 255")
	ErrInvalidPadding   = errors.New("pkcs7: invalid padding")
)

// Pad appends 1..blockSize bytes, each equal to the pad length.
func Pad(data []byte, blockSize int) ([]byte, error) {
	if blockSize < 1 || blockSize > 255 {
		return nil, ErrInvalidBlockSize
	}
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...), nil
}

// Valid reports whether data ends in well-formed padding for blockSize.
func Valid(data []byte, blockSize int) bool {
	if len(data) == 0 {
		return false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return false
		}
	}
	return true
}

// Unpad strips the padding, or returns ErrInvalidPadding.
func Unpad(data []byte, blockSize int) ([]byte, error) {
	if !Valid(data, blockSize) {
		return nil, ErrInvalidPadding
	}
	return data[:len(data)-int(data[len(data)-1])], nil
}
