// Package lab provides a deliberately vulnerable CBC service for exercising
// the padding-oracle engine: an in-process Target and a gin HTTP server that
// leaks padding validity through its status codes.
package lab

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blowfish"

	"github.com/mahdiidarabi/cryptanalysis/pkg/pkcs7"
)

var (
	// ErrMalformed is returned for ciphertexts that are not whole blocks.
	ErrMalformed = errors.New("lab: ciphertext is not a whole number of blocks")
	// ErrUnknownAlgorithm is returned by NewTarget for an unsupported cipher name.
	ErrUnknownAlgorithm = errors.New("lab: unknown algorithm")
)

// Target encrypts and decrypts with CBC and PKCS#7 under a fixed key.
type Target struct {
	block  cipher.Block
	random io.Reader
}

// NewTarget builds a Target for "aes" (16-byte blocks) or "blowfish" (8-byte
// blocks).
func NewTarget(algorithm string, key []byte) (*Target, error) {
	var (
		block cipher.Block
		err   error
	)
	switch strings.ToLower(algorithm) {
	case "aes":
		block, err = aes.NewCipher(key)
	case "blowfish":
		block, err = blowfish.NewCipher(key)
	default:
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", algorithm)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "lab: %s key", algorithm)
	}
	return New(block), nil
}

// New wraps an arbitrary block cipher.
func New(block cipher.Block) *Target {
	return &Target{block: block, random: rand.Reader}
}

// RandomTarget builds a Target with a fresh random 128-bit key.
func RandomTarget(algorithm string) (*Target, error) {
	key := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, errors.Wrap(err, "lab: generate key")
	}
	return NewTarget(algorithm, key)
}

// BlockSize returns the cipher block size.
func (t *Target) BlockSize() int { return t.block.BlockSize() }

// Encrypt pads plaintext and encrypts it under a random IV.
func (t *Target) Encrypt(plaintext []byte) (iv, ciphertext []byte, err error) {
	iv = make([]byte, t.BlockSize())
	if _, err := io.ReadFull(t.random, iv); err != nil {
		return nil, nil, errors.Wrap(err, "lab: generate iv")
	}
	ciphertext, err = t.EncryptWithIV(iv, plaintext)
	if err != nil {
		return nil, nil, err
	}
	return iv, ciphertext, nil
}

// EncryptWithIV pads plaintext and encrypts it under iv.
func (t *Target) EncryptWithIV(iv, plaintext []byte) ([]byte, error) {
	if len(iv) != t.BlockSize() {
		return nil, errors.Errorf("lab: iv must be %d bytes", t.BlockSize())
	}
	padded, err := pkcs7.Pad(plaintext, t.BlockSize())
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(t.block, iv).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt decrypts and unpads. A padding failure is reported as
// pkcs7.ErrInvalidPadding, which is exactly the leak the oracle exploits.
func (t *Target) Decrypt(iv, ciphertext []byte) ([]byte, error) {
	padded, err := t.decryptRaw(iv, ciphertext)
	if err != nil {
		return nil, err
	}
	return pkcs7.Unpad(padded, t.BlockSize())
}

func (t *Target) decryptRaw(iv, ciphertext []byte) ([]byte, error) {
	bs := t.BlockSize()
	if len(iv) != bs || len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, ErrMalformed
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(t.block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

// ValidPadding decrypts block with prev as the chaining value and reports
// whether the result carries valid PKCS#7 padding.
func (t *Target) ValidPadding(prev, block []byte) bool {
	padded, err := t.decryptRaw(prev, block)
	if err != nil {
		return false
	}
	return pkcs7.Valid(padded, t.BlockSize())
}

// Check treats data as IV followed by ciphertext. It returns ErrMalformed
// when data is not at least two whole blocks.
func (t *Target) Check(data []byte) (bool, error) {
	bs := t.BlockSize()
	if len(data) < 2*bs || len(data)%bs != 0 {
		return false, ErrMalformed
	}
	padded, err := t.decryptRaw(data[:bs], data[bs:])
	if err != nil {
		return false, err
	}
	return pkcs7.Valid(padded, bs), nil
}
