package vigenere

import (
	"strings"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// Normalize returns the ASCII letters of text, upper-cased.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c)
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		}
	}
	return b.String()
}

// Encrypt shifts each letter of plaintext forward by the next key letter.
// Case and non-letters are preserved; the key only advances on letters.
func Encrypt(plaintext, key string) (string, error) {
	shifts, err := keyShifts(key)
	if err != nil {
		return "", err
	}
	return apply(plaintext, shifts, 1), nil
}

// Decrypt reverses Encrypt.
func Decrypt(ciphertext, key string) (string, error) {
	shifts, err := keyShifts(key)
	if err != nil {
		return "", err
	}
	return apply(ciphertext, shifts, -1), nil
}

func keyShifts(key string) ([]int, error) {
	k := Normalize(key)
	if k == "" || len(k) != len(key) {
		return nil, attack.Precondition(engine, nil, "key must be a non-empty string of letters")
	}
	shifts := make([]int, len(k))
	for i := range k {
		shifts[i] = int(k[i] - 'A')
	}
	return shifts, nil
}

func apply(text string, shifts []int, dir int) string {
	out := []byte(text)
	j := 0
	for i, c := range out {
		var base byte
		switch {
		case c >= 'A' && c <= 'Z':
			base = 'A'
		case c >= 'a' && c <= 'z':
			base = 'a'
		default:
			continue
		}
		s := (int(c-base) + dir*shifts[j%len(shifts)] + 26) % 26
		out[i] = base + byte(s)
		j++
	}
	return string(out)
}

// decryptLetters decrypts normalized text with numeric shifts.
func decryptLetters(text string, shifts []int) string {
	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = 'A' + byte((int(text[i]-'A')-shifts[i%len(shifts)]+26)%26)
	}
	return string(out)
}

// columns splits normalized text into k interleaved columns.
func columns(text string, k int) [][]byte {
	cols := make([][]byte, k)
	for i := 0; i < len(text); i++ {
		cols[i%k] = append(cols[i%k], text[i])
	}
	return cols
}

// counts returns the letter histogram of normalized text.
func counts(text []byte) [26]int {
	var c [26]int
	for _, b := range text {
		c[b-'A']++
	}
	return c
}

// period returns the shortest p such that key is key[:p] repeated.
func period(key string) string {
	for p := 1; p < len(key); p++ {
		if len(key)%p != 0 {
			continue
		}
		if strings.Repeat(key[:p], len(key)/p) == key {
			return key[:p]
		}
	}
	return key
}
