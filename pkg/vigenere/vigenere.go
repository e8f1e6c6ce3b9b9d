// Package vigenere breaks the repeating-key Vigenère cipher.
//
// The pipeline has three parts, each usable on its own:
//
//   - Kasiski examination: distances between repeated n-grams hint at the key
//     length.
//   - Index of coincidence: for each candidate length k the text is split into
//     k columns; the right k makes every column look like plain language.
//   - Frequency analysis: with the length fixed, each column is a Caesar
//     cipher and its shift is the one whose decryption best fits the language
//     letter frequencies.
//
// Analyze runs all three and returns the most plausible key. The key is a
// statistical hypothesis: nothing in the cipher lets the engine prove it.
//
// All analysis happens on Normalize(text), the upper-cased letters of the
// input. Encrypt and Decrypt keep case and non-letters intact.
package vigenere

import (
	"log/slog"
)

const engine = "vigenere"

const (
	DefaultMinRepeatLength = 3
	DefaultMaxKeyLength    = 20

	// DefaultTolerance is how close (in IoC) a divisor of a candidate length
	// must come to the candidate for the candidate to count as a multiple of
	// an already-plausible period.
	DefaultTolerance = 0.005

	// rescoreTop is how many IoC candidates Analyze re-scores by decryption.
	rescoreTop = 3

	// rescoreMargin is the relative chi-squared gain a longer key needs
	// over a shorter one in Analyze.
	rescoreMargin = 0.2
)

// Scoring selects how frequency analysis compares a column with the language.
type Scoring int

const (
	// ChiSquared picks the shift with the smallest chi-squared statistic.
	ChiSquared Scoring = iota
	// Correlation picks the shift with the largest dot product between the
	// observed and expected letter distributions.
	Correlation
)

func (s Scoring) String() string {
	switch s {
	case ChiSquared:
		return "chi-squared"
	case Correlation:
		return "correlation"
	default:
		return "unknown"
	}
}

// Config tunes the analysis. Zero values select the defaults.
type Config struct {
	// LanguageIoC is the expected index of coincidence of the plaintext
	// language (default Language.IoC).
	LanguageIoC float64

	// Language supplies letter frequencies (default English).
	Language *Language

	// MinRepeatLength is the n-gram length Kasiski examination looks for.
	MinRepeatLength int

	// MaxKeyLength bounds every key-length search.
	MaxKeyLength int

	Scoring Scoring

	// Tolerance controls demotion of multiples in RankByIoC.
	Tolerance float64

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		LanguageIoC:     English.IoC,
		Language:        &English,
		MinRepeatLength: DefaultMinRepeatLength,
		MaxKeyLength:    DefaultMaxKeyLength,
		Scoring:         ChiSquared,
		Tolerance:       DefaultTolerance,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Language == nil {
		c.Language = d.Language
	}
	if c.LanguageIoC <= 0 {
		c.LanguageIoC = c.Language.IoC
	}
	if c.MinRepeatLength <= 0 {
		c.MinRepeatLength = d.MinRepeatLength
	}
	if c.MaxKeyLength <= 0 {
		c.MaxKeyLength = d.MaxKeyLength
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	return c
}
