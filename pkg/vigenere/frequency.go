package vigenere

import (
	"math"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// ChiSquaredScore returns Σ (observedᵢ − expectedᵢ)² / expectedᵢ, with expected
// counts taken from lang scaled to the number of observed letters.
func ChiSquaredScore(observed [26]int, lang *Language) float64 {
	n := 0
	for _, v := range observed {
		n += v
	}
	score := 0.0
	for i, v := range observed {
		e := float64(n) * lang.Frequencies[i]
		if e == 0 {
			continue
		}
		diff := float64(v) - e
		score += diff * diff / e
	}
	return score
}

// correlation is the dot product of the observed distribution with lang.
func correlation(observed [26]int, lang *Language) float64 {
	score := 0.0
	for i, v := range observed {
		score += float64(v) * lang.Frequencies[i]
	}
	return score
}

// RecoverKey guesses the key of length k by frequency analysis of each
// column. The answer is always a best effort; only k < 1 or text without
// letters is rejected.
func RecoverKey(text string, k int, cfg Config) (string, error) {
	cfg = cfg.withDefaults()
	norm := Normalize(text)
	if norm == "" {
		return "", attack.Precondition(engine, nil, "text contains no letters")
	}
	if k < 1 {
		return "", attack.Precondition(engine, nil, "key length must be positive, got %d", k)
	}
	return recoverKey(norm, k, cfg), nil
}

func recoverKey(text string, k int, cfg Config) string {
	key := make([]byte, k)
	for i, col := range columns(text, k) {
		key[i] = 'A' + byte(columnShift(col, cfg))
	}
	return string(key)
}

// columnShift returns the Caesar shift that best explains col.
func columnShift(col []byte, cfg Config) int {
	c := counts(col)
	best, bestScore := 0, math.Inf(1)
	for s := 0; s < 26; s++ {
		// letter i of the candidate plaintext is ciphertext letter i+s
		var shifted [26]int
		for i := range shifted {
			shifted[i] = c[(i+s)%26]
		}

		var score float64
		if cfg.Scoring == Correlation {
			score = -correlation(shifted, cfg.Language)
		} else {
			score = ChiSquaredScore(shifted, cfg.Language)
		}
		if score < bestScore {
			best, bestScore = s, score
		}
	}
	return best
}
