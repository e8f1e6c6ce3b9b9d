package vigenere

import (
	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// Result is the best hypothesis Analyze found.
type Result struct {
	Key        string
	Plaintext  string // ciphertext decrypted with Key, formatting preserved
	KeyLength  int    // len(Key)
	Candidates []KeyLength
	Kasiski    *KasiskiResult
}

// Analyze recovers the key of a Vigenère ciphertext.
//
// The top IoC candidates and their divisors are each turned into a key by
// frequency analysis and the key whose decryption fits the language best
// wins; a longer key has to beat a shorter one by rescoreMargin. A key that
// repeats itself is reduced to its period. Text too short to rank falls back
// to a single-letter key. Kasiski examination is reported alongside for
// comparison.
func Analyze(ciphertext string, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	log := attack.Logger(cfg.Logger)

	text := Normalize(ciphertext)
	if text == "" {
		return nil, attack.Precondition(engine, nil, "ciphertext contains no letters")
	}

	cands := rankByIoC(text, cfg)
	ks := kasiski(text, cfg)
	if len(ks.Candidates) > 0 {
		log.Debug("kasiski", "repeats", len(ks.Repeats), "gcd", ks.GCD, "best", ks.Candidates[0].Length)
	}

	var best string
	bestScore := 0.0
	for _, k := range rescoreLengths(cands) {
		key := recoverKey(text, k, cfg)
		plain := decryptLetters(text, shiftsOf(key))
		score := ChiSquaredScore(counts([]byte(plain)), cfg.Language)
		log.Debug("candidate", "length", k, "key", key, "chi2", score)

		if best == "" || prefer(len(key), score, len(best), bestScore) {
			best, bestScore = key, score
		}
	}

	key := period(best)
	plaintext, err := Decrypt(ciphertext, key)
	if err != nil {
		return nil, err
	}
	return &Result{
		Key:        key,
		Plaintext:  plaintext,
		KeyLength:  len(key),
		Candidates: cands,
		Kasiski:    ks,
	}, nil
}

// rescoreLengths lists the top IoC lengths, each preceded by its divisors,
// without repeats. It is never empty.
func rescoreLengths(cands []KeyLength) []int {
	if len(cands) > rescoreTop {
		cands = cands[:rescoreTop]
	}
	var out []int
	seen := make(map[int]bool)
	for _, c := range cands {
		for d := 1; d <= c.Length; d++ {
			if c.Length%d == 0 && !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, 1)
	}
	return out
}

// prefer reports whether a key of length n scoring score replaces the
// current best of length bestN.
func prefer(n int, score float64, bestN int, bestScore float64) bool {
	switch {
	case n < bestN:
		return score <= bestScore*(1+rescoreMargin)
	case n > bestN:
		return score < bestScore*(1-rescoreMargin)
	default:
		return score < bestScore
	}
}

func shiftsOf(key string) []int {
	s := make([]int, len(key))
	for i := range key {
		s[i] = int(key[i] - 'A')
	}
	return s
}
