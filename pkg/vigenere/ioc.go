package vigenere

import (
	"math"
	"sort"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// KeyLength is a candidate key length scored by index of coincidence.
type KeyLength struct {
	Length int
	IoC    float64 // average column IoC
	Delta  float64 // |IoC - language IoC|

	// Redundant marks a multiple of a shorter length whose columns already
	// reach about the same IoC.
	Redundant bool
}

// IndexOfCoincidence returns Σ nᵢ(nᵢ−1) / (N(N−1)) over the letters of text.
// Text with fewer than two letters has IoC 0.
func IndexOfCoincidence(text string) float64 {
	return ioc([]byte(Normalize(text)))
}

func ioc(letters []byte) float64 {
	n := len(letters)
	if n < 2 {
		return 0
	}
	c := counts(letters)
	sum := 0
	for _, v := range c {
		sum += v * (v - 1)
	}
	return float64(sum) / float64(n*(n-1))
}

// RankByIoC scores key lengths 1..cfg.MaxKeyLength by how close their
// average column IoC is to the language IoC. Lengths whose columns would
// hold fewer than two letters are skipped.
//
// A multiple of the true period scores as well as the period itself, so a
// length is pushed behind the others when one of its divisors d > 1 already
// reaches its IoC within cfg.Tolerance.
func RankByIoC(text string, cfg Config) ([]KeyLength, error) {
	cfg = cfg.withDefaults()
	norm := Normalize(text)
	if norm == "" {
		return nil, attack.Precondition(engine, nil, "text contains no letters")
	}
	return rankByIoC(norm, cfg), nil
}

func rankByIoC(text string, cfg Config) []KeyLength {
	var out []KeyLength
	avg := make(map[int]float64)
	for k := 1; k <= cfg.MaxKeyLength && len(text)/k >= 2; k++ {
		sum := 0.0
		for _, col := range columns(text, k) {
			sum += ioc(col)
		}
		avg[k] = sum / float64(k)
		out = append(out, KeyLength{
			Length: k,
			IoC:    avg[k],
			Delta:  math.Abs(avg[k] - cfg.LanguageIoC),
		})
	}

	for i := range out {
		k := out[i].Length
		for d := 2; d < k; d++ {
			if k%d == 0 && avg[k]-avg[d] <= cfg.Tolerance {
				out[i].Redundant = true
				break
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Redundant != out[j].Redundant {
			return !out[i].Redundant
		}
		return out[i].Delta < out[j].Delta
	})
	return out
}
