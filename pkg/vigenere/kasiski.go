package vigenere

import (
	"sort"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// Repeat is an n-gram that occurs more than once, with every start offset.
type Repeat struct {
	Sequence  string
	Positions []int
}

// Candidate is a key length with a heuristic score; higher is better.
type Candidate struct {
	Length int
	Score  float64
}

// KasiskiResult is the outcome of a Kasiski examination.
type KasiskiResult struct {
	Repeats   []Repeat
	Distances []int // every pairwise distance between occurrences
	GCD       int   // gcd of all distances, 0 when there are none

	// Candidates ranks lengths 2..MaxKeyLength by how many distances they
	// divide beyond the 1/L expected by chance.
	Candidates []Candidate
}

// Kasiski examines text for repeated n-grams of length cfg.MinRepeatLength.
// Text without repeats yields an empty result, not an error.
func Kasiski(text string, cfg Config) (*KasiskiResult, error) {
	cfg = cfg.withDefaults()
	norm := Normalize(text)
	if norm == "" {
		return nil, attack.Precondition(engine, nil, "text contains no letters")
	}
	return kasiski(norm, cfg), nil
}

func kasiski(text string, cfg Config) *KasiskiResult {
	m := cfg.MinRepeatLength
	res := &KasiskiResult{}
	if len(text) < 2*m {
		return res
	}

	positions := make(map[string][]int)
	var order []string
	for i := 0; i+m <= len(text); i++ {
		seq := text[i : i+m]
		if _, ok := positions[seq]; !ok {
			order = append(order, seq)
		}
		positions[seq] = append(positions[seq], i)
	}

	for _, seq := range order {
		pos := positions[seq]
		if len(pos) < 2 {
			continue
		}
		res.Repeats = append(res.Repeats, Repeat{Sequence: seq, Positions: pos})
		for a := 0; a < len(pos); a++ {
			for b := a + 1; b < len(pos); b++ {
				d := pos[b] - pos[a]
				res.Distances = append(res.Distances, d)
				res.GCD = gcd(res.GCD, d)
			}
		}
	}
	if len(res.Distances) == 0 {
		return res
	}

	total := float64(len(res.Distances))
	for l := 2; l <= cfg.MaxKeyLength; l++ {
		hits := 0
		for _, d := range res.Distances {
			if d%l == 0 {
				hits++
			}
		}
		res.Candidates = append(res.Candidates, Candidate{
			Length: l,
			Score:  float64(hits)/total - 1/float64(l),
		})
	}
	sort.SliceStable(res.Candidates, func(i, j int) bool {
		return res.Candidates[i].Score > res.Candidates[j].Score
	})
	return res
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
