// Package contfrac expands a non-negative rational number into its continued
// fraction [a0; a1, a2, ...] and produces the convergents h_i/k_i lazily.
//
// An Expansion is consumed once; build a new one to start over.
package contfrac

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

const engine = "contfrac"

// ErrZeroDenominator is wrapped by the failure returned for a denominator <= 0.
var ErrZeroDenominator = errors.New("denominator must be positive")

// Convergent is the i-th best rational approximation H/K, in lowest terms.
type Convergent struct {
	Index int      // 0-based position in the expansion
	H     *big.Int // numerator
	K     *big.Int // denominator
}

// Rat returns the convergent as a big.Rat.
func (c Convergent) Rat() *big.Rat {
	return new(big.Rat).SetFrac(c.H, c.K)
}

// Expansion walks the Euclidean algorithm on num/den one step at a time.
type Expansion struct {
	num, den *big.Int

	// h_{i-1}, h_{i-2}, k_{i-1}, k_{i-2}
	h1, h2, k1, k2 *big.Int

	index int
}

// New starts the expansion of num/den. num must be >= 0 and den > 0.
func New(num, den *big.Int) (*Expansion, error) {
	if den == nil || den.Sign() <= 0 {
		return nil, attack.Precondition(engine, ErrZeroDenominator, "cannot expand x/0")
	}
	if num == nil || num.Sign() < 0 {
		return nil, attack.Precondition(engine, nil, "numerator must be non-negative")
	}
	return &Expansion{
		num: new(big.Int).Set(num),
		den: new(big.Int).Set(den),
		h1:  big.NewInt(1),
		h2:  big.NewInt(0),
		k1:  big.NewInt(0),
		k2:  big.NewInt(1),
	}, nil
}

// Next returns the next partial quotient, or false once the expansion ends.
func (x *Expansion) Next() (*big.Int, bool) {
	if x.den.Sign() == 0 {
		return nil, false
	}
	q, r := new(big.Int).QuoRem(x.num, x.den, new(big.Int))
	x.num, x.den = x.den, r
	return q, true
}

// NextConvergent advances the expansion by one quotient and returns the
// convergent it completes.
func (x *Expansion) NextConvergent() (Convergent, bool) {
	a, ok := x.Next()
	if !ok {
		return Convergent{}, false
	}

	h := new(big.Int).Mul(a, x.h1)
	h.Add(h, x.h2)
	k := new(big.Int).Mul(a, x.k1)
	k.Add(k, x.k2)

	x.h2, x.h1 = x.h1, h
	x.k2, x.k1 = x.k1, k

	c := Convergent{
		Index: x.index,
		H:     new(big.Int).Set(h),
		K:     new(big.Int).Set(k),
	}
	x.index++
	return c, true
}

// Quotients returns every partial quotient of num/den.
func Quotients(num, den *big.Int) ([]*big.Int, error) {
	x, err := New(num, den)
	if err != nil {
		return nil, err
	}
	var out []*big.Int
	for {
		a, ok := x.Next()
		if !ok {
			return out, nil
		}
		out = append(out, a)
	}
}

// Convergents returns up to limit convergents of num/den; limit <= 0 means all.
func Convergents(num, den *big.Int, limit int) ([]Convergent, error) {
	x, err := New(num, den)
	if err != nil {
		return nil, err
	}
	var out []Convergent
	for limit <= 0 || len(out) < limit {
		c, ok := x.NextConvergent()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out, nil
}
