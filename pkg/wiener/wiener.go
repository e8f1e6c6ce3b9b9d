// Package wiener recovers a small RSA private exponent from the public key
// (e, n) with Wiener's continued-fraction attack.
//
// When d < n^(1/4)/3, k/d appears among the convergents of e/n, where
// e·d = 1 + k·φ(n). Each convergent is turned into a candidate φ and checked
// by solving x² − (n − φ + 1)x + n = 0 for the primes p and q.
//
// A failed attack means the bound was not met. It says nothing about the
// strength of the key.
package wiener

import (
	"log/slog"
	"math/big"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
	"github.com/mahdiidarabi/cryptanalysis/pkg/contfrac"
)

const engine = "wiener"

// DefaultMaxConvergents bounds the search when Config.MaxConvergents is unset.
// The expansion of e/n has O(log n) terms, so this only bites on huge moduli.
const DefaultMaxConvergents = 4096

var (
	one  = big.NewInt(1)
	four = big.NewInt(4)
)

// Config controls the convergent search.
type Config struct {
	// MaxConvergents caps how many convergents are tested (<= 0 = default).
	MaxConvergents int

	// EnforceBound skips candidates with d above TheoreticalBound(n).
	EnforceBound bool

	// Stop is polled between convergents; returning true ends the search.
	Stop func() bool

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{MaxConvergents: DefaultMaxConvergents}
}

// Result is a broken key.
type Result struct {
	D   *big.Int // private exponent
	P   *big.Int // larger prime factor
	Q   *big.Int // smaller prime factor
	Phi *big.Int // φ(n) = (p-1)(q-1)
	K   *big.Int // e·d = 1 + K·φ(n)

	Convergent int // index of the convergent k/d that broke the key
}

// TheoreticalBound returns ⌊n^(1/4)⌋/3, the largest d Wiener's theorem covers.
func TheoreticalBound(n *big.Int) *big.Int {
	r := new(big.Int).Sqrt(n)
	r.Sqrt(r)
	return r.Div(r, big.NewInt(3))
}

// Attack runs Wiener's attack on the public key (e, n).
func Attack(e, n *big.Int, cfg Config) (*Result, error) {
	if e == nil || n == nil || e.Sign() <= 0 || n.Sign() <= 0 {
		return nil, attack.Precondition(engine, nil, "e and n must be positive")
	}
	if e.Cmp(n) >= 0 {
		return nil, attack.Precondition(engine, nil, "e must be smaller than n")
	}
	if cfg.MaxConvergents <= 0 {
		cfg.MaxConvergents = DefaultMaxConvergents
	}
	log := attack.Logger(cfg.Logger)
	budget := attack.Budget{Max: cfg.MaxConvergents, CheckEvery: 1, Stop: cfg.Stop}

	expansion, err := contfrac.New(e, n)
	if err != nil {
		return nil, err
	}

	var bound *big.Int
	if cfg.EnforceBound {
		bound = TheoreticalBound(n)
		log.Debug("wiener bound", "limit", bound)
	}

	tested := 0
	for budget.Allow(tested) {
		conv, ok := expansion.NextConvergent()
		if !ok {
			break
		}
		tested++

		k, d := conv.H, conv.K
		if k.Sign() == 0 {
			continue
		}
		if bound != nil && d.Cmp(bound) > 0 {
			log.Debug("skip convergent above bound", "index", conv.Index, "d", d)
			continue
		}

		res := tryConvergent(e, n, k, d)
		if res == nil {
			log.Debug("convergent rejected", "index", conv.Index, "k", k, "d", d)
			continue
		}
		res.Convergent = conv.Index
		log.Debug("key broken", "index", conv.Index, "d", res.D)
		return res, nil
	}

	return nil, attack.Exhausted(engine,
		"no small private exponent found within convergent search bound (%d convergents tested)", tested)
}

// tryConvergent checks whether k/d yields the factorisation of n.
func tryConvergent(e, n, k, d *big.Int) *Result {
	// φ = (e·d - 1) / k, exactly
	ed1 := new(big.Int).Mul(e, d)
	ed1.Sub(ed1, one)
	phi, rem := new(big.Int).QuoRem(ed1, k, new(big.Int))
	if rem.Sign() != 0 || phi.Sign() <= 0 {
		return nil
	}

	// p + q = n - φ + 1, and p, q are roots of x² - s·x + n
	s := new(big.Int).Sub(n, phi)
	s.Add(s, one)
	disc := new(big.Int).Mul(s, s)
	disc.Sub(disc, new(big.Int).Mul(four, n))
	if disc.Sign() < 0 {
		return nil
	}
	t := new(big.Int).Sqrt(disc)
	if new(big.Int).Mul(t, t).Cmp(disc) != 0 {
		return nil
	}

	p := new(big.Int).Add(s, t)
	q := new(big.Int).Sub(s, t)
	if p.Bit(0) != 0 || q.Bit(0) != 0 {
		return nil
	}
	p.Rsh(p, 1)
	q.Rsh(q, 1)
	if p.Sign() <= 0 || q.Sign() <= 0 {
		return nil
	}
	if new(big.Int).Mul(p, q).Cmp(n) != 0 {
		return nil
	}

	return &Result{
		D:   new(big.Int).Set(d),
		P:   p,
		Q:   q,
		Phi: phi,
		K:   new(big.Int).Set(k),
	}
}
