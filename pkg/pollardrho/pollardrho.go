// Package pollardrho finds a non-trivial factor of a composite integer with
// Pollard's rho method and Floyd cycle detection.
//
// The sequence x ← x² + c (mod n) eventually cycles modulo every prime p | n,
// after roughly sqrt(p) steps. When the tortoise and hare collide modulo p but
// not modulo n, gcd(|x − y|, n) reveals p. A collision modulo n itself gives
// d = n; the walk is then restarted with the next c.
package pollardrho

import (
	"log/slog"
	"math/big"
	"sort"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

const engine = "pollard-rho"

const (
	DefaultC             = 1
	DefaultStart         = 2
	DefaultMaxIterations = 100000
	DefaultMaxRestarts   = 20
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Config controls the walk. Zero values select the defaults.
type Config struct {
	C             int64 // polynomial constant of the first attempt
	Start         int64 // x0 for every attempt
	MaxIterations int   // cap per attempt
	MaxRestarts   int   // attempts after the first, each with c+1

	// Stop is polled every CheckEvery iterations; returning true ends the search.
	Stop       func() bool
	CheckEvery int

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		C:             DefaultC,
		Start:         DefaultStart,
		MaxIterations: DefaultMaxIterations,
		MaxRestarts:   DefaultMaxRestarts,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.C == 0 {
		c.C = d.C
	}
	if c.Start == 0 {
		c.Start = d.Start
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.MaxRestarts < 0 {
		c.MaxRestarts = 0
	} else if c.MaxRestarts == 0 {
		c.MaxRestarts = d.MaxRestarts
	}
	return c
}

// Result is a split n = Factor · Cofactor.
type Result struct {
	Factor     *big.Int
	Cofactor   *big.Int
	C          int64 // polynomial constant of the successful attempt
	Iterations int   // iterations of the successful attempt
	Restarts   int
}

// Factor returns a non-trivial factor of n. n must be greater than 1. Even
// numbers return 2 without walking. A prime n exhausts every attempt and
// yields a SearchExhausted failure.
func Factor(n *big.Int, cfg Config) (*Result, error) {
	if n == nil || n.Cmp(one) <= 0 {
		return nil, attack.Precondition(engine, nil, "n must be greater than 1")
	}
	cfg = cfg.withDefaults()
	log := attack.Logger(cfg.Logger)

	if n.Bit(0) == 0 {
		return &Result{
			Factor:   big.NewInt(2),
			Cofactor: new(big.Int).Rsh(n, 1),
			C:        cfg.C,
		}, nil
	}

	budget := attack.Budget{Max: cfg.MaxIterations, CheckEvery: cfg.CheckEvery, Stop: cfg.Stop}
	start := big.NewInt(cfg.Start)

	for restart := 0; restart <= cfg.MaxRestarts; restart++ {
		c := big.NewInt(cfg.C + int64(restart))
		d, iterations, stopped := walk(n, c, start, budget)
		switch {
		case d != nil:
			log.Debug("factor found", "c", c, "iterations", iterations, "factor", d)
			return &Result{
				Factor:     d,
				Cofactor:   new(big.Int).Quo(n, d),
				C:          c.Int64(),
				Iterations: iterations,
				Restarts:   restart,
			}, nil
		case stopped:
			return nil, attack.Exhausted(engine, "search stopped after %d restarts", restart)
		}
		log.Debug("rho restart", "c", c, "iterations", iterations)
	}

	return nil, attack.Exhausted(engine,
		"no factor found within iteration bound (%d iterations, %d restarts)", cfg.MaxIterations, cfg.MaxRestarts)
}

// walk runs one Floyd attempt. It returns the factor on success. stopped is
// set when the Stop predicate fired rather than the cap or a collision mod n.
func walk(n, c, start *big.Int, budget attack.Budget) (d *big.Int, iterations int, stopped bool) {
	x := new(big.Int).Set(start)
	y := new(big.Int).Set(start)
	diff := new(big.Int)
	g := new(big.Int)

	f := func(v *big.Int) {
		v.Mul(v, v)
		v.Add(v, c)
		v.Mod(v, n)
	}

	for ; iterations < budget.Max; iterations++ {
		if !budget.Allow(iterations) {
			return nil, iterations, true
		}
		f(x)
		f(y)
		f(y)

		diff.Sub(x, y)
		diff.Abs(diff)
		g.GCD(nil, nil, diff, n)

		if g.Cmp(one) == 0 {
			continue
		}
		if g.Cmp(n) == 0 {
			return nil, iterations + 1, false
		}
		return new(big.Int).Set(g), iterations + 1, false
	}
	return nil, iterations, false
}

// smallPrimes are the primes below 1000, used for trial division in FactorAll.
var smallPrimes = func() []int64 {
	var out []int64
	sieve := make([]bool, 1000)
	for i := int64(2); i < 1000; i++ {
		if sieve[i] {
			continue
		}
		out = append(out, i)
		for j := i * i; j < 1000; j += i {
			sieve[j] = true
		}
	}
	return out
}()

// FactorAll returns the prime factorisation of n in ascending order, with
// multiplicity. Small primes are removed by trial division; what is left is
// split with Factor and each part recursively factored. If a composite part
// cannot be split the error from Factor is returned.
func FactorAll(n *big.Int, cfg Config) ([]*big.Int, error) {
	if n == nil || n.Cmp(one) <= 0 {
		return nil, attack.Precondition(engine, nil, "n must be greater than 1")
	}

	var factors []*big.Int
	rest := new(big.Int).Set(n)
	q, r := new(big.Int), new(big.Int)
	for _, sp := range smallPrimes {
		p := big.NewInt(sp)
		for {
			q.QuoRem(rest, p, r)
			if r.Sign() != 0 {
				break
			}
			factors = append(factors, p)
			rest.Set(q)
		}
	}

	if err := split(rest, cfg, &factors); err != nil {
		return nil, err
	}
	sort.Slice(factors, func(i, j int) bool { return factors[i].Cmp(factors[j]) < 0 })
	return factors, nil
}

func split(n *big.Int, cfg Config, out *[]*big.Int) error {
	if n.Cmp(one) == 0 {
		return nil
	}
	if n.ProbablyPrime(20) {
		*out = append(*out, new(big.Int).Set(n))
		return nil
	}
	if n.Cmp(two) > 0 && n.Bit(0) == 0 {
		*out = append(*out, big.NewInt(2))
		return split(new(big.Int).Rsh(n, 1), cfg, out)
	}
	res, err := Factor(n, cfg)
	if err != nil {
		return err
	}
	if err := split(res.Factor, cfg, out); err != nil {
		return err
	}
	return split(res.Cofactor, cfg, out)
}
