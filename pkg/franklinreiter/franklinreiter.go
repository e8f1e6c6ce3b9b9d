// Package franklinreiter recovers two RSA plaintexts that satisfy a known
// affine relation m2 = a·m1 + b (mod n) and were encrypted with the same
// public key (n, e).
//
// Both g1(x) = x^e − c1 and g2(x) = (a·x + b)^e − c2 vanish at m1, so x − m1
// divides gcd(g1, g2) over Z/nZ. For almost every instance the gcd is exactly
// linear and m1 falls out of it. The attack is practical for small e (the
// polynomials have degree e), hence the MaxExponent cap.
package franklinreiter

import (
	"log/slog"
	"math/big"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
	"github.com/mahdiidarabi/cryptanalysis/pkg/modpoly"
)

const engine = "franklin-reiter"

// DefaultMaxExponent bounds e when Config.MaxExponent is unset.
const DefaultMaxExponent = 1024

var (
	// ErrNonInvertibleRelation is wrapped when gcd(a, n) != 1.
	ErrNonInvertibleRelation = errors.New("relation coefficient a is not invertible mod n")
	// ErrNonInvertibleCoefficient is wrapped when the linear gcd c·x + d has c not invertible.
	ErrNonInvertibleCoefficient = errors.New("gcd leading coefficient is not invertible mod n")
	// ErrDegenerateGCD is wrapped when the polynomial gcd is not linear.
	ErrDegenerateGCD = errors.New("polynomial gcd is not linear")
)

// Config tunes the attack.
type Config struct {
	// MaxExponent rejects larger public exponents (<= 0 = default).
	MaxExponent int

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{MaxExponent: DefaultMaxExponent}
}

// Result holds both recovered plaintexts and the gcd they came from.
type Result struct {
	M1  *big.Int
	M2  *big.Int
	GCD *modpoly.Poly
}

// Attack recovers m1 and m2 from c1 = m1^e, c2 = (a·m1 + b)^e mod n.
func Attack(n, e, c1, c2, a, b *big.Int, cfg Config) (*Result, error) {
	if cfg.MaxExponent <= 0 {
		cfg.MaxExponent = DefaultMaxExponent
	}
	if err := validate(n, e, c1, c2, a, b, cfg.MaxExponent); err != nil {
		return nil, err
	}
	log := attack.Logger(cfg.Logger)

	ring, err := modpoly.NewRing(n)
	if err != nil {
		return nil, err
	}

	g1, err := buildPoly(ring.X(), e, c1)
	if err != nil {
		return nil, err
	}
	g2, err := buildPoly(ring.Linear(a, b), e, c2)
	if err != nil {
		return nil, err
	}
	log.Debug("polynomials built", "degree", g1.Degree())

	g, err := modpoly.GCD(g1, g2)
	if err != nil {
		var nie *modpoly.NonInvertibleError
		if errors.As(err, &nie) {
			log.Debug("non-invertible coefficient during gcd", "factor", nie.Factor)
		}
		return nil, attack.Precondition(engine, err, "euclidean algorithm hit a zero divisor of n")
	}
	log.Debug("gcd computed", "degree", g.Degree())

	if g.Degree() != 1 {
		return nil, attack.Fail(engine, attack.KindDegenerateResult, ErrDegenerateGCD,
			"gcd has degree %d", g.Degree())
	}

	// g = c·x + d, so m1 = -d / c
	c, d := g.Coefficient(1), g.Coefficient(0)
	cInv := new(big.Int).ModInverse(c, n)
	if cInv == nil {
		return nil, attack.Precondition(engine, ErrNonInvertibleCoefficient,
			"gcd(%s, n) = %s", c, new(big.Int).GCD(nil, nil, c, n))
	}
	m1 := new(big.Int).Neg(d)
	m1.Mul(m1, cInv)
	m1.Mod(m1, n)

	m2 := new(big.Int).Mul(a, m1)
	m2.Add(m2, b)
	m2.Mod(m2, n)

	if new(big.Int).Exp(m1, e, n).Cmp(mod(c1, n)) != 0 || new(big.Int).Exp(m2, e, n).Cmp(mod(c2, n)) != 0 {
		return nil, attack.Fail(engine, attack.KindDegenerateResult, ErrDegenerateGCD,
			"linear gcd root does not re-encrypt to the given ciphertexts")
	}

	return &Result{M1: m1, M2: m2, GCD: g}, nil
}

func validate(n, e, c1, c2, a, b *big.Int, maxExp int) error {
	for _, v := range []*big.Int{n, e, c1, c2, a, b} {
		if v == nil {
			return attack.Precondition(engine, nil, "all parameters are required")
		}
	}
	if n.Cmp(big.NewInt(2)) < 0 {
		return attack.Precondition(engine, nil, "modulus must be at least 2")
	}
	if e.Sign() <= 0 {
		return attack.Precondition(engine, nil, "public exponent must be positive")
	}
	if e.Cmp(big.NewInt(int64(maxExp))) > 0 {
		return attack.Precondition(engine, nil, "public exponent %s exceeds limit %d", e, maxExp)
	}
	if g := new(big.Int).GCD(nil, nil, mod(a, n), n); g.Cmp(big.NewInt(1)) != 0 {
		return attack.Precondition(engine, ErrNonInvertibleRelation, "gcd(a, n) = %s", g)
	}
	return nil
}

// buildPoly returns base^e − c.
func buildPoly(base *modpoly.Poly, e, c *big.Int) (*modpoly.Poly, error) {
	p, err := base.Pow(e)
	if err != nil {
		return nil, err
	}
	return p.Sub(base.Ring().Constant(c))
}

func mod(v, n *big.Int) *big.Int {
	return new(big.Int).Mod(v, n)
}
