// Package modpoly implements univariate polynomials with coefficients in Z/nZ.
//
// n is usually composite (an RSA modulus), so Z/nZ is not a field: a non-zero
// leading coefficient is not always invertible, and Monic, DivMod and GCD
// report that case explicitly with a *NonInvertibleError. Such an error is
// useful in its own right since it carries gcd(value, n), a factor of n.
//
// Polynomials are immutable; every operation returns a new value.
package modpoly

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

const engine = "modpoly"

// DegreeZero is the degree reported for the zero polynomial.
const DegreeZero = -1

var (
	// ErrNonInvertibleLeadingCoefficient is matched by every *NonInvertibleError.
	ErrNonInvertibleLeadingCoefficient = errors.New("leading coefficient is not invertible mod n")
	// ErrDivisionByZero is returned when dividing by the zero polynomial.
	ErrDivisionByZero = errors.New("division by the zero polynomial")
	// ErrRingMismatch is returned when combining polynomials over different moduli.
	ErrRingMismatch = errors.New("polynomials belong to different rings")
)

// NonInvertibleError reports a coefficient with no inverse mod n.
type NonInvertibleError struct {
	Value  *big.Int // the offending coefficient
	Factor *big.Int // gcd(Value, n); a non-trivial factor of n unless Value ≡ 0
}

func (e *NonInvertibleError) Error() string {
	return fmt.Sprintf("%v: %s (gcd with modulus %s)", ErrNonInvertibleLeadingCoefficient, e.Value, e.Factor)
}

// Is lets errors.Is match ErrNonInvertibleLeadingCoefficient.
func (e *NonInvertibleError) Is(target error) bool {
	return target == ErrNonInvertibleLeadingCoefficient
}

// Ring is Z/nZ[x] for a fixed modulus n.
type Ring struct {
	n *big.Int
}

// NewRing returns the polynomial ring over Z/nZ. n must be at least 2.
func NewRing(n *big.Int) (*Ring, error) {
	if n == nil || n.Cmp(big.NewInt(2)) < 0 {
		return nil, attack.Precondition(engine, nil, "modulus must be at least 2")
	}
	return &Ring{n: new(big.Int).Set(n)}, nil
}

// Modulus returns a copy of n.
func (r *Ring) Modulus() *big.Int { return new(big.Int).Set(r.n) }

// Poly builds a polynomial from coefficients ordered low degree first.
func (r *Ring) Poly(coeffs ...*big.Int) *Poly {
	c := make([]*big.Int, len(coeffs))
	for i, v := range coeffs {
		c[i] = r.reduce(v)
	}
	return r.wrap(c)
}

// Int64s is Poly for small coefficients.
func (r *Ring) Int64s(coeffs ...int64) *Poly {
	c := make([]*big.Int, len(coeffs))
	for i, v := range coeffs {
		c[i] = r.reduce(big.NewInt(v))
	}
	return r.wrap(c)
}

// Zero returns the zero polynomial.
func (r *Ring) Zero() *Poly { return r.wrap(nil) }

// Constant returns the degree-0 polynomial v.
func (r *Ring) Constant(v *big.Int) *Poly { return r.Poly(v) }

// X returns the polynomial x.
func (r *Ring) X() *Poly { return r.Int64s(0, 1) }

// Linear returns a·x + b.
func (r *Ring) Linear(a, b *big.Int) *Poly { return r.Poly(b, a) }

func (r *Ring) reduce(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Mod(v, r.n)
}

func (r *Ring) wrap(c []*big.Int) *Poly {
	p := &Poly{ring: r, c: c}
	p.trim()
	return p
}

// inverse returns v⁻¹ mod n or a *NonInvertibleError.
func (r *Ring) inverse(v *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(v, r.n)
	if inv == nil {
		return nil, &NonInvertibleError{
			Value:  new(big.Int).Set(v),
			Factor: new(big.Int).GCD(nil, nil, v, r.n),
		}
	}
	return inv, nil
}

// Poly is a polynomial over a Ring. c[i] is the coefficient of x^i and the
// slice never ends in a zero coefficient.
type Poly struct {
	ring *Ring
	c    []*big.Int
}

func (p *Poly) trim() {
	i := len(p.c)
	for i > 0 && p.c[i-1].Sign() == 0 {
		i--
	}
	p.c = p.c[:i]
}

// Ring returns the ring p belongs to.
func (p *Poly) Ring() *Ring { return p.ring }

// Degree returns the degree of p, or DegreeZero for the zero polynomial.
func (p *Poly) Degree() int { return len(p.c) - 1 }

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool { return len(p.c) == 0 }

// Coefficient returns a copy of the coefficient of x^i.
func (p *Poly) Coefficient(i int) *big.Int {
	if i < 0 || i >= len(p.c) {
		return new(big.Int)
	}
	return new(big.Int).Set(p.c[i])
}

// Coefficients returns copies of all coefficients, low degree first.
func (p *Poly) Coefficients() []*big.Int {
	out := make([]*big.Int, len(p.c))
	for i, v := range p.c {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// Leading returns the leading coefficient (0 for the zero polynomial).
func (p *Poly) Leading() *big.Int { return p.Coefficient(p.Degree()) }

func (p *Poly) check(q *Poly) error {
	if p.ring != q.ring && p.ring.n.Cmp(q.ring.n) != 0 {
		return ErrRingMismatch
	}
	return nil
}

// Add returns p + q.
func (p *Poly) Add(q *Poly) (*Poly, error) {
	if err := p.check(q); err != nil {
		return nil, err
	}
	size := len(p.c)
	if len(q.c) > size {
		size = len(q.c)
	}
	out := make([]*big.Int, size)
	for i := range out {
		v := new(big.Int)
		if i < len(p.c) {
			v.Add(v, p.c[i])
		}
		if i < len(q.c) {
			v.Add(v, q.c[i])
		}
		out[i] = v.Mod(v, p.ring.n)
	}
	return p.ring.wrap(out), nil
}

// Neg returns -p.
func (p *Poly) Neg() *Poly {
	out := make([]*big.Int, len(p.c))
	for i, v := range p.c {
		out[i] = new(big.Int).Neg(v)
		out[i].Mod(out[i], p.ring.n)
	}
	return p.ring.wrap(out)
}

// Sub returns p - q.
func (p *Poly) Sub(q *Poly) (*Poly, error) {
	if err := p.check(q); err != nil {
		return nil, err
	}
	return p.Add(q.Neg())
}

// Scale returns k·p.
func (p *Poly) Scale(k *big.Int) *Poly {
	kk := p.ring.reduce(k)
	out := make([]*big.Int, len(p.c))
	for i, v := range p.c {
		out[i] = new(big.Int).Mul(v, kk)
		out[i].Mod(out[i], p.ring.n)
	}
	return p.ring.wrap(out)
}

// Mul returns p·q, every coefficient reduced mod n.
func (p *Poly) Mul(q *Poly) (*Poly, error) {
	if err := p.check(q); err != nil {
		return nil, err
	}
	if p.IsZero() || q.IsZero() {
		return p.ring.Zero(), nil
	}
	out := make([]*big.Int, len(p.c)+len(q.c)-1)
	for i := range out {
		out[i] = new(big.Int)
	}
	t := new(big.Int)
	for i, a := range p.c {
		if a.Sign() == 0 {
			continue
		}
		for j, b := range q.c {
			out[i+j].Add(out[i+j], t.Mul(a, b))
		}
	}
	for _, v := range out {
		v.Mod(v, p.ring.n)
	}
	return p.ring.wrap(out), nil
}

// Pow returns p^k by repeated squaring.
func (p *Poly) Pow(k *big.Int) (*Poly, error) {
	if k.Sign() < 0 {
		return nil, attack.Precondition(engine, nil, "negative exponent %s", k)
	}
	result := p.ring.Int64s(1)
	base := p
	var err error
	for i := k.BitLen() - 1; i >= 0; i-- {
		if result, err = result.Mul(result); err != nil {
			return nil, err
		}
		if k.Bit(i) == 1 {
			if result, err = result.Mul(base); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// Eval returns p(x) mod n.
func (p *Poly) Eval(x *big.Int) *big.Int {
	xx := p.ring.reduce(x)
	acc := new(big.Int)
	for i := len(p.c) - 1; i >= 0; i-- {
		acc.Mul(acc, xx)
		acc.Add(acc, p.c[i])
		acc.Mod(acc, p.ring.n)
	}
	return acc
}

// Monic divides p by its leading coefficient.
func (p *Poly) Monic() (*Poly, error) {
	if p.IsZero() {
		return p, nil
	}
	inv, err := p.ring.inverse(p.c[len(p.c)-1])
	if err != nil {
		return nil, err
	}
	return p.Scale(inv), nil
}

// DivMod returns quotient and remainder of p / d with deg(rem) < deg(d).
// The leading coefficient of d must be invertible mod n.
func (p *Poly) DivMod(d *Poly) (quo, rem *Poly, err error) {
	if err := p.check(d); err != nil {
		return nil, nil, err
	}
	if d.IsZero() {
		return nil, nil, ErrDivisionByZero
	}
	inv, err := p.ring.inverse(d.c[len(d.c)-1])
	if err != nil {
		return nil, nil, err
	}

	n := p.ring.n
	r := p.Coefficients()
	dd := d.Degree()
	if len(r)-1 < dd {
		return p.ring.Zero(), p, nil
	}

	q := make([]*big.Int, len(r)-dd)
	for i := range q {
		q[i] = new(big.Int)
	}
	t := new(big.Int)
	for top := len(r) - 1; top >= dd; top-- {
		if r[top].Sign() == 0 {
			continue
		}
		coef := new(big.Int).Mul(r[top], inv)
		coef.Mod(coef, n)
		shift := top - dd
		q[shift] = coef
		for j, dc := range d.c {
			r[shift+j].Sub(r[shift+j], t.Mul(coef, dc))
			r[shift+j].Mod(r[shift+j], n)
		}
	}
	return p.ring.wrap(q), p.ring.wrap(r[:dd]), nil
}

// Rem returns p mod d.
func (p *Poly) Rem(d *Poly) (*Poly, error) {
	_, r, err := p.DivMod(d)
	return r, err
}

// GCD runs the Euclidean algorithm on a and b, stopping when the remainder is
// zero or a non-zero constant. The result is the last non-zero remainder and
// is not normalised; call Monic for that. If both inputs are zero the zero
// polynomial is returned.
func GCD(a, b *Poly) (*Poly, error) {
	if err := a.check(b); err != nil {
		return nil, err
	}
	if a.Degree() < b.Degree() {
		a, b = b, a
	}
	for !b.IsZero() {
		if b.Degree() == 0 {
			return b, nil
		}
		r, err := a.Rem(b)
		if err != nil {
			return nil, err
		}
		a, b = b, r
	}
	return a, nil
}

// Equal reports whether p and q have the same modulus and coefficients.
func (p *Poly) Equal(q *Poly) bool {
	if p.check(q) != nil || len(p.c) != len(q.c) {
		return false
	}
	for i := range p.c {
		if p.c[i].Cmp(q.c[i]) != 0 {
			return false
		}
	}
	return true
}

// String renders p highest degree first, e.g. "3x^2 + 1".
func (p *Poly) String() string {
	if p.IsZero() {
		return "0"
	}
	var terms []string
	for i := len(p.c) - 1; i >= 0; i-- {
		v := p.c[i]
		if v.Sign() == 0 {
			continue
		}
		coef := v.String()
		switch {
		case i == 0:
			terms = append(terms, coef)
		case i == 1 && coef == "1":
			terms = append(terms, "x")
		case i == 1:
			terms = append(terms, coef+"x")
		case coef == "1":
			terms = append(terms, fmt.Sprintf("x^%d", i))
		default:
			terms = append(terms, fmt.Sprintf("%sx^%d", coef, i))
		}
	}
	return strings.Join(terms, " + ")
}
