// Package keygen builds deliberately weak key material for demos and tests:
// RSA keys with a tiny private exponent, related-message RSA instances and
// semiprimes with a small factor.
package keygen

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

var (
	one   = big.NewInt(1)
	three = big.NewInt(3)
)

// WienerKey is an RSA key whose private exponent is below n^(1/4)/3.
type WienerKey struct {
	N, E, D, P, Q *big.Int
}

// Wiener generates a bits-sized RSA modulus with a private exponent small
// enough for Wiener's attack. bits must be at least 32.
func Wiener(random io.Reader, bits int) (*WienerKey, error) {
	if bits < 32 {
		return nil, errors.Errorf("keygen: modulus of %d bits is too small", bits)
	}
	if random == nil {
		random = rand.Reader
	}

	for attempt := 0; attempt < 1000; attempt++ {
		p, q, err := primePair(random, bits)
		if err != nil {
			return nil, err
		}
		n := new(big.Int).Mul(p, q)
		phi := totient(p, q)

		// d < ⌊n^(1/4)⌋/3, drawn from the upper half so it is not trivially tiny
		limit := new(big.Int).Sqrt(n)
		limit.Sqrt(limit)
		limit.Div(limit, three)
		if limit.Cmp(big.NewInt(8)) < 0 {
			continue
		}
		half := new(big.Int).Rsh(limit, 1)

		for try := 0; try < 64; try++ {
			d, err := rand.Int(random, new(big.Int).Sub(limit, half))
			if err != nil {
				return nil, errors.Wrap(err, "keygen: draw private exponent")
			}
			d.Add(d, half)
			d.SetBit(d, 0, 1)
			if d.Cmp(limit) >= 0 {
				continue
			}
			e := new(big.Int).ModInverse(d, phi)
			if e == nil {
				continue
			}
			return &WienerKey{N: n, E: e, D: d, P: p, Q: q}, nil
		}
	}
	return nil, errors.New("keygen: could not find a small private exponent")
}

// LargeExponentKey generates an RSA key whose private exponent is about
// sqrt(n), far outside Wiener's bound.
func LargeExponentKey(random io.Reader, bits int) (*WienerKey, error) {
	if random == nil {
		random = rand.Reader
	}
	for attempt := 0; attempt < 1000; attempt++ {
		p, q, err := primePair(random, bits)
		if err != nil {
			return nil, err
		}
		n := new(big.Int).Mul(p, q)
		phi := totient(p, q)

		d, err := rand.Int(random, new(big.Int).Lsh(one, uint(bits/2)))
		if err != nil {
			return nil, errors.Wrap(err, "keygen: draw private exponent")
		}
		d.SetBit(d, bits/2-1, 1)
		d.SetBit(d, 0, 1)
		e := new(big.Int).ModInverse(d, phi)
		if e == nil {
			continue
		}
		return &WienerKey{N: n, E: e, D: d, P: p, Q: q}, nil
	}
	return nil, errors.New("keygen: could not find an invertible private exponent")
}

// RelatedMessages is a Franklin–Reiter instance: m2 = a·m1 + b (mod n),
// both encrypted with exponent e under the same modulus.
type RelatedMessages struct {
	N, E           *big.Int
	M1, M2, C1, C2 *big.Int
	A, B           *big.Int
}

// FranklinReiter generates a related-message instance with e = 3, a random
// a invertible mod n and a random non-zero b.
func FranklinReiter(random io.Reader, bits int) (*RelatedMessages, error) {
	if random == nil {
		random = rand.Reader
	}
	p, q, err := primePair(random, bits)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).Mul(p, q)

	m1, err := rand.Int(random, n)
	if err != nil {
		return nil, errors.Wrap(err, "keygen: draw message")
	}

	var a, b *big.Int
	for {
		a, err = rand.Int(random, n)
		if err != nil {
			return nil, errors.Wrap(err, "keygen: draw relation")
		}
		if a.Sign() != 0 && new(big.Int).GCD(nil, nil, a, n).Cmp(one) == 0 {
			break
		}
	}
	for {
		b, err = rand.Int(random, n)
		if err != nil {
			return nil, errors.Wrap(err, "keygen: draw relation")
		}
		if b.Sign() != 0 {
			break
		}
	}

	return Related(n, three, m1, a, b), nil
}

// Related encrypts m1 and a·m1 + b under (n, e).
func Related(n, e, m1, a, b *big.Int) *RelatedMessages {
	m2 := new(big.Int).Mul(a, m1)
	m2.Add(m2, b)
	m2.Mod(m2, n)
	return &RelatedMessages{
		N:  new(big.Int).Set(n),
		E:  new(big.Int).Set(e),
		M1: new(big.Int).Set(m1),
		M2: m2,
		C1: new(big.Int).Exp(m1, e, n),
		C2: new(big.Int).Exp(m2, e, n),
		A:  new(big.Int).Set(a),
		B:  new(big.Int).Set(b),
	}
}

// Semiprime returns p·q with p a smallBits-bit prime and q a largeBits-bit
// prime, the shape Pollard's rho is good at.
func Semiprime(random io.Reader, smallBits, largeBits int) (n, p, q *big.Int, err error) {
	if random == nil {
		random = rand.Reader
	}
	p, err = rand.Prime(random, smallBits)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "keygen: small prime")
	}
	for {
		q, err = rand.Prime(random, largeBits)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "keygen: large prime")
		}
		if q.Cmp(p) != 0 {
			break
		}
	}
	return new(big.Int).Mul(p, q), p, q, nil
}

func primePair(random io.Reader, bits int) (p, q *big.Int, err error) {
	for {
		p, err = rand.Prime(random, bits/2)
		if err != nil {
			return nil, nil, errors.Wrap(err, "keygen: generate p")
		}
		q, err = rand.Prime(random, bits-bits/2)
		if err != nil {
			return nil, nil, errors.Wrap(err, "keygen: generate q")
		}
		if p.Cmp(q) != 0 {
			break
		}
	}
	if p.Cmp(q) < 0 {
		p, q = q, p
	}
	return p, q, nil
}

func totient(p, q *big.Int) *big.Int {
	pm := new(big.Int).Sub(p, one)
	qm := new(big.Int).Sub(q, one)
	return pm.Mul(pm, qm)
}
