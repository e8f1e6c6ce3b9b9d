package relatednonce

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

const engine = "related-nonce"

var (
	// ErrZeroDenominator is wrapped when a relation makes the key equation
	// singular for a signature pair.
	ErrZeroDenominator = errors.New("denominator is zero")

	// ErrKeyOutOfRange is wrapped when the equation yields 0.
	ErrKeyOutOfRange = errors.New("recovered key out of range")
)

// Relation is the affine map between two nonces: k₂ = A·k₁ + B.
type Relation struct {
	A *big.Int
	B *big.Int
}

// Rel is shorthand for a Relation with small coefficients.
func Rel(a, b int64) Relation {
	return Relation{A: big.NewInt(a), B: big.NewInt(b)}
}

func (r Relation) String() string {
	return fmt.Sprintf("k2 = %s·k1 + %s", r.A, r.B)
}

// Scheme is a set of signatures under one public key.
type Scheme interface {
	// Name identifies the signature scheme ("ecdsa-secp256k1", "ed25519").
	Name() string
	// Count is the number of signatures in the set.
	Count() int
	// SameNonce reports whether signatures i and j visibly share a nonce.
	SameNonce(i, j int) bool
	// Recover solves the key equation for signatures i and j under rel.
	Recover(i, j int, rel Relation) (*big.Int, error)
	// Verify reports whether priv matches the public key.
	Verify(priv *big.Int) bool
}

// Result is a verified key.
type Result struct {
	PrivateKey *big.Int
	Relation   Relation
	Pair       [2]int // indices of the signature pair used
	Pattern    string // phase or pattern that matched
	Tested     int64  // candidate relations tried in the range phase
}

// solve returns num/den mod order, or a degenerate failure.
func solve(num, den, order *big.Int) (*big.Int, error) {
	num = new(big.Int).Mod(num, order)
	den = new(big.Int).Mod(den, order)
	if den.Sign() == 0 {
		return nil, attack.Fail(engine, attack.KindDegenerateResult, ErrZeroDenominator,
			"relation makes the key equation singular")
	}
	inv := new(big.Int).ModInverse(den, order)
	if inv == nil {
		return nil, attack.Fail(engine, attack.KindDegenerateResult, ErrZeroDenominator,
			"denominator %s is not invertible", den)
	}
	priv := inv.Mul(inv, num)
	priv.Mod(priv, order)
	if priv.Sign() == 0 {
		return nil, attack.Fail(engine, attack.KindDegenerateResult, ErrKeyOutOfRange, "key equation yields 0")
	}
	return priv, nil
}

func checkRelation(rel Relation) error {
	if rel.A == nil || rel.B == nil {
		return attack.Precondition(engine, nil, "relation coefficients must not be nil")
	}
	return nil
}
