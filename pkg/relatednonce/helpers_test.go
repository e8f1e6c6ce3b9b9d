package relatednonce

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func randomScalar(t *testing.T, order *big.Int) *big.Int {
	t.Helper()
	v, err := rand.Int(rand.Reader, new(big.Int).Sub(order, big.NewInt(1)))
	if err != nil {
		t.Fatalf("Failed to generate scalar: %v", err)
	}
	return v.Add(v, big.NewInt(1))
}

// affine returns a·k + b mod order.
func affine(k *big.Int, rel Relation, order *big.Int) *big.Int {
	v := new(big.Int).Mul(rel.A, k)
	v.Add(v, rel.B)
	return v.Mod(v, order)
}

type ecdsaKey struct {
	priv *big.Int
	pub  []byte // compressed
}

func newECDSAKey(t *testing.T) ecdsaKey {
	t.Helper()
	d := randomScalar(t, Secp256k1Order)
	var buf [32]byte
	d.FillBytes(buf[:])
	return ecdsaKey{priv: d, pub: secp256k1.PrivKeyFromBytes(buf[:]).PubKey().SerializeCompressed()}
}

// signECDSA signs message with the caller's nonce k.
func signECDSA(t *testing.T, key ecdsaKey, message string, k *big.Int) *ECDSASignature {
	t.Helper()
	n := Secp256k1Order
	var kb [32]byte
	k.FillBytes(kb[:])
	r := new(big.Int).Mod(secp256k1.PrivKeyFromBytes(kb[:]).PubKey().X(), n)

	z := HashMessage([]byte(message))
	s := new(big.Int).Mul(r, key.priv)
	s.Add(s, z)
	s.Mul(s, new(big.Int).ModInverse(k, n))
	s.Mod(s, n)
	if r.Sign() == 0 || s.Sign() == 0 {
		t.Fatal("degenerate test signature")
	}
	return &ECDSASignature{Z: z, R: r, S: s}
}

// relatedECDSA signs count messages with k_{i+1} = a·k_i + b.
func relatedECDSA(t *testing.T, key ecdsaKey, rel Relation, count int) []*ECDSASignature {
	t.Helper()
	k := randomScalar(t, Secp256k1Order)
	sigs := make([]*ECDSASignature, count)
	for i := range sigs {
		sigs[i] = signECDSA(t, key, fmt.Sprintf("message %d", i), k)
		k = affine(k, rel, Secp256k1Order)
	}
	return sigs
}

type eddsaKey struct {
	priv *big.Int
	pub  []byte
}

func newEdDSAKey(t *testing.T) eddsaKey {
	t.Helper()
	a := randomScalar(t, Ed25519Order)
	pub, err := PublicKeyFromScalar(a)
	if err != nil {
		t.Fatalf("Failed to derive public key: %v", err)
	}
	return eddsaKey{priv: a, pub: pub}
}

// signEdDSA computes s = r + H(R‖A‖M)·a with the caller's nonce r.
func signEdDSA(t *testing.T, key eddsaKey, message string, r *big.Int) *EdDSASignature {
	t.Helper()
	rPoint, err := PublicKeyFromScalar(r)
	if err != nil {
		t.Fatalf("Failed to compute nonce point: %v", err)
	}
	h := Challenge(rPoint, key.pub, []byte(message))
	s := new(big.Int).Mul(h, key.priv)
	s.Add(s, r)
	s.Mod(s, Ed25519Order)
	return &EdDSASignature{R: rPoint, S: s, Message: []byte(message)}
}

func relatedEdDSA(t *testing.T, key eddsaKey, rel Relation, count int) []*EdDSASignature {
	t.Helper()
	r := randomScalar(t, Ed25519Order)
	sigs := make([]*EdDSASignature, count)
	for i := range sigs {
		sigs[i] = signEdDSA(t, key, fmt.Sprintf("message %d", i), r)
		r = affine(r, rel, Ed25519Order)
	}
	return sigs
}
