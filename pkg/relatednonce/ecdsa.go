package relatednonce

import (
	"crypto/sha256"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// Secp256k1Order is the order N of the secp256k1 base point.
var Secp256k1Order, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// ECDSASignature is an (r, s) pair with the hash z it signs.
type ECDSASignature struct {
	Z *big.Int // message hash as an integer mod N
	R *big.Int
	S *big.Int
}

// HashMessage hashes a message with SHA-256 and reduces it mod N.
func HashMessage(message []byte) *big.Int {
	h := sha256.Sum256(message)
	z := new(big.Int).SetBytes(h[:])
	return z.Mod(z, Secp256k1Order)
}

// RecoverECDSA solves for the private key of two secp256k1 signatures whose
// nonces satisfy rel.
func RecoverECDSA(sig1, sig2 *ECDSASignature, rel Relation) (*big.Int, error) {
	if err := checkRelation(rel); err != nil {
		return nil, err
	}
	if !validECDSA(sig1) || !validECDSA(sig2) {
		return nil, attack.Precondition(engine, nil, "signature fields must be set")
	}
	n := Secp256k1Order

	// a·s2·z1 − s1·z2 + b·s1·s2
	num := new(big.Int).Mul(rel.A, sig2.S)
	num.Mul(num, sig1.Z)
	num.Sub(num, new(big.Int).Mul(sig1.S, sig2.Z))
	bs := new(big.Int).Mul(rel.B, sig1.S)
	num.Add(num, bs.Mul(bs, sig2.S))

	// r2·s1 − a·r1·s2
	den := new(big.Int).Mul(sig2.R, sig1.S)
	ars := new(big.Int).Mul(rel.A, sig1.R)
	den.Sub(den, ars.Mul(ars, sig2.S))

	return solve(num, den, n)
}

func validECDSA(s *ECDSASignature) bool {
	return s != nil && s.Z != nil && s.R != nil && s.S != nil
}

// VerifyECDSA reports whether priv is the secret behind the compressed or
// uncompressed public key pub.
func VerifyECDSA(priv *big.Int, pub []byte) (bool, error) {
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return false, attack.Precondition(engine, err, "invalid secp256k1 public key")
	}
	return matchesECDSA(priv, key), nil
}

func matchesECDSA(priv *big.Int, pub *secp256k1.PublicKey) bool {
	if priv.Sign() <= 0 || priv.Cmp(Secp256k1Order) >= 0 {
		return false
	}
	var buf [32]byte
	priv.FillBytes(buf[:])
	return secp256k1.PrivKeyFromBytes(buf[:]).PubKey().IsEqual(pub)
}

// ECDSASet is a Scheme over secp256k1 signatures.
type ECDSASet struct {
	pub  *secp256k1.PublicKey
	sigs []*ECDSASignature
}

// NewECDSASet parses pub and checks the signatures.
func NewECDSASet(pub []byte, sigs []*ECDSASignature) (*ECDSASet, error) {
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, attack.Precondition(engine, err, "invalid secp256k1 public key")
	}
	for i, s := range sigs {
		if !validECDSA(s) {
			return nil, attack.Precondition(engine, nil, "signature %d is incomplete", i)
		}
	}
	return &ECDSASet{pub: key, sigs: sigs}, nil
}

// Name implements Scheme.
func (e *ECDSASet) Name() string { return "ecdsa-secp256k1" }

// Count implements Scheme.
func (e *ECDSASet) Count() int { return len(e.sigs) }

// SameNonce implements Scheme. Equal r values mean equal nonces (or k and −k).
func (e *ECDSASet) SameNonce(i, j int) bool {
	return e.sigs[i].R.Cmp(e.sigs[j].R) == 0
}

// Recover implements Scheme.
func (e *ECDSASet) Recover(i, j int, rel Relation) (*big.Int, error) {
	return RecoverECDSA(e.sigs[i], e.sigs[j], rel)
}

// Verify implements Scheme.
func (e *ECDSASet) Verify(priv *big.Int) bool {
	return matchesECDSA(priv, e.pub)
}
