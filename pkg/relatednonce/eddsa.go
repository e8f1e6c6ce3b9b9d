package relatednonce

import (
	"bytes"
	"crypto/sha512"
	"math/big"

	"filippo.io/edwards25519"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// Ed25519Order is ℓ, the order of the Ed25519 base point.
var Ed25519Order, _ = new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

// EdDSASignature is an Ed25519 signature with the message it signs.
type EdDSASignature struct {
	R       []byte   // encoded nonce point, 32 bytes
	S       *big.Int // scalar half of the signature
	Message []byte
}

// ParseEdDSASignature splits a 64-byte R‖S signature.
func ParseEdDSASignature(sig, message []byte) (*EdDSASignature, error) {
	if len(sig) != 64 {
		return nil, attack.Precondition(engine, nil, "ed25519 signature must be 64 bytes, got %d", len(sig))
	}
	return &EdDSASignature{
		R:       append([]byte(nil), sig[:32]...),
		S:       fromLittleEndian(sig[32:]),
		Message: append([]byte(nil), message...),
	}, nil
}

// Challenge computes h = SHA-512(R‖A‖M) mod ℓ.
func Challenge(r, pub, message []byte) *big.Int {
	d := sha512.New()
	d.Write(r)
	d.Write(pub)
	d.Write(message)
	h, _ := edwards25519.NewScalar().SetUniformBytes(d.Sum(nil))
	return fromLittleEndian(h.Bytes())
}

// RecoverEdDSA solves for the secret scalar behind pub given two signatures
// whose nonces satisfy rel.
func RecoverEdDSA(pub []byte, sig1, sig2 *EdDSASignature, rel Relation) (*big.Int, error) {
	if err := checkRelation(rel); err != nil {
		return nil, err
	}
	if len(pub) != 32 {
		return nil, attack.Precondition(engine, nil, "ed25519 public key must be 32 bytes, got %d", len(pub))
	}
	if !validEdDSA(sig1) || !validEdDSA(sig2) {
		return nil, attack.Precondition(engine, nil, "signature fields must be set")
	}
	h1 := Challenge(sig1.R, pub, sig1.Message)
	h2 := Challenge(sig2.R, pub, sig2.Message)

	// s2 − a·s1 − b
	num := new(big.Int).Mul(rel.A, sig1.S)
	num.Sub(sig2.S, num)
	num.Sub(num, rel.B)

	// h2 − a·h1
	den := new(big.Int).Mul(rel.A, h1)
	den.Sub(h2, den)

	return solve(num, den, Ed25519Order)
}

func validEdDSA(s *EdDSASignature) bool {
	return s != nil && len(s.R) == 32 && s.S != nil
}

// VerifyEdDSA reports whether priv·B encodes to pub.
func VerifyEdDSA(priv *big.Int, pub []byte) (bool, error) {
	expected, err := edwards25519.NewIdentityPoint().SetBytes(pub)
	if err != nil {
		return false, attack.Precondition(engine, err, "invalid ed25519 public key")
	}
	return matchesEdDSA(priv, expected), nil
}

func matchesEdDSA(priv *big.Int, pub *edwards25519.Point) bool {
	s, err := scalarOf(priv)
	if err != nil {
		return false
	}
	return edwards25519.NewIdentityPoint().ScalarBaseMult(s).Equal(pub) == 1
}

// scalarOf converts 0 < v < ℓ into an edwards25519 scalar.
func scalarOf(v *big.Int) (*edwards25519.Scalar, error) {
	if v.Sign() <= 0 || v.Cmp(Ed25519Order) >= 0 {
		return nil, attack.Precondition(engine, nil, "scalar out of range")
	}
	return edwards25519.NewScalar().SetCanonicalBytes(toLittleEndian(v))
}

// PublicKeyFromScalar returns the encoding of priv·B.
func PublicKeyFromScalar(priv *big.Int) ([]byte, error) {
	s, err := scalarOf(priv)
	if err != nil {
		return nil, err
	}
	return edwards25519.NewIdentityPoint().ScalarBaseMult(s).Bytes(), nil
}

// EdDSASet is a Scheme over Ed25519 signatures.
type EdDSASet struct {
	pubBytes []byte
	pub      *edwards25519.Point
	sigs     []*EdDSASignature
}

// NewEdDSASet parses pub and checks the signatures.
func NewEdDSASet(pub []byte, sigs []*EdDSASignature) (*EdDSASet, error) {
	point, err := edwards25519.NewIdentityPoint().SetBytes(pub)
	if err != nil {
		return nil, attack.Precondition(engine, err, "invalid ed25519 public key")
	}
	for i, s := range sigs {
		if !validEdDSA(s) {
			return nil, attack.Precondition(engine, nil, "signature %d is incomplete", i)
		}
	}
	return &EdDSASet{pubBytes: append([]byte(nil), pub...), pub: point, sigs: sigs}, nil
}

// Name implements Scheme.
func (e *EdDSASet) Name() string { return "ed25519" }

// Count implements Scheme.
func (e *EdDSASet) Count() int { return len(e.sigs) }

// SameNonce implements Scheme.
func (e *EdDSASet) SameNonce(i, j int) bool {
	return bytes.Equal(e.sigs[i].R, e.sigs[j].R)
}

// Recover implements Scheme.
func (e *EdDSASet) Recover(i, j int, rel Relation) (*big.Int, error) {
	return RecoverEdDSA(e.pubBytes, e.sigs[i], e.sigs[j], rel)
}

// Verify implements Scheme.
func (e *EdDSASet) Verify(priv *big.Int) bool {
	return matchesEdDSA(priv, e.pub)
}

// Ed25519 encodes integers little-endian.
func toLittleEndian(v *big.Int) []byte {
	out := make([]byte, 32)
	v.FillBytes(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func fromLittleEndian(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	return new(big.Int).SetBytes(be)
}
