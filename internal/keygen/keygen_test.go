package keygen

import (
	"math/big"
	"testing"
)

func TestWiener(t *testing.T) {
	for _, bits := range []int{32, 64, 256} {
		k, err := Wiener(nil, bits)
		if err != nil {
			t.Fatalf("Wiener(%d) failed: %v", bits, err)
		}
		if new(big.Int).Mul(k.P, k.Q).Cmp(k.N) != 0 {
			t.Errorf("%d bits: p·q != n", bits)
		}
		if !k.P.ProbablyPrime(20) || !k.Q.ProbablyPrime(20) {
			t.Errorf("%d bits: factors are not prime", bits)
		}
		ed := new(big.Int).Mul(k.E, k.D)
		if ed.Mod(ed, totient(k.P, k.Q)).Cmp(one) != 0 {
			t.Errorf("%d bits: e·d != 1 mod φ(n)", bits)
		}

		// 81·d⁴ < n  ⇔  d < n^(1/4)/3
		d4 := new(big.Int).Exp(k.D, big.NewInt(4), nil)
		if d4.Mul(d4, big.NewInt(81)).Cmp(k.N) >= 0 {
			t.Errorf("%d bits: d = %s is above the Wiener bound", bits, k.D)
		}
	}

	if _, err := Wiener(nil, 16); err == nil {
		t.Error("Wiener should reject tiny moduli")
	}
}

func TestLargeExponentKey(t *testing.T) {
	k, err := LargeExponentKey(nil, 128)
	if err != nil {
		t.Fatalf("LargeExponentKey failed: %v", err)
	}
	if k.D.BitLen() != 64 {
		t.Errorf("d has %d bits, want 64", k.D.BitLen())
	}
	ed := new(big.Int).Mul(k.E, k.D)
	if ed.Mod(ed, totient(k.P, k.Q)).Cmp(one) != 0 {
		t.Error("e·d != 1 mod φ(n)")
	}
}

func TestFranklinReiter(t *testing.T) {
	r, err := FranklinReiter(nil, 128)
	if err != nil {
		t.Fatalf("FranklinReiter failed: %v", err)
	}
	if r.E.Cmp(three) != 0 {
		t.Errorf("e = %s, want 3", r.E)
	}
	if r.B.Sign() == 0 {
		t.Error("b must be non-zero")
	}
	if new(big.Int).GCD(nil, nil, r.A, r.N).Cmp(one) != 0 {
		t.Error("a must be invertible mod n")
	}

	m2 := new(big.Int).Mul(r.A, r.M1)
	m2.Add(m2, r.B).Mod(m2, r.N)
	if m2.Cmp(r.M2) != 0 {
		t.Error("m2 != a·m1 + b mod n")
	}
	if new(big.Int).Exp(r.M1, r.E, r.N).Cmp(r.C1) != 0 || new(big.Int).Exp(r.M2, r.E, r.N).Cmp(r.C2) != 0 {
		t.Error("ciphertexts do not match the messages")
	}
}

func TestRelated_CopiesInputs(t *testing.T) {
	n := big.NewInt(1009 * 1013)
	m1 := big.NewInt(4242)
	r := Related(n, big.NewInt(3), m1, big.NewInt(5), big.NewInt(17))
	m1.SetInt64(0)
	if r.M1.Int64() != 4242 {
		t.Error("Related must not alias its inputs")
	}
	if r.M2.Int64() != 5*4242+17 {
		t.Errorf("m2 = %s", r.M2)
	}
}

func TestSemiprime(t *testing.T) {
	n, p, q, err := Semiprime(nil, 20, 40)
	if err != nil {
		t.Fatalf("Semiprime failed: %v", err)
	}
	if p.BitLen() != 20 || q.BitLen() != 40 {
		t.Errorf("factor sizes %d and %d bits, want 20 and 40", p.BitLen(), q.BitLen())
	}
	if new(big.Int).Mul(p, q).Cmp(n) != 0 {
		t.Error("p·q != n")
	}
}
