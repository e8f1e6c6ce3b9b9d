package franklinreiter

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/cryptanalysis/internal/keygen"
	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

func TestAttack_SmallModulus(t *testing.T) {
	// n = 1009·1013, m2 = 5·m1 + 17
	n := big.NewInt(1009 * 1013)
	inst := keygen.Related(n, big.NewInt(3), big.NewInt(123456), big.NewInt(5), big.NewInt(17))

	res, err := Attack(inst.N, inst.E, inst.C1, inst.C2, inst.A, inst.B, Config{})
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}
	if res.M1.Int64() != 123456 {
		t.Errorf("M1 = %s, want 123456", res.M1)
	}
	if res.M2.Cmp(inst.M2) != 0 {
		t.Errorf("M2 = %s, want %s", res.M2, inst.M2)
	}
	if res.GCD.Degree() != 1 {
		t.Errorf("gcd degree = %d, want 1", res.GCD.Degree())
	}
}

func TestAttack_RandomRoundTrips(t *testing.T) {
	for _, bits := range []int{64, 128, 256, 512} {
		bits := bits
		t.Run(fmt.Sprintf("%d-bit", bits), func(t *testing.T) {
			for trial := 0; trial < 25; trial++ {
				inst, err := keygen.FranklinReiter(nil, bits)
				if err != nil {
					t.Fatalf("Failed to generate instance: %v", err)
				}

				res, err := Attack(inst.N, inst.E, inst.C1, inst.C2, inst.A, inst.B, Config{})
				if err != nil {
					t.Fatalf("Attack failed (m1=%s a=%s b=%s): %v", inst.M1, inst.A, inst.B, err)
				}
				if res.M1.Cmp(inst.M1) != 0 || res.M2.Cmp(inst.M2) != 0 {
					t.Errorf("Recovered (%s, %s), expected (%s, %s)", res.M1, res.M2, inst.M1, inst.M2)
				}
			}
		})
	}
}

func TestAttack_LargerExponent(t *testing.T) {
	n := new(big.Int).Mul(big.NewInt(1000003), big.NewInt(1000033))
	inst := keygen.Related(n, big.NewInt(17), big.NewInt(424242), big.NewInt(3), big.NewInt(99))

	res, err := Attack(inst.N, inst.E, inst.C1, inst.C2, inst.A, inst.B, Config{})
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}
	if res.M1.Cmp(inst.M1) != 0 {
		t.Errorf("M1 = %s, want %s", res.M1, inst.M1)
	}
}

func TestAttack_NonInvertibleRelation(t *testing.T) {
	p, q := big.NewInt(1009), big.NewInt(1013)
	n := new(big.Int).Mul(p, q)
	inst := keygen.Related(n, big.NewInt(3), big.NewInt(4242), p, big.NewInt(7))

	_, err := Attack(inst.N, inst.E, inst.C1, inst.C2, inst.A, inst.B, Config{})
	if !attack.IsKind(err, attack.KindPrecondition) {
		t.Fatalf("Expected precondition failure, got %v", err)
	}
	if !errors.Is(err, ErrNonInvertibleRelation) {
		t.Errorf("Expected ErrNonInvertibleRelation in chain, got %v", err)
	}
}

func TestAttack_IdenticalMessagesAreDegenerate(t *testing.T) {
	// b = 0 and a = 1 make g2 equal to g1, so the gcd keeps degree e.
	n := big.NewInt(1009 * 1013)
	inst := keygen.Related(n, big.NewInt(3), big.NewInt(31337), big.NewInt(1), big.NewInt(0))

	_, err := Attack(inst.N, inst.E, inst.C1, inst.C2, inst.A, inst.B, Config{})
	if !attack.IsKind(err, attack.KindDegenerateResult) {
		t.Fatalf("Expected degenerate result, got %v", err)
	}
	if !errors.Is(err, ErrDegenerateGCD) {
		t.Errorf("Expected ErrDegenerateGCD in chain, got %v", err)
	}
}

func TestAttack_ExponentCap(t *testing.T) {
	n := big.NewInt(1009 * 1013)
	one := big.NewInt(1)

	_, err := Attack(n, big.NewInt(65537), one, one, one, one, Config{})
	if !attack.IsKind(err, attack.KindPrecondition) {
		t.Errorf("Expected precondition failure for e above the default cap, got %v", err)
	}

	_, err = Attack(n, big.NewInt(5), one, one, one, one, Config{MaxExponent: 3})
	if !attack.IsKind(err, attack.KindPrecondition) {
		t.Errorf("Expected precondition failure for e above a custom cap, got %v", err)
	}
}

func TestAttack_Preconditions(t *testing.T) {
	n := big.NewInt(1009 * 1013)
	one := big.NewInt(1)

	tests := []struct {
		name string
		n, e *big.Int
	}{
		{"modulus too small", big.NewInt(1), big.NewInt(3)},
		{"zero exponent", n, big.NewInt(0)},
		{"nil modulus", nil, big.NewInt(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Attack(tt.n, tt.e, one, one, one, one, Config{})
			if !attack.IsKind(err, attack.KindPrecondition) {
				t.Errorf("Expected precondition failure, got %v", err)
			}
		})
	}
}
