package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mahdiidarabi/cryptanalysis/internal/keygen"
	"github.com/mahdiidarabi/cryptanalysis/pkg/relatednonce"
)

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestRho(t *testing.T) {
	out, err := runCLI(t, "", "rho", "--n", "10403")
	if err != nil {
		t.Fatalf("rho failed: %v", err)
	}
	if !strings.Contains(out, "10403 = 101 * 103") && !strings.Contains(out, "10403 = 103 * 101") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out, err = runCLI(t, "", "rho", "--all", "--n", "23999663998776")
	if err != nil {
		t.Fatalf("rho --all failed: %v", err)
	}
	if !strings.Contains(out, "= 2 * 2 * 2 * 3 * 999983 * 1000003") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestWiener_ParamsFile(t *testing.T) {
	key, err := keygen.Wiener(nil, 256)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	path := writeFile(t, "key.json", fmt.Sprintf(`{"n": %s, "e": "0x%x"}`, key.N, key.E))

	out, err := runCLI(t, "", "wiener", "--params", path)
	if err != nil {
		t.Fatalf("wiener failed: %v", err)
	}
	if !strings.Contains(out, "d = "+key.D.String()) {
		t.Errorf("Expected d = %s in output:\n%s", key.D, out)
	}
}

func TestWiener_MissingModulus(t *testing.T) {
	_, err := runCLI(t, "", "wiener", "--e", "17")
	if err == nil || !strings.Contains(err.Error(), "--n") {
		t.Errorf("Expected an error naming --n, got %v", err)
	}
}

func TestFranklinReiter_Flags(t *testing.T) {
	r, err := keygen.FranklinReiter(nil, 128)
	if err != nil {
		t.Fatalf("Failed to generate instance: %v", err)
	}
	out, err := runCLI(t, "", "franklin-reiter",
		"--n", r.N.String(), "--e", "3",
		"--c1", r.C1.String(), "--c2", r.C2.String(),
		"--a", r.A.String(), "--b", r.B.String())
	if err != nil {
		t.Fatalf("franklin-reiter failed: %v", err)
	}
	if !strings.Contains(out, "m1 = "+r.M1.String()) {
		t.Errorf("Expected m1 = %s in output:\n%s", r.M1, out)
	}
}

func TestGen_RoundTrip(t *testing.T) {
	out, err := runCLI(t, "", "gen", "rho", "--small-bits", "16", "--large-bits", "32")
	if err != nil {
		t.Fatalf("gen rho failed: %v", err)
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(out), &values); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	for _, k := range []string{"n", "p", "q"} {
		if values[k] == "" {
			t.Errorf("missing %q in %v", k, values)
		}
	}

	path := writeFile(t, "rho.json", out)
	out, err = runCLI(t, "", "rho", "--params", path)
	if err != nil {
		t.Fatalf("rho --params failed: %v", err)
	}
	if !strings.Contains(out, values["p"]) {
		t.Errorf("Expected factor %s in output:\n%s", values["p"], out)
	}
}

func TestPadding_InProcess(t *testing.T) {
	msg := "attack at dawn, bring the blowfish"
	for _, alg := range []string{"aes", "blowfish"} {
		t.Run(alg, func(t *testing.T) {
			out, err := runCLI(t, "", "padding", "--alg", alg, "--key", "000102030405060708090a0b0c0d0e0f", "--message", msg)
			if err != nil {
				t.Fatalf("padding failed: %v", err)
			}
			if !strings.Contains(out, fmt.Sprintf("%q", msg)) {
				t.Errorf("Expected the message in output:\n%s", out)
			}
		})
	}
}

func TestVigenere_EncryptThenAnalyze(t *testing.T) {
	plain, err := os.ReadFile(filepath.Join("..", "..", "pkg", "vigenere", "testdata", "english.txt"))
	if err != nil {
		t.Fatalf("Failed to read sample text: %v", err)
	}
	path := writeFile(t, "plain.txt", string(plain))

	ct, err := runCLI(t, "", "vigenere", "--encrypt", "ORCHID", "--file", path)
	if err != nil {
		t.Fatalf("vigenere --encrypt failed: %v", err)
	}

	out, err := runCLI(t, ct, "vigenere")
	if err != nil {
		t.Fatalf("vigenere failed: %v", err)
	}
	if !strings.Contains(out, "Key: ORCHID (length 6)") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestNonce_EdDSA(t *testing.T) {
	priv, err := rand.Int(rand.Reader, relatednonce.Ed25519Order)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	priv.Add(priv, big.NewInt(1)).Mod(priv, relatednonce.Ed25519Order)
	pub, err := relatednonce.PublicKeyFromScalar(priv)
	if err != nil {
		t.Fatalf("Failed to derive public key: %v", err)
	}

	// k2 = 2·k1 + 1
	k := big.NewInt(123456789)
	var records []map[string]string
	for i := 0; i < 2; i++ {
		msg := fmt.Sprintf("payment %d", i)
		rPoint, err := relatednonce.PublicKeyFromScalar(k)
		if err != nil {
			t.Fatalf("Failed to compute nonce point: %v", err)
		}
		s := relatednonce.Challenge(rPoint, pub, []byte(msg))
		s.Mul(s, priv).Add(s, k).Mod(s, relatednonce.Ed25519Order)

		sBytes := make([]byte, 32)
		s.FillBytes(sBytes)
		for l, r := 0, 31; l < r; l, r = l+1, r-1 {
			sBytes[l], sBytes[r] = sBytes[r], sBytes[l]
		}
		records = append(records, map[string]string{
			"signature": hex.EncodeToString(append(rPoint, sBytes...)),
			"message":   msg,
		})
		k = new(big.Int).Add(new(big.Int).Lsh(k, 1), big.NewInt(1))
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("Failed to encode signatures: %v", err)
	}
	path := writeFile(t, "sigs.json", string(data))

	out, err := runCLI(t, "", "nonce", "--scheme", "ed25519", "--params", path, "--pubkey", hex.EncodeToString(pub))
	if err != nil {
		t.Fatalf("nonce failed: %v", err)
	}
	if !strings.Contains(out, fmt.Sprintf("%x", priv)) || !strings.Contains(out, "multiply_2_+1") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out, err = runCLI(t, "", "nonce", "--scheme", "ed25519", "--params", path, "--pubkey", hex.EncodeToString(pub), "--known", "2,1")
	if err != nil {
		t.Fatalf("nonce --known failed: %v", err)
	}
	if !strings.Contains(out, fmt.Sprintf("%x", priv)) {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestNonce_RequiresParams(t *testing.T) {
	if _, err := runCLI(t, "", "nonce", "--pubkey", "02ab"); err == nil {
		t.Error("Expected an error without --params")
	}
}
