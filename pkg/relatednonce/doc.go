// Package relatednonce recovers a signing key from two signatures whose
// nonces satisfy a known or guessable affine relation k₂ = a·k₁ + b.
//
// The attack is the signature-scheme cousin of Franklin–Reiter: two secrets
// tied by a public affine map leak the key through a single modular division.
//
// ECDSA over secp256k1:
//
//	priv = (a·s₂·z₁ − s₁·z₂ + b·s₁·s₂) / (r₂·s₁ − a·r₁·s₂)  mod N
//
// Ed25519 with nonces drawn outside RFC 8032 (so they can be related):
//
//	priv = (s₂ − a·s₁ − b) / (h₂ − a·h₁)  mod ℓ,   h = SHA-512(R‖A‖M) mod ℓ
//
// # Quick Start
//
//	set, err := relatednonce.NewECDSASet(pubKey, signatures)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := relatednonce.Search(ctx, set, relatednonce.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("key %x via %s\n", res.PrivateKey, res.Pattern)
//
// # Customization
//
//	cfg := relatednonce.DefaultConfig().
//	    WithRanges(relatednonce.Range{A: [2]int{1, 10}, B: [2]int{-50000, 50000}}).
//	    WithPatterns(relatednonce.Pattern{A: big.NewInt(1), B: big.NewInt(12345), Name: "custom_step"}).
//	    WithWorkers(16)
//
// Every candidate is checked against the public key, so Search never reports
// an unverified guess.
package relatednonce
