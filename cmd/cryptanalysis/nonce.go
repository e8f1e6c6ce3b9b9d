package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/cryptanalysis/internal/params"
	"github.com/mahdiidarabi/cryptanalysis/pkg/relatednonce"
)

func newNonceCmd(a *app) *cobra.Command {
	var (
		scheme, pubHex string
		known          string
		aRange, bRange string
		maxPairs       int
		workers        int
		noCommon       bool
	)
	cmd := &cobra.Command{
		Use:   "nonce",
		Short: "Recover a signing key from signatures with related nonces",
		Long: `Reads signatures from --params and searches for k2 = a*k1 + b between any two
nonces: reused nonces first, then common patterns, then the --a-range x --b-range
rectangle. Every candidate key is checked against --pubkey.

ECDSA (secp256k1) records need r, s and either z or message.
Ed25519 records need signature (64 bytes hex) and message.

Example:
  cryptanalysis nonce --params sigs.json --pubkey 03ab...
  cryptanalysis nonce --scheme ed25519 --params sigs.csv --pubkey 3d40... --known 2,1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.paramsFile == "" {
				return errors.New("--params must name the signature file")
			}
			pub, err := hex.DecodeString(strings.TrimPrefix(pubHex, "0x"))
			if err != nil || len(pub) == 0 {
				return errors.New("--pubkey must be the public key as hex")
			}
			records, err := params.ReadFile(a.paramsFile)
			if err != nil {
				return err
			}

			set, err := signatureSet(scheme, pub, records)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if known != "" {
				ka, kb, err := parsePair(known)
				if err != nil {
					return errors.Wrap(err, "--known")
				}
				priv, err := relatednonce.Recover(set, 0, 1, relatednonce.Rel(int64(ka), int64(kb)))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "[+] Recovered private key from signatures 0 and 1")
				fmt.Fprintf(out, "    private key: %x\n", priv)
				return nil
			}

			cfg := relatednonce.DefaultConfig().WithLogger(a.logger).WithWorkers(workers)
			cfg.CommonPatterns = !noCommon
			cfg.MaxPairs = maxPairs
			if aRange != "" || bRange != "" {
				r := relatednonce.Range{A: [2]int{1, 1}, B: [2]int{-100, 100}, Name: "command line"}
				if aRange != "" {
					if r.A[0], r.A[1], err = parsePair(aRange); err != nil {
						return errors.Wrap(err, "--a-range")
					}
				}
				if bRange != "" {
					if r.B[0], r.B[1], err = parsePair(bRange); err != nil {
						return errors.Wrap(err, "--b-range")
					}
				}
				cfg = cfg.WithRanges(r)
			}

			res, err := relatednonce.Search(cmd.Context(), set, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "[+] Successfully recovered private key!")
			fmt.Fprintf(out, "    private key:  %x\n", res.PrivateKey)
			fmt.Fprintf(out, "    relationship: %s\n", res.Relation)
			fmt.Fprintf(out, "    pair:         (%d, %d)\n", res.Pair[0], res.Pair[1])
			fmt.Fprintf(out, "    pattern:      %s\n", res.Pattern)
			return nil
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "ecdsa", "signature scheme: ecdsa or ed25519")
	cmd.Flags().StringVar(&pubHex, "pubkey", "", "public key as hex (33/65-byte secp256k1 or 32-byte ed25519)")
	cmd.Flags().StringVar(&known, "known", "", "known relation as a,b; skips the search")
	cmd.Flags().StringVar(&aRange, "a-range", "", "range of a as min,max (replaces the default ladder)")
	cmd.Flags().StringVar(&bRange, "b-range", "", "range of b as min,max (replaces the default ladder)")
	cmd.Flags().IntVar(&maxPairs, "max-pairs", 100, "signature pairs visited by the range search")
	cmd.Flags().IntVar(&workers, "workers", 0, "range search workers (0 = 16)")
	cmd.Flags().BoolVar(&noCommon, "no-common", false, "skip the built-in patterns")
	if err := cmd.MarkFlagRequired("pubkey"); err != nil {
		panic(err)
	}
	return cmd
}

func signatureSet(scheme string, pub []byte, records []params.Record) (relatednonce.Scheme, error) {
	switch strings.ToLower(scheme) {
	case "ecdsa", "secp256k1":
		sigs := make([]*relatednonce.ECDSASignature, len(records))
		for i, rec := range records {
			rs, err := rec.Ints("r", "s")
			if err != nil {
				return nil, errors.Wrapf(err, "signature %d", i)
			}
			var z *big.Int
			if rec.Has("z") {
				if z, err = rec.Int("z"); err != nil {
					return nil, errors.Wrapf(err, "signature %d", i)
				}
			} else {
				msg, err := rec.String("message")
				if err != nil {
					return nil, errors.Wrapf(err, "signature %d needs z or message", i)
				}
				z = relatednonce.HashMessage([]byte(msg))
			}
			sigs[i] = &relatednonce.ECDSASignature{Z: z, R: rs[0], S: rs[1]}
		}
		return relatednonce.NewECDSASet(pub, sigs)

	case "ed25519", "eddsa":
		sigs := make([]*relatednonce.EdDSASignature, len(records))
		for i, rec := range records {
			raw, err := rec.Bytes("signature")
			if err != nil {
				return nil, errors.Wrapf(err, "signature %d", i)
			}
			msg, err := rec.String("message")
			if err != nil {
				return nil, errors.Wrapf(err, "signature %d", i)
			}
			if sigs[i], err = relatednonce.ParseEdDSASignature(raw, []byte(msg)); err != nil {
				return nil, err
			}
		}
		return relatednonce.NewEdDSASet(pub, sigs)

	default:
		return nil, errors.Errorf("unknown scheme %q (want ecdsa or ed25519)", scheme)
	}
}

func parsePair(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("invalid pair format: %s", s)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}
	return lo, hi, nil
}
