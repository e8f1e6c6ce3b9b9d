package main

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/cryptanalysis/internal/keygen"
)

func newGenCmd(a *app) *cobra.Command {
	gen := &cobra.Command{
		Use:   "gen",
		Short: "Generate vulnerable key material as a JSON parameter file",
		Long: `The output can be fed back with --params, for example:

  cryptanalysis gen wiener --bits 512 > key.json
  cryptanalysis wiener --params key.json`,
	}

	var bits int
	wienerCmd := &cobra.Command{
		Use:   "wiener",
		Short: "RSA key with a private exponent below n^(1/4)/3",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := keygen.Wiener(nil, bits)
			if err != nil {
				return err
			}
			a.logger.Debug("generated wiener key", "bits", k.N.BitLen())
			return writeParams(cmd, map[string]*big.Int{"n": k.N, "e": k.E, "d": k.D, "p": k.P, "q": k.Q})
		},
	}
	wienerCmd.Flags().IntVar(&bits, "bits", 512, "modulus size")

	var frBits int
	frCmd := &cobra.Command{
		Use:   "franklin-reiter",
		Short: "Two related messages encrypted with e = 3",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := keygen.FranklinReiter(nil, frBits)
			if err != nil {
				return err
			}
			return writeParams(cmd, map[string]*big.Int{
				"n": r.N, "e": r.E, "c1": r.C1, "c2": r.C2, "a": r.A, "b": r.B, "m1": r.M1, "m2": r.M2,
			})
		},
	}
	frCmd.Flags().IntVar(&frBits, "bits", 512, "modulus size")

	var smallBits, largeBits int
	rhoCmd := &cobra.Command{
		Use:   "rho",
		Short: "Semiprime with a small factor",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, p, q, err := keygen.Semiprime(nil, smallBits, largeBits)
			if err != nil {
				return err
			}
			return writeParams(cmd, map[string]*big.Int{"n": n, "p": p, "q": q})
		},
	}
	rhoCmd.Flags().IntVar(&smallBits, "small-bits", 24, "size of the small factor")
	rhoCmd.Flags().IntVar(&largeBits, "large-bits", 64, "size of the large factor")

	gen.AddCommand(wienerCmd, frCmd, rhoCmd)
	return gen
}

// writeParams prints values as decimal strings so no JSON reader rounds them.
func writeParams(cmd *cobra.Command, values map[string]*big.Int) error {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v.String()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode parameters")
	}
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}
