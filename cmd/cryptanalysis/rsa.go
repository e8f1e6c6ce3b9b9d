package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
	"github.com/mahdiidarabi/cryptanalysis/pkg/franklinreiter"
	"github.com/mahdiidarabi/cryptanalysis/pkg/pollardrho"
	"github.com/mahdiidarabi/cryptanalysis/pkg/wiener"
)

func newWienerCmd(a *app) *cobra.Command {
	var (
		e, n          string
		maxConvergent int
		enforceBound  bool
	)
	cmd := &cobra.Command{
		Use:   "wiener",
		Short: "Recover a small RSA private exponent from (e, n)",
		Long: `Wiener's attack finds d when d < n^(1/4)/3 by testing the convergents of e/n.

Example:
  cryptanalysis wiener --e 0x... --n 0x...
  cryptanalysis wiener --params key.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.record()
			if err != nil {
				return err
			}
			eVal, err := bigArg(rec, e, "e")
			if err != nil {
				return err
			}
			nVal, err := bigArg(rec, n, "n")
			if err != nil {
				return err
			}

			res, err := wiener.Attack(eVal, nVal, wiener.Config{
				MaxConvergents: maxConvergent,
				EnforceBound:   enforceBound,
				Stop:           attack.StopOnDone(cmd.Context()),
				Logger:         a.logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[+] Recovered private exponent from convergent %d\n", res.Convergent)
			fmt.Fprintf(out, "    d = %s\n", res.D)
			fmt.Fprintf(out, "    p = %s\n", res.P)
			fmt.Fprintf(out, "    q = %s\n", res.Q)
			return nil
		},
	}
	cmd.Flags().StringVar(&e, "e", "", "public exponent")
	cmd.Flags().StringVar(&n, "n", "", "modulus")
	cmd.Flags().IntVar(&maxConvergent, "max-convergents", wiener.DefaultMaxConvergents, "convergents to test")
	cmd.Flags().BoolVar(&enforceBound, "enforce-bound", false, "skip candidates above n^(1/4)/3")
	return cmd
}

func newFranklinReiterCmd(a *app) *cobra.Command {
	var n, e, c1, c2, ca, cb string
	var maxExponent int
	cmd := &cobra.Command{
		Use:   "franklin-reiter",
		Short: "Recover two RSA messages related by m2 = a*m1 + b",
		Long: `Franklin-Reiter computes gcd(x^e - c1, (a*x + b)^e - c2) over Z_n; its root is m1.

Example:
  cryptanalysis franklin-reiter --n ... --e 3 --c1 ... --c2 ... --a ... --b ...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.record()
			if err != nil {
				return err
			}
			names := []string{"n", "e", "c1", "c2", "a", "b"}
			flags := []string{n, e, c1, c2, ca, cb}
			v := make([]*big.Int, len(names))
			for i, name := range names {
				if v[i], err = bigArg(rec, flags[i], name); err != nil {
					return err
				}
			}

			res, err := franklinreiter.Attack(v[0], v[1], v[2], v[3], v[4], v[5], franklinreiter.Config{
				MaxExponent: maxExponent,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "[+] Recovered related messages")
			fmt.Fprintf(out, "    m1 = %s\n", res.M1)
			fmt.Fprintf(out, "    m2 = %s\n", res.M2)
			return nil
		},
	}
	cmd.Flags().StringVar(&n, "n", "", "modulus")
	cmd.Flags().StringVar(&e, "e", "", "public exponent")
	cmd.Flags().StringVar(&c1, "c1", "", "ciphertext of m1")
	cmd.Flags().StringVar(&c2, "c2", "", "ciphertext of m2")
	cmd.Flags().StringVar(&ca, "a", "", "relation multiplier")
	cmd.Flags().StringVar(&cb, "b", "", "relation offset")
	cmd.Flags().IntVar(&maxExponent, "max-exponent", franklinreiter.DefaultMaxExponent, "largest e accepted")
	return cmd
}

func newRhoCmd(a *app) *cobra.Command {
	var (
		n         string
		c, start  int64
		maxIter   int
		restarts  int
		factorAll bool
	)
	cmd := &cobra.Command{
		Use:   "rho",
		Short: "Find a factor of n with Pollard's rho",
		Long: `Pollard's rho walks x -> x^2 + c mod n with Floyd cycle detection.
Each failed attempt restarts with c+1.

Example:
  cryptanalysis rho --n 10403
  cryptanalysis rho --n 0x... --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.record()
			if err != nil {
				return err
			}
			nVal, err := bigArg(rec, n, "n")
			if err != nil {
				return err
			}
			cfg := pollardrho.Config{
				C:             c,
				Start:         start,
				MaxIterations: maxIter,
				MaxRestarts:   restarts,
				Stop:          attack.StopOnDone(cmd.Context()),
				Logger:        a.logger,
			}

			out := cmd.OutOrStdout()
			if factorAll {
				factors, err := pollardrho.FactorAll(nVal, cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "[+] %s =", nVal)
				for i, f := range factors {
					if i > 0 {
						fmt.Fprint(out, " *")
					}
					fmt.Fprintf(out, " %s", f)
				}
				fmt.Fprintln(out)
				return nil
			}

			res, err := pollardrho.Factor(nVal, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "[+] %s = %s * %s\n", nVal, res.Factor, res.Cofactor)
			fmt.Fprintf(out, "    c = %d, iterations = %d, restarts = %d\n", res.C, res.Iterations, res.Restarts)
			return nil
		},
	}
	cmd.Flags().StringVar(&n, "n", "", "number to factor")
	cmd.Flags().Int64Var(&c, "c", pollardrho.DefaultC, "polynomial constant of the first attempt")
	cmd.Flags().Int64Var(&start, "start", pollardrho.DefaultStart, "starting value x0")
	cmd.Flags().IntVar(&maxIter, "max-iterations", pollardrho.DefaultMaxIterations, "iterations per attempt")
	cmd.Flags().IntVar(&restarts, "restarts", pollardrho.DefaultMaxRestarts, "attempts after the first")
	cmd.Flags().BoolVar(&factorAll, "all", false, "factor completely")
	return cmd
}
