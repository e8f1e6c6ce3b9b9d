// Command cryptanalysis runs the attacks in this module against key material
// given on the command line or in a parameter file.
//
//	cryptanalysis wiener --params key.json
//	cryptanalysis rho --n 10403
//	cryptanalysis padding --alg aes --message "attack at dawn"
//	cryptanalysis vigenere --file ciphertext.txt
//	cryptanalysis lab serve --addr :8080
package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/cryptanalysis/internal/params"
	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	verbose    bool
	paramsFile string
	logger     *slog.Logger
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// record loads --params, or returns an empty record when it is unset.
func (a *app) record() (params.Record, error) {
	if a.paramsFile == "" {
		return params.Record{}, nil
	}
	return params.ReadOne(a.paramsFile)
}

// bigArg prefers the flag value and falls back to the parameter file.
func bigArg(rec params.Record, flagValue, name string) (*big.Int, error) {
	if flagValue != "" {
		v, err := params.ParseBigInt(flagValue)
		if err != nil {
			return nil, errors.Wrapf(err, "--%s", name)
		}
		return v, nil
	}
	v, err := rec.Int(name)
	if err != nil {
		return nil, errors.Wrapf(err, "%s must be given with --%s or --params", name, name)
	}
	return v, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cryptanalysis",
		Short: "Classical attacks on weak or misused cryptographic constructions",
		Long: `Cryptanalysis breaks small RSA private exponents (Wiener), related RSA
messages (Franklin-Reiter), semiprimes with a small factor (Pollard's rho),
CBC padding oracles, Vigenere ciphertexts and signatures with related nonces.

Numbers are accepted as decimal, 0x-prefixed hex or bare hex.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every step of the attack to stderr")
	root.PersistentFlags().StringVarP(&a.paramsFile, "params", "p", "", "JSON or CSV file with named parameters")

	root.AddCommand(
		newWienerCmd(a),
		newFranklinReiterCmd(a),
		newRhoCmd(a),
		newPaddingCmd(a),
		newVigenereCmd(a),
		newNonceCmd(a),
		newLabCmd(a),
		newGenCmd(a),
	)
	return root
}

// report prints a failure in one line the way every subcommand does.
func report(w io.Writer, err error) {
	if f, ok := attack.AsFailure(err); ok {
		fmt.Fprintf(w, "[-] %s failed (%s): %s\n", f.Engine, f.Kind, f.Reason)
		if f.Err != nil {
			fmt.Fprintf(w, "    cause: %v\n", f.Err)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func main() {
	root := newRootCmd()
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}
