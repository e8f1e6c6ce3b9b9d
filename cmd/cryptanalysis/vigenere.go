package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/cryptanalysis/pkg/vigenere"
)

func newVigenereCmd(a *app) *cobra.Command {
	var (
		file, encryptKey string
		maxKeyLength     int
		minRepeat        int
		correlation      bool
	)
	cmd := &cobra.Command{
		Use:   "vigenere [ciphertext]",
		Short: "Recover the key of a Vigenere ciphertext",
		Long: `Ranks key lengths by index of coincidence (with Kasiski examination alongside),
then recovers each key letter by frequency analysis.

The ciphertext comes from the argument, --file, or stdin.

Example:
  cryptanalysis vigenere --file ciphertext.txt
  cryptanalysis vigenere --encrypt LEMON --file plain.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args, file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if encryptKey != "" {
				ct, err := vigenere.Encrypt(text, encryptKey)
				if err != nil {
					return err
				}
				fmt.Fprint(out, ct)
				return nil
			}

			cfg := vigenere.Config{
				MaxKeyLength:    maxKeyLength,
				MinRepeatLength: minRepeat,
				Logger:          a.logger,
			}
			if correlation {
				cfg.Scoring = vigenere.Correlation
			}
			res, err := vigenere.Analyze(text, cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "[+] Key: %s (length %d)\n", res.Key, res.KeyLength)
			fmt.Fprintln(out, "    IoC ranking:")
			for i, c := range res.Candidates {
				if i == 5 {
					break
				}
				fmt.Fprintf(out, "      %2d  IoC %.4f\n", c.Length, c.IoC)
			}
			if len(res.Kasiski.Candidates) > 0 {
				fmt.Fprintf(out, "    Kasiski: %d repeats, gcd %d, best length %d\n",
					len(res.Kasiski.Repeats), res.Kasiski.GCD, res.Kasiski.Candidates[0].Length)
			}
			fmt.Fprintln(out, "    Plaintext:")
			fmt.Fprintln(out, res.Plaintext)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	cmd.Flags().StringVar(&encryptKey, "encrypt", "", "encrypt the text with this key instead of attacking it")
	cmd.Flags().IntVar(&maxKeyLength, "max-key-length", vigenere.DefaultMaxKeyLength, "longest key length considered")
	cmd.Flags().IntVar(&minRepeat, "min-repeat", vigenere.DefaultMinRepeatLength, "repeated sequence length for Kasiski")
	cmd.Flags().BoolVar(&correlation, "correlation", false, "score shifts by correlation instead of chi-squared")
	return cmd
}

func readText(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrapf(err, "read %q", file)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
}
