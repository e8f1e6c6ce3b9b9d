package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/cryptanalysis/internal/lab"
	"github.com/mahdiidarabi/cryptanalysis/pkg/paddingoracle"
)

func newPaddingCmd(a *app) *cobra.Command {
	var (
		url, alg, message, key string
		keepPadding            bool
	)
	cmd := &cobra.Command{
		Use:   "padding",
		Short: "Decrypt CBC ciphertext through a padding oracle",
		Long: `Without --url the attack runs against an in-process target that encrypts
--message under a random (or --key) key. With --url it fetches the challenge
from a running lab server and queries its /oracle endpoint.

Example:
  cryptanalysis padding --alg blowfish --message "attack at dawn"
  cryptanalysis padding --url http://localhost:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				oracle    paddingoracle.Oracle
				iv, ct    []byte
				blockSize int
			)

			if url != "" {
				remote := paddingoracle.NewHTTPOracle(url)
				ch, err := remote.FetchChallenge(ctx)
				if err != nil {
					return err
				}
				oracle, iv, ct, blockSize = remote, ch.IV, ch.Ciphertext, ch.BlockSize
			} else {
				target, err := newLabTarget(alg, key)
				if err != nil {
					return err
				}
				iv, ct, err = target.Encrypt([]byte(message))
				if err != nil {
					return err
				}
				oracle, blockSize = paddingoracle.OracleFunc(target.ValidPadding), target.BlockSize()
			}

			blocks, err := paddingoracle.SplitBlocks(iv, ct, blockSize)
			if err != nil {
				return err
			}
			a.logger.Debug("attacking ciphertext", "blocks", len(blocks)-1, "block_size", blockSize)

			res, err := paddingoracle.Decrypt(ctx, blocks, oracle, paddingoracle.Config{
				BlockSize:   blockSize,
				KeepPadding: keepPadding,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[+] Decrypted %d blocks with %d oracle queries\n", len(blocks)-1, res.Queries)
			fmt.Fprintf(out, "    plaintext: %s\n", strconv.Quote(string(res.Plaintext)))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "base URL of a padding oracle lab server")
	cmd.Flags().StringVar(&alg, "alg", "aes", "in-process cipher: aes or blowfish")
	cmd.Flags().StringVar(&message, "message", "The magic words are squeamish ossifrage", "in-process secret")
	cmd.Flags().StringVar(&key, "key", "", "in-process key as hex (default random)")
	cmd.Flags().BoolVar(&keepPadding, "keep-padding", false, "print the plaintext with its PKCS#7 padding")
	return cmd
}

func newLabTarget(alg, keyHex string) (*lab.Target, error) {
	if keyHex == "" {
		return lab.RandomTarget(alg)
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, errors.Wrap(err, "--key")
	}
	return lab.NewTarget(alg, key)
}
