package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/cryptanalysis/internal/lab"
)

func newLabCmd(a *app) *cobra.Command {
	labCmd := &cobra.Command{
		Use:   "lab",
		Short: "Deliberately vulnerable targets to practise on",
	}

	var addr, alg, key, secret string
	var debug bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve a CBC padding oracle over HTTP",
		Long: `Serve exposes GET /challenge (IV and ciphertext of the secret) and
POST /oracle, which answers 200 for valid padding and 400 for a padding error.

Example:
  cryptanalysis lab serve --addr :8080 --alg aes --secret "flag{cbc}"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !debug {
				gin.SetMode(gin.ReleaseMode)
			}
			target, err := newLabTarget(alg, key)
			if err != nil {
				return err
			}
			srv, err := lab.NewServer(target, alg, []byte(secret), a.logger)
			if err != nil {
				return err
			}
			return srv.Run(addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serve.Flags().StringVar(&alg, "alg", "aes", "cipher: aes or blowfish")
	serve.Flags().StringVar(&key, "key", "", "key as hex (default random)")
	serve.Flags().StringVar(&secret, "secret", "Padding oracles leak one byte at a time", "plaintext of the challenge")
	serve.Flags().BoolVar(&debug, "gin-debug", false, "run gin in debug mode")

	labCmd.AddCommand(serve)
	return labCmd
}
