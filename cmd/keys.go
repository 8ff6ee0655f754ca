package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/example/campsched/internal/auth"
	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate ops UI secrets (cookie keys, optional password hash)",
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := make([]byte, 32)
			block := make([]byte, 32)
			if _, err := rand.Read(hash); err != nil {
				return err
			}
			if _, err := rand.Read(block); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "export COOKIE_HASH_KEY=%s\n", base64.StdEncoding.EncodeToString(hash))
			fmt.Fprintf(os.Stdout, "export COOKIE_BLOCK_KEY=%s\n", base64.StdEncoding.EncodeToString(block))

			if password != "" {
				pw, err := auth.HashPassword(password)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "export OPS_PASSWORD_HASH='%s'\n", pw)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "also print OPS_PASSWORD_HASH for this password")
	return cmd
}
