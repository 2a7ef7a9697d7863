package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"palisade/internal/crypto"
)

// keygen: mint a throwaway ephemeral key pair and print the public half.
// Useful for eyeballing announce payloads; private keys never leave the
// handshake in real use.
func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ephemeral X25519 key pair and print its public half",
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := crypto.GenerateX25519()
			if err != nil {
				return err
			}
			defer kp.Wipe()

			fmt.Printf("public:      %s\n", base64.StdEncoding.EncodeToString(kp.Public.Slice()))
			fmt.Printf("fingerprint: %s\n", crypto.Fingerprint(kp.Public))
			return nil
		},
	}
}
