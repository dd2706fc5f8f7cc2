package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hospintel/hospintel_backend/pkg/codes"
	pasetotoken "github.com/hospintel/hospintel_backend/pkg/paseto"
)

func NewKeygenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print fresh keys for admin.token_key and archive.encryption_key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			archiveKey, err := codes.GenerateSecureToken(32)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin.token_key: %s\n", pasetotoken.NewKeyHex())
			fmt.Fprintf(cmd.OutOrStdout(), "archive.encryption_key: %s\n", archiveKey)
			return nil
		},
	}

	return cmd
}
