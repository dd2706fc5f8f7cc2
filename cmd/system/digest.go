package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hospintel/hospintel_backend/cmd/prompt"
	"github.com/hospintel/hospintel_backend/pkg/digest"
)

func NewDigestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the SHA-256 digest of an admin passphrase",
		Long: `Print the hex SHA-256 digest to put in admin.passphrase_digest.

The passphrase is read from the terminal without echo, or from stdin when
piped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := prompt.Passphrase(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if pass == "" {
				return fmt.Errorf("passphrase must not be empty")
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest.Hex(pass))
			return nil
		},
	}

	return cmd
}
