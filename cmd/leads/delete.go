package leads

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hospintel/hospintel_backend/internal/model"
)

func NewDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <store> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeName, id := args[0], args[1]
			if !model.IsStore(storeName) {
				return fmt.Errorf("unknown store %q", storeName)
			}

			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			viewer, cleanup, err := unlockedViewer(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := viewer.Delete(cmd.Context(), storeName, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", storeName, id)
			return nil
		},
	}

	return cmd
}
