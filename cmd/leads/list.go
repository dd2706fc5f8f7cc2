package leads

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/internal/service/admin"
)

func NewListCommand() *cobra.Command {
	var (
		storeName string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if storeName != "" && !model.IsStore(storeName) {
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

			listings, err := viewer.Records(cmd.Context())
			if err != nil {
				return err
			}
			if storeName != "" {
				listings = lo.Filter(listings, func(l admin.Listing, _ int) bool { return l.Store == storeName })
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(listings)
			}
			renderListings(cmd.OutOrStdout(), listings)
			return nil
		},
	}

	cmd.Flags().StringVar(&storeName, "store", "", "only list this store (leads or inquiries)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

func renderListings(w io.Writer, listings []admin.Listing) {
	for _, l := range listings {
		fmt.Fprintf(w, "%s (%d)\n", l.Store, l.Count)
		if l.Count == 0 {
			fmt.Fprintln(w, "  no records")
			continue
		}

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"ID", "Created", "Source", "Name", "Email", "Organization", "Status"})
		table.SetAutoWrapText(false)
		for _, r := range l.Records {
			table.Append([]string{
				r.ID,
				r.CreatedAt.UTC().Format(time.RFC3339),
				r.Source,
				r.DisplayName(),
				r.Email(),
				r.Organization(),
				string(r.Status),
			})
		}
		table.SetFooter([]string{"", "", "", "", "", "Total", strconv.Itoa(l.Count)})
		table.Render()
	}
}
