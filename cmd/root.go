package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/hospintel/hospintel_backend/cmd/http"
	leadscmd "github.com/hospintel/hospintel_backend/cmd/leads"
	systemcmd "github.com/hospintel/hospintel_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "hospintel",
	Short: "HospIntel lead capture gateway.",
	Long: `HospIntel captures RequestDemo and Contact form submissions, forwards them
to the configured collector and keeps a local copy when the collector is
unreachable. Stored leads are reviewed through the passphrase-gated admin API
or the leads commands.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(leadscmd.NewLeadsCommand())
}
