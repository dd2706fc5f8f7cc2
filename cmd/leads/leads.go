package leads

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/hospintel/hospintel_backend/cmd/prompt"
	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/service/admin"
	"github.com/hospintel/hospintel_backend/internal/store"
	redispkg "github.com/hospintel/hospintel_backend/pkg/redis"
)

func NewLeadsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Review and delete stored submissions",
		Long: `Review and delete the leads and inquiries kept in the local store.

Every subcommand asks for the admin passphrase first.`,
	}

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewDeleteCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewDecryptCommand())

	return cmd
}

func readConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

// unlockedViewer opens the configured store, prompts for the passphrase and
// returns an unlocked viewer. The caller must run the returned cleanup.
func unlockedViewer(cmd *cobra.Command, cfg *config.Config) (*admin.Viewer, func(), error) {
	ac := admin.FromCentralConfig(cfg.Admin)
	if ac.PassphraseDigest == "" {
		return nil, nil, admin.ErrAdminDisabled
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		client goredis.UniversalClient
		rdb    *goredis.Client
		err    error
	)
	if cfg.Storage.Driver == "redis" {
		rdb, err = redispkg.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		client = rdb
	}

	backend, err := store.Open(ctx, cfg.Storage, client)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, nil, err
	}
	adapter := store.NewAdapter(backend, slog.Default())
	cleanup := func() {
		_ = adapter.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
	}

	viewer := admin.NewViewer(ac.PassphraseDigest, adapter, ac.Stores)
	pass, err := prompt.Passphrase(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err == nil {
		err = viewer.Unlock(ctx, pass)
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return viewer, cleanup, nil
}
