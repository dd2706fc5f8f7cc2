package leads

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/service/admin"
	"github.com/hospintel/hospintel_backend/pkg/crypto"
	s3pkg "github.com/hospintel/hospintel_backend/pkg/s3"
)

// Snapshot is the export file format.
type Snapshot struct {
	ExportedAt time.Time       `json:"exportedAt"`
	Stores     []admin.Listing `json:"stores"`
}

func NewExportCommand() *cobra.Command {
	var (
		outPath string
		toS3    bool
		presign bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot of every store to a file or S3",
		Long: `Write a JSON snapshot of every configured store.

When archive.encryption_key is set the snapshot is sealed with AES-256-GCM
and can be read back with "leads decrypt".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			now := time.Now().UTC()
			data, err := json.MarshalIndent(Snapshot{ExportedAt: now, Stores: listings}, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}

			name := "hospintel-" + now.Format("20060102T150405Z") + ".json"
			contentType := "application/json"
			if cfg.Archive.EncryptionKey != "" {
				key, err := crypto.KeyFromHex(cfg.Archive.EncryptionKey)
				if err != nil {
					return err
				}
				if data, err = crypto.Seal(key, data); err != nil {
					return err
				}
				name += ".enc"
				contentType = "application/octet-stream"
			}

			if toS3 {
				return uploadSnapshot(cmd, cfg.Archive.S3, name, contentType, data, presign)
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if info, statErr := os.Stat(outPath); statErr == nil && info.IsDir() {
				outPath = filepath.Join(outPath, name)
			}
			if err := os.WriteFile(outPath, data, 0o600); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file or directory (default stdout)")
	cmd.Flags().BoolVar(&toS3, "s3", false, "upload to archive.s3 instead of writing locally")
	cmd.Flags().BoolVar(&presign, "presign", false, "print a presigned download URL after uploading")

	return cmd
}

func uploadSnapshot(cmd *cobra.Command, cfg config.S3Config, name, contentType string, data []byte, presign bool) error {
	client, err := s3pkg.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	key, err := client.Upload(cmd.Context(), name, contentType, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded s3://%s/%s\n", cfg.Bucket, key)

	if presign {
		url, err := client.PresignDownload(cmd.Context(), key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
	}
	return nil
}

func NewDecryptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt <file>",
		Short: "Print a sealed snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Archive.EncryptionKey == "" {
				return fmt.Errorf("archive.encryption_key is not set")
			}
			key, err := crypto.KeyFromHex(cfg.Archive.EncryptionKey)
			if err != nil {
				return err
			}

			sealed, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			plain, err := crypto.Open(key, sealed)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(plain, '\n'))
			return err
		},
	}

	return cmd
}
