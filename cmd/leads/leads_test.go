package leads

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/internal/service/admin"
	"github.com/hospintel/hospintel_backend/internal/store"
	"github.com/hospintel/hospintel_backend/pkg/digest"
)

const passphrase = "front desk"

// setup writes a config pointing at a temp sqlite file and seeds one lead.
func setup(t *testing.T) (cfgPath string, rec model.Record) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "leads.db")

	yaml := fmt.Sprintf(`
storage:
  driver: sqlite
  sqlite:
    path: %s
admin:
  passphrase_digest: %s
`, dbPath, digest.Hex(passphrase))
	cfgPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))

	backend, err := store.Open(context.Background(), config.StorageConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	}, nil)
	require.NoError(t, err)
	defer backend.Close()

	rec = model.NewRecord("0192f0c1-0000-7000-8000-00000000abcd", &model.DemoRequest{
		FullName:     "Jane Doe",
		Organization: "Lagos General",
		Email:        "jane@lagosgeneral.org",
		Beds:         "500",
	}, "request_demo", time.Now())
	require.NoError(t, backend.Add(context.Background(), "leads", rec))
	return cfgPath, rec
}

func run(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "hospintel", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("config", cfgPath, "")
	root.AddCommand(NewLeadsCommand())

	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"leads"}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestList_WrongPassphrase(t *testing.T) {
	cfgPath, _ := setup(t)
	_, err := run(t, cfgPath, "nope\n", "list")
	assert.ErrorIs(t, err, admin.ErrInvalidPassphrase)
}

func TestList_ShowsRecord(t *testing.T) {
	cfgPath, rec := setup(t)
	out, err := run(t, cfgPath, passphrase+"\n", "list", "--store", "leads")
	require.NoError(t, err)
	assert.Contains(t, out, "leads (1)")
	assert.Contains(t, out, rec.ID)
	assert.Contains(t, out, "Jane Doe")
	assert.NotContains(t, out, "inquiries")
}

func TestList_JSON(t *testing.T) {
	cfgPath, rec := setup(t)
	out, err := run(t, cfgPath, passphrase+"\n", "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+rec.ID+`"`)
	assert.Contains(t, out, `"store": "inquiries"`)
}

func TestList_UnknownStore(t *testing.T) {
	cfgPath, _ := setup(t)
	_, err := run(t, cfgPath, passphrase+"\n", "list", "--store", "secrets")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	cfgPath, rec := setup(t)

	_, err := run(t, cfgPath, "nope\n", "delete", "leads", rec.ID)
	require.ErrorIs(t, err, admin.ErrInvalidPassphrase)

	out, err := run(t, cfgPath, passphrase+"\n", "delete", "leads", rec.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted leads/"+rec.ID)

	out, err = run(t, cfgPath, passphrase+"\n", "list", "--store", "leads")
	require.NoError(t, err)
	assert.Contains(t, out, "leads (0)")
}
