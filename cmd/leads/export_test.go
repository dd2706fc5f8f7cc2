package leads

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospintel/hospintel_backend/pkg/crypto"
)

const archiveKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func withArchiveKey(t *testing.T, cfgPath string) {
	t.Helper()
	raw, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	raw = append(raw, []byte("archive:\n  encryption_key: "+archiveKey+"\n")...)
	require.NoError(t, os.WriteFile(cfgPath, raw, 0o600))
}

func TestExport_PlainToStdout(t *testing.T) {
	cfgPath, rec := setup(t)

	out, err := run(t, cfgPath, passphrase+"\n", "export")
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.False(t, snap.ExportedAt.IsZero())
	require.Len(t, snap.Stores, 2)
	assert.Equal(t, "leads", snap.Stores[0].Store)
	require.Len(t, snap.Stores[0].Records, 1)
	assert.Equal(t, rec.ID, snap.Stores[0].Records[0].ID)
}

func TestExport_WrongPassphrase(t *testing.T) {
	cfgPath, _ := setup(t)
	out, err := run(t, cfgPath, "nope\n", "export")
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestExport_EncryptedFileRoundTrip(t *testing.T) {
	cfgPath, rec := setup(t)
	withArchiveKey(t, cfgPath)

	dir := t.TempDir()
	_, err := run(t, cfgPath, passphrase+"\n", "export", "--out", dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasSuffix(name, ".json.enc"), name)

	sealed, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "Jane Doe")

	key, err := crypto.KeyFromHex(archiveKey)
	require.NoError(t, err)
	plain, err := crypto.Open(key, sealed)
	require.NoError(t, err)
	assert.Contains(t, string(plain), rec.ID)

	out, err := run(t, cfgPath, "", "decrypt", filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
}

func TestDecrypt_WithoutKey(t *testing.T) {
	cfgPath, _ := setup(t)
	_, err := run(t, cfgPath, "", "decrypt", "missing.json.enc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encryption_key")
}
