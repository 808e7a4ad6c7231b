package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/phoneterm/internal/contactbook"
	"rhystmorgan/phoneterm/internal/storage"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PHONETERM_DATA_DIR",
		"PHONETERM_BACKEND",
		"PHONETERM_LOG_LEVEL",
		"PHONETERM_LOG_FILE",
		"PHONETERM_THEME",
		"PHONETERM_TOAST_TTL",
		"PHONETERM_WATCH",
		"PHONETERM_PASSPHRASE",
	} {
		t.Setenv(key, "")
	}
}

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// idOf pulls the id column for name out of the `list` table.
func idOf(t *testing.T, listing, name string) string {
	t.Helper()
	for _, line := range strings.Split(listing, "\n") {
		cells := strings.FieldsFunc(line, func(r rune) bool { return r == '│' })
		if len(cells) == 3 && strings.TrimSpace(cells[0]) == name {
			return strings.TrimSpace(cells[2])
		}
	}
	t.Fatalf("%s not found in listing:\n%s", name, listing)
	return ""
}

func TestListEmpty(t *testing.T) {
	isolateEnv(t)
	out, err := runCLI(t, t.TempDir(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "There is no contacts")
}

func TestDefaultsThenFilter(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	out, err := runCLI(t, dir, "defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 6 default contacts")

	out, err = runCLI(t, dir, "list", "--filter", "ROSIE")
	require.NoError(t, err)
	assert.Contains(t, out, "Rosie Simpson")
	assert.Contains(t, out, "Rosie Sompson")
	assert.NotContains(t, out, "Hermione Kline")

	out, err = runCLI(t, dir, "list", "--filter", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No contacts with this name")

	_, err = runCLI(t, dir, "defaults")
	assert.Error(t, err)
}

func TestAddAndRemove(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	out, err := runCLI(t, dir, "add", "Annie Copeland", "227-91-26")
	require.NoError(t, err)
	assert.Contains(t, out, "Annie Copeland has been added")

	out, err = runCLI(t, dir, "add", "annie copeland", "000")
	require.ErrorIs(t, err, contactbook.ErrDuplicateName)
	assert.Contains(t, out, "annie copeland is already in contacts.")

	listing, err := runCLI(t, dir, "list")
	require.NoError(t, err)
	id := idOf(t, listing, "Annie Copeland")

	out, err = runCLI(t, dir, "remove", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Annie Copeland has been removed")
	assert.Contains(t, out, "You deleted all contacts")

	_, err = runCLI(t, dir, "remove", id)
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	isolateEnv(t)
	src := t.TempDir()
	_, err := runCLI(t, src, "defaults")
	require.NoError(t, err)

	exportPath := filepath.Join(t.TempDir(), "contacts.csv")
	out, err := runCLI(t, src, "export", "--format", "csv", "--out", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 6 contacts")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,name,number\n"))

	dst := t.TempDir()
	out, err = runCLI(t, dst, "import", exportPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: 6 contacts would be imported")

	out, err = runCLI(t, dst, "import", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 6 of 6 contacts")

	out, err = runCLI(t, dst, "import", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "conflict: line 2: Rosie Simpson already exists")
	assert.Contains(t, out, "Imported 0 of 6 contacts")
}

func TestExportToStdout(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	_, err := runCLI(t, dir, "add", "Jack Shepart", "345-53-81")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "export", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_contacts": 1`)
	assert.Contains(t, out, `"name": "Jack Shepart"`)
}

func TestHistory(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	_, err := runCLI(t, dir, "add", "Eden Clements", "645-17-79")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "add", "Hermione Kline", "443-89-12")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Hermione Kline")
	assert.NotContains(t, out, "Eden Clements")
}

func TestSQLiteBackend(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PHONETERM_BACKEND", "sqlite")
	dir := t.TempDir()

	_, err := runCLI(t, dir, "add", "Rosie Simpson", "459-12-56")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Rosie Simpson")

	_, err = os.Stat(filepath.Join(dir, "phoneterm.db"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "contacts.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestEncryptedStorage(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PHONETERM_PASSPHRASE", "correct horse")
	dir := t.TempDir()

	_, err := runCLI(t, dir, "add", "Rosie Simpson", "459-12-56")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "contacts.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Rosie")

	out, err := runCLI(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Rosie Simpson")

	t.Setenv("PHONETERM_PASSPHRASE", "wrong")
	_, err = runCLI(t, dir, "list")
	assert.ErrorIs(t, err, storage.ErrWrongPassphrase)
	_, err = runCLI(t, dir, "defaults")
	assert.Error(t, err)

	t.Setenv("PHONETERM_PASSPHRASE", "")
	_, err = runCLI(t, dir, "list")
	assert.ErrorIs(t, err, contactbook.ErrEncrypted)
	_, err = runCLI(t, dir, "add", "Annie Copeland", "227-91-26")
	assert.ErrorIs(t, err, contactbook.ErrEncrypted)

	after, err := os.ReadFile(filepath.Join(dir, "contacts.json"))
	require.NoError(t, err)
	assert.Equal(t, raw, after)
}

func TestConfigFileInDataDir(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: nosql\n"), 0600))

	_, err := runCLI(t, dir, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backend")
}
