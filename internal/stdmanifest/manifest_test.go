package stdmanifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(body), 0o644))
}

func TestValidateAcceptsStdName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "std"}`)

	m, err := Validate(dir)
	require.NoError(t, err)
	require.Equal(t, "std", m.Name)
}

func TestValidateRejectsWrongName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "not-std"}`)

	_, err := Validate(dir)
	require.Error(t, err)
}

func TestValidateIgnoresExtraKeys(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "std", "version": "1.0", "deps": []}`)

	m, err := Validate(dir)
	require.NoError(t, err)
	require.Equal(t, "std", m.Name)
}

func TestValidateMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := Validate(dir)
	require.Error(t, err)
}

func TestValidateMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{not json`)

	_, err := Validate(dir)
	require.Error(t, err)
}
