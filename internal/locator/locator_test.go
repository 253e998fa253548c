package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateExactFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "issue.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	l := New(dir, 3)
	assert.Equal(t, file, l.Locate(file))
}

func TestLocateDirectoryResolvesFirstMediaFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "Foo")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	file := filepath.Join(sub, "Foo.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	l := New(dir, 3)
	assert.Equal(t, file, l.Locate(sub))
}

func TestLocateByBasenameBFS(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	file := filepath.Join(nested, "Foo.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	l := New(dir, 3)
	assert.Equal(t, file, l.Locate("/some/other/mount/Foo.pdf"))
}

func TestLocateNotFound(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, 3)
	assert.Equal(t, "", l.Locate("/nonexistent/Foo.pdf"))
}
