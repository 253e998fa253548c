package importpipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeTitleStripsInvalidChars(t *testing.T) {
	assert.Equal(t, "National Geographic", SafeTitle(`National: Geographic?`))
}

func TestSafeTitleCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "a"
	}
	assert.LessOrEqual(t, len(SafeTitle(long)), maxSafeTitleLength)
}

func TestBuildOrganizePathDefaultStructure(t *testing.T) {
	path := BuildOrganizePath("/library", "_", "", PathInputs{
		Category: "Magazines",
		Title:    "Wired",
		Year:     2024,
		Month:    3,
	})
	assert.Equal(t, filepath.Join("/library", "_Magazines", "Wired", "2024", "Wired - Mar2024.pdf"), path)
}

func TestBuildOrganizePathPatternTemplate(t *testing.T) {
	path := BuildOrganizePath("/library", "_", "{category}/{title}/{title} - {year}-{month}", PathInputs{
		Category: "Magazines",
		Title:    "Wired",
		Year:     2024,
		Month:    3,
	})
	assert.Equal(t, filepath.Join("/library", "_Magazines/Wired/Wired - 2024-03.pdf"), path)
}

func TestResolveCollisionAppendsTimestamp(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "file.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resolved := ResolveCollision(existing, now)
	assert.NotEqual(t, existing, resolved)
	assert.Contains(t, resolved, ".pdf")
}

func TestResolveCollisionReturnsSamePathWhenFree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.pdf")
	assert.Equal(t, path, ResolveCollision(path, time.Now()))
}

func TestMoveFileRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "nested", "dst.pdf")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0o644))

	require.NoError(t, MoveFile(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}
