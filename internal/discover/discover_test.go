package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlift/paperlift/pkg/document"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("placeholder"), 0o644))
}

func TestDiscover_WalksRecursively(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, "b scan.PNG"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "c.jpg"))
	touch(t, filepath.Join(dir, "sub", "deep", "d.tif"))
	touch(t, filepath.Join(dir, "z.jpeg"))

	descriptors, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, descriptors, 5, "the txt file must be skipped")

	absDir, err := filepath.Abs(dir)
	require.NoError(t, err)
	label := filepath.Base(absDir)

	expected := []struct {
		filename string
		relDir   string
		srcType  document.SourceType
	}{
		{filename: "a.pdf", relDir: ".", srcType: document.SourcePDF},
		{filename: "b scan.PNG", relDir: ".", srcType: document.SourceImage},
		{filename: "c.jpg", relDir: "sub", srcType: document.SourceImage},
		{filename: "d.tif", relDir: "sub/deep", srcType: document.SourceImage},
		{filename: "z.jpeg", relDir: ".", srcType: document.SourceImage},
	}

	for i, want := range expected {
		got := descriptors[i]
		assert.Equal(t, want.filename, got.Filename, "position %d", i)
		assert.Equal(t, want.relDir, got.RelativeDir, "position %d", i)
		assert.Equal(t, want.srcType, got.Type, "position %d", i)
		assert.Equal(t, label, got.InputDirectory, "position %d", i)
		assert.True(t, filepath.IsAbs(got.Path), "position %d", i)
		assert.NoError(t, got.Validate(), "position %d", i)
	}
}

func TestDiscover_CaseInsensitiveExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "UPPER.PDF"))
	touch(t, filepath.Join(dir, "Mixed.TiFf"))

	descriptors, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, descriptors, 2)
	assert.Equal(t, document.SourcePDF, descriptors[1].Type)
	assert.Equal(t, document.SourceImage, descriptors[0].Type)
}

func TestDiscover_EmptyDirectory(t *testing.T) {
	descriptors, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestDiscover_UnsupportedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "readme.md"))
	touch(t, filepath.Join(dir, "data.json"))
	touch(t, filepath.Join(dir, "noext"))

	descriptors, err := Discover(dir)
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestDiscover_MissingDirectoryIsTolerated(t *testing.T) {
	descriptors, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}
