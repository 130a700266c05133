package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("01"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.x9", "a.ICL", "c.dat", "notes.txt", "sub/d.x9"} {
		touch(t, filepath.Join(dir, name))
	}

	fm := NewFileManager(dir, "", "", false)
	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.ICL"),
		filepath.Join(dir, "b.x9"),
		filepath.Join(dir, "c.dat"),
	}, files)

	files, err = fm.DiscoverInputFiles("*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, files)

	_, err = NewFileManager(filepath.Join(dir, "missing"), "", "", false).DiscoverInputFiles()
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in", "deposit.x9")
	touch(t, input)

	fm := NewFileManager(filepath.Join(root, "in"), filepath.Join(root, "archive"), filepath.Join(root, "reports"), true)
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "archive", "2024", "03", "05", "deposit.x9"), archived)
	assert.FileExists(t, archived)
	assert.NoFileExists(t, input)
}

func TestArchiveDisabled(t *testing.T) {
	fm := NewFileManager("in", "archive", "reports", false)
	path, err := fm.ArchiveInputFile("in/deposit.x9")
	require.NoError(t, err)
	assert.Equal(t, "in/deposit.x9", path)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "in"), filepath.Join(root, "archive"), filepath.Join(root, "reports"), true)
	require.NoError(t, fm.EnsureDirectories())

	for _, dir := range []string{"in", "archive", "reports"} {
		assert.DirExists(t, filepath.Join(root, dir))
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{original}_{date}_{uuid}", map[string]string{"original": "acme"}, ".txt")
	assert.Regexp(t, regexp.MustCompile(`^acme_\d{8}_[0-9a-f-]{36}\.txt$`), name)

	assert.Equal(t, "report.TXT", GenerateOutputFileName("report.TXT", nil, ".txt"))
	assert.Equal(t, "plain", GenerateOutputFileName("plain", nil, ""))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "acme-0315", BaseName("/deposits/acme-0315.x9"))
	assert.Equal(t, "noext", BaseName("noext"))
}
