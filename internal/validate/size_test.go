package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/path"
)

func writeFile(t *testing.T, dir, name string, size int) path.Safe {
	t.Helper()
	p, err := path.Resolve(name, dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p.Resolved(), bytes.Repeat([]byte("x"), size), 0644))
	return p
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()

	t.Run("exactly max succeeds", func(t *testing.T) {
		p := writeFile(t, dir, "exact.json", 64)
		assert.NoError(t, FileSize(p, 64))
	})

	t.Run("max plus one fails", func(t *testing.T) {
		p := writeFile(t, dir, "over.json", 65)
		err := FileSize(p, 64)
		require.Error(t, err)
		assert.True(t, errs.HasReason(err, errs.ReasonFileTooLarge))

		e, _ := errs.As(err)
		assert.Equal(t, int64(65), e.Context["size"])
		assert.Equal(t, int64(64), e.Context["maxBytes"])
		assert.Equal(t, p.Resolved(), e.Context["path"])
	})

	t.Run("missing file", func(t *testing.T) {
		p, err := path.Resolve("missing.json", dir)
		require.NoError(t, err)
		assert.True(t, errs.HasReason(FileSize(p, 64), errs.ReasonFileNotFound))
	})

	t.Run("directory", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
		p, err := path.Resolve("sub", dir)
		require.NoError(t, err)
		assert.True(t, errs.HasReason(FileSize(p, 64), errs.ReasonInvalidPath))
	})

	t.Run("default limit", func(t *testing.T) {
		p := writeFile(t, dir, "default.json", int(DefaultMaxFileSize))
		assert.NoError(t, FileSize(p, 0))

		p = writeFile(t, dir, "default-over.json", int(DefaultMaxFileSize)+1)
		assert.True(t, errs.HasReason(FileSize(p, 0), errs.ReasonFileTooLarge))
	})
}

func TestContent(t *testing.T) {
	assert.NoError(t, Content([]byte("1234"), 4))
	assert.True(t, errs.HasReason(Content([]byte("12345"), 4), errs.ReasonFileTooLarge))
	assert.NoError(t, Content(nil, 0))
}
