package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates_new_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new.txt")

		require.NoError(t, WriteFileAtomic(path, []byte("content\n")))

		text, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content\n", string(text))
	})

	t.Run("overwrites_existing_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

		require.NoError(t, WriteFileAtomic(path, []byte("new\n")))

		text, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new\n", string(text))
	})

	t.Run("failed_write_leaves_original_intact", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("original\n"), 0o644))

		orig := writeFile
		writeFile = func(name string, data []byte, perm os.FileMode) error {
			// Simulate a partial write: some bytes land, then the disk fails.
			_ = os.WriteFile(name, data[:len(data)/2], perm)
			return errors.New("injected write failure")
		}
		defer func() { writeFile = orig }()

		err := WriteFileAtomic(path, []byte("replacement\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "injected write failure")

		text, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, "original\n", string(text), "target must be untouched")

		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		require.Len(t, entries, 1, "no temp file may be left behind")
	})
}
