package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func upperCounting(calls *int) Transform {
	return func(c Content) (Content, error) {
		*calls++
		return Content{Source: c.Source, Text: []byte(strings.ToUpper(string(c.Text)))}, nil
	}
}

func writeTestFile(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestCache_InputIsReadOnce(t *testing.T) {
	path := writeTestFile(t, "a.txt", "hello\n")

	c := NewCache(Source(path), Identity)
	defer c.Close()

	first, err := c.Input()
	require.NoError(t, err)
	assert.Equal(t, "hello\n", first.String())

	// Removing the file proves the second call never touches the disk.
	require.NoError(t, os.Remove(path))

	second, err := c.Input()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCache_OutputIsComputedOnce(t *testing.T) {
	path := writeTestFile(t, "a.txt", "hello\n")

	calls := 0
	c := NewCache(Source(path), upperCounting(&calls))
	defer c.Close()

	first, err := c.Output()
	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", first.String())

	second, err := c.Output()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "transform should run exactly once")
	assert.Equal(t, Source(path), second.Source, "output keeps the originating source")
}

func TestCache_ReadErrorIsMemoized(t *testing.T) {
	c := NewCache(Source(filepath.Join(t.TempDir(), "missing.txt")), Identity)
	defer c.Close()

	_, err := c.Input()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRead))

	_, second := c.Input()
	assert.Equal(t, err, second)
}

func TestCache_TransformErrorIsMemoized(t *testing.T) {
	path := writeTestFile(t, "a.txt", "hello\n")

	calls := 0
	failing := func(c Content) (Content, error) {
		calls++
		return Content{}, errors.New("boom")
	}
	c := NewCache(Source(path), failing)
	defer c.Close()

	_, err := c.Output()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransform))
	assert.Contains(t, err.Error(), path)

	_, err = c.Output()
	require.Error(t, err)
	assert.Equal(t, 1, calls, "failed transform should not rerun")
}

func TestCache_InputPathReusesRealFile(t *testing.T) {
	path := writeTestFile(t, "a.txt", "hello\n")

	c := NewCache(Source(path), Identity)
	defer c.Close()

	got, err := c.InputPath()
	require.NoError(t, err)
	assert.Equal(t, path, got, "a real source needs no temp file")
	assert.Empty(t, c.tmpfiles)
}

func TestCache_StdinPathsAreSpilledOnce(t *testing.T) {
	c := NewCache(Stdin, Identity)
	defer c.Close()
	c.ReadStdinFrom(strings.NewReader("piped\n"))

	inPath, err := c.InputPath()
	require.NoError(t, err)
	text, err := os.ReadFile(inPath)
	require.NoError(t, err)
	assert.Equal(t, "piped\n", string(text))

	again, err := c.InputPath()
	require.NoError(t, err)
	assert.Equal(t, inPath, again)
}

func TestCache_OutputPathIsNeverTheSource(t *testing.T) {
	path := writeTestFile(t, "a.txt", "hello\n")

	calls := 0
	c := NewCache(Source(path), upperCounting(&calls))
	defer c.Close()

	outPath, err := c.OutputPath()
	require.NoError(t, err)
	assert.NotEqual(t, path, outPath)

	text, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", string(text))

	again, err := c.OutputPath()
	require.NoError(t, err)
	assert.Equal(t, outPath, again)
}

func TestCache_CloseRemovesTempFiles(t *testing.T) {
	c := NewCache(Stdin, Identity)
	c.ReadStdinFrom(strings.NewReader("piped\n"))

	inPath, err := c.InputPath()
	require.NoError(t, err)
	outPath, err := c.OutputPath()
	require.NoError(t, err)
	assert.NotEqual(t, inPath, outPath)

	require.NoError(t, c.Close())

	assert.NoFileExists(t, inPath)
	assert.NoFileExists(t, outPath)

	// Idempotent.
	require.NoError(t, c.Close())
}
