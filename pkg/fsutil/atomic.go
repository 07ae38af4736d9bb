// Package fsutil provides filesystem helpers for the action pipeline.
package fsutil

import (
	"os"

	"gitlab.com/tozd/go/errors"
)

// writeFile is swapped out by tests to simulate write failures.
var writeFile = os.WriteFile

// WriteFileAtomic replaces path with content without a partially written
// file ever being observable: content goes to a sibling temp file first,
// which is then renamed over the target. On failure the original file is
// left untouched.
func WriteFileAtomic(path string, content []byte) error {
	tempPath := path + ".tmp"

	if err := writeFile(tempPath, content, 0o644); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
