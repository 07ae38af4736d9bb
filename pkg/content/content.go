// Package content holds the per-file lazy content cache that the action
// pipeline operates on. A Cache is bound to a single source and a shared
// transform; it reads the source at most once, applies the transform at most
// once, and spills content to temp files only when an action needs a real
// path on disk.
package content

import (
	"gitlab.com/tozd/go/errors"
)

// Stdin is the sentinel source denoting standard input.
const Stdin Source = "<stdin>"

// Source identifies where content came from: a filesystem path or Stdin.
type Source string

// IsStdin reports whether the source is the standard-input sentinel.
func (s Source) IsStdin() bool {
	return s == Stdin
}

func (s Source) String() string {
	return string(s)
}

// Content is the in-memory text of a file, tagged with the source it came
// from so the transform can report diagnostics against the right file.
type Content struct {
	Source Source
	Text   []byte
}

func (c Content) String() string {
	return string(c.Text)
}

// Transform maps input content to output content. It must be pure: the same
// input always produces the same output. A single Transform is shared
// read-only by every Cache in a run.
type Transform func(Content) (Content, error)

// Identity returns its input unchanged.
func Identity(c Content) (Content, error) {
	return c, nil
}

// Error kinds surfaced by a Cache. Callers branch with errors.Is.
var (
	ErrRead      = errors.New("source unreadable")
	ErrTransform = errors.New("transform failed")
	ErrTempFile  = errors.New("temp file")
)
