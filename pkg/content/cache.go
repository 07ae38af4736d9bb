package content

import (
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

// memo is a lazily computed value. Once computed, both the value and any
// error are retained; the computation never reruns.
type memo[T any] struct {
	done bool
	val  T
	err  error
}

func (m *memo[T]) get(compute func() (T, error)) (T, error) {
	if !m.done {
		m.val, m.err = compute()
		m.done = true
	}
	return m.val, m.err
}

// Cache lazily computes and memoizes the input content of a single source,
// the transformed output content, and on-demand temp-file materializations
// of both. One Cache per file; not safe for concurrent use; never reused
// across files. Close must be called on every exit path.
type Cache struct {
	source    Source
	transform Transform
	stdin     io.Reader

	input   memo[Content]
	output  memo[Content]
	inPath  memo[string]
	outPath memo[string]

	tmpfiles []string
}

// NewCache creates a cache for source bound to the shared transform.
func NewCache(source Source, transform Transform) *Cache {
	return &Cache{
		source:    source,
		transform: transform,
		stdin:     os.Stdin,
	}
}

// ReadStdinFrom overrides where the Stdin sentinel reads content from.
func (c *Cache) ReadStdinFrom(r io.Reader) {
	c.stdin = r
}

// Source returns the source this cache is bound to.
func (c *Cache) Source() Source {
	return c.source
}

// Input returns the source's content, reading it exactly once.
func (c *Cache) Input() (Content, error) {
	return c.input.get(func() (Content, error) {
		var text []byte
		var err error
		if c.source.IsStdin() {
			text, err = io.ReadAll(c.stdin)
		} else {
			text, err = os.ReadFile(string(c.source))
		}
		if err != nil {
			return Content{}, errors.Errorf("%w: %s: %w", ErrRead, c.source, err)
		}
		return Content{Source: c.source, Text: text}, nil
	})
}

// Output returns the transformed content, computing it exactly once.
func (c *Cache) Output() (Content, error) {
	return c.output.get(func() (Content, error) {
		in, err := c.Input()
		if err != nil {
			return Content{}, err
		}
		out, err := c.transform(in)
		if err != nil {
			return Content{}, errors.Errorf("%w: %s: %w", ErrTransform, c.source, err)
		}
		out.Source = c.source
		return out, nil
	})
}

// InputPath returns a filesystem path holding the input content. A real
// source path is returned as-is; stdin content is spilled to a temp file
// owned by the cache. Repeated calls return the same path.
func (c *Cache) InputPath() (string, error) {
	return c.inPath.get(func() (string, error) {
		if !c.source.IsStdin() {
			return string(c.source), nil
		}
		in, err := c.Input()
		if err != nil {
			return "", err
		}
		return c.spill("refit-input-*", in.Text)
	})
}

// OutputPath returns a temp-file path holding the output content. The
// output is never materialized over the original file. Repeated calls
// return the same path.
func (c *Cache) OutputPath() (string, error) {
	return c.outPath.get(func() (string, error) {
		out, err := c.Output()
		if err != nil {
			return "", err
		}
		return c.spill("refit-output-*", out.Text)
	})
}

func (c *Cache) spill(pattern string, text []byte) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", errors.Errorf("%w: creating: %w", ErrTempFile, err)
	}
	c.tmpfiles = append(c.tmpfiles, f.Name())
	_, werr := f.Write(text)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return "", errors.Errorf("%w: writing %s: %w", ErrTempFile, f.Name(), werr)
	}
	return f.Name(), nil
}

// Close removes every temp file this cache created. Idempotent. All files
// are removed even when one removal fails; the first failure is returned.
func (c *Cache) Close() error {
	var firstErr error
	for _, path := range c.tmpfiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = errors.Errorf("removing temp file: %w", err)
		}
	}
	c.tmpfiles = nil
	return firstErr
}
