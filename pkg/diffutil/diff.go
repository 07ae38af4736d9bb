// Package diffutil renders a colored line diff between input and output
// content. It backs the DIFF action when no external diff command is
// configured.
package diffutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"

	"refit/pkg/content"
)

var (
	headerColor = color.New(color.Faint)
	insertColor = color.New(color.FgGreen)
	deleteColor = color.New(color.FgRed)
)

// Render writes a line-based diff of a against b to w. Unchanged regions
// are elided down to the surrounding context line count used by the
// diffmatchpatch line mode.
func Render(w io.Writer, a, b content.Content) error {
	if _, err := headerColor.Fprintf(w, "--- %s\n+++ %s (transformed)\n", a.Source, b.Source); err != nil {
		return errors.Errorf("writing diff header: %w", err)
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a.String(), b.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	for _, d := range diffs {
		var prefix string
		var c *color.Color
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, c = "+", insertColor
		case diffmatchpatch.DiffDelete:
			prefix, c = "-", deleteColor
		case diffmatchpatch.DiffEqual:
			prefix, c = " ", nil
		}
		for _, line := range splitLines(d.Text) {
			var err error
			if c != nil {
				_, err = c.Fprintf(w, "%s%s\n", prefix, line)
			} else {
				_, err = fmt.Fprintf(w, "%s%s\n", prefix, line)
			}
			if err != nil {
				return errors.Errorf("writing diff line: %w", err)
			}
		}
	}
	return nil
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
