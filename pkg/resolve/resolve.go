// Package resolve expands command-line arguments into the concrete sources
// a run will process.
package resolve

import (
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"refit/pkg/content"
)

// Resolve expands args into sources. Each argument is "-" (standard
// input), a literal file path, or a doublestar glob pattern. Arguments that
// match nothing are reported through onError and skipped; resolution of the
// remaining arguments continues.
func Resolve(args []string, onError func(arg string)) []content.Source {
	var sources []content.Source
	for _, arg := range args {
		if arg == "-" {
			sources = append(sources, content.Stdin)
			continue
		}
		if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() {
			sources = append(sources, content.Source(arg))
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil || len(matches) == 0 {
			onError(arg)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			sources = append(sources, content.Source(m))
		}
	}
	return sources
}
