package pipeline

import (
	"strings"
)

// Entry is one recorded per-file failure.
type Entry struct {
	Source string
	Detail string
}

// ErrorLog accumulates per-file failures over a run. It grows
// monotonically and is drained once at the end into a consolidated
// summary. Single-threaded, like the run itself.
type ErrorLog struct {
	entries []Entry
}

// Add records a failure for source. The source name ends up in the summary
// exactly once: when the detail already mentions it, the detail is kept
// as-is, otherwise it is prefixed.
func (l *ErrorLog) Add(source string, err error) {
	detail := err.Error()
	if !strings.Contains(detail, source) {
		detail = source + ": " + detail
	}
	l.entries = append(l.entries, Entry{Source: source, Detail: detail})
}

// Len returns the number of recorded failures.
func (l *ErrorLog) Len() int {
	return len(l.entries)
}

// Entries returns the recorded failures in insertion order.
func (l *ErrorLog) Entries() []Entry {
	return l.entries
}

// Summary renders the consolidated end-of-run report: one line per failed
// file, with any trailing detail lines indented beneath it.
func (l *ErrorLog) Summary() string {
	var b strings.Builder
	b.WriteString("encountered the following problems:\n")
	for _, e := range l.entries {
		lines := strings.Split(e.Detail, "\n")
		b.WriteString("    " + lines[0] + "\n")
		for _, line := range lines[1:] {
			b.WriteString("            " + line + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// SummaryError is the error a run returns when any file failed.
type SummaryError struct {
	Log *ErrorLog
}

func (e *SummaryError) Error() string {
	return e.Log.Summary()
}
