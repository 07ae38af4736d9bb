// Package action defines the closed set of pipeline actions and their
// behavior over a per-file content cache. An action never decides the fate
// of the whole run: it continues, aborts the current file, or fails the
// current file, and the pipeline driver takes it from there.
package action

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Result is an action's verdict for the current file.
type Result int

const (
	// Continue proceeds to the next action in the sequence.
	Continue Result = iota
	// Abort skips the remaining actions for this file. Not an error.
	Abort
)

// Kind enumerates the closed action variant set.
type Kind int

const (
	KindPrint Kind = iota
	KindIfChanged
	KindReplace
	KindDiff
	KindExecute
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindPrint:
		return "PRINT"
	case KindIfChanged:
		return "IFCHANGED"
	case KindReplace:
		return "REPLACE"
	case KindDiff:
		return "DIFF"
	case KindExecute:
		return "EXECUTE"
	case KindQuery:
		return "QUERY"
	}
	return "UNKNOWN"
}

// DefaultPrompt is the QUERY prompt used when none is configured.
// {filename} is interpolated with the current source.
const DefaultPrompt = "Proceed?"

// replacePrompt is the prompt used by the interactive default sequence.
const replacePrompt = "Replace {filename}?"

// Action is one parsed pipeline step. Arg carries the command for EXECUTE
// and the prompt for QUERY; it is empty for the other kinds.
type Action struct {
	Kind Kind
	Arg  string
}

// ParseSequence parses a comma-separated action spec such as
// "IFCHANGED,DIFF,QUERY:Replace {filename}?,REPLACE". Keywords are
// case-insensitive; QUERY prompts and EXECUTE commands keep their case.
func ParseSequence(spec string) ([]Action, error) {
	var actions []Action
	for _, raw := range strings.Split(spec, ",") {
		a, err := parseOne(raw)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func parseOne(raw string) (Action, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case v == "PRINT":
		return Action{Kind: KindPrint}, nil
	case v == "REPLACE":
		return Action{Kind: KindReplace}, nil
	case v == "DIFF":
		return Action{Kind: KindDiff}, nil
	case v == "IFCHANGED":
		return Action{Kind: KindIfChanged}, nil
	case v == "QUERY":
		return Action{Kind: KindQuery, Arg: DefaultPrompt}, nil
	case strings.HasPrefix(v, "QUERY:"):
		return Action{Kind: KindQuery, Arg: strings.TrimSpace(raw)[len("QUERY:"):]}, nil
	case strings.HasPrefix(v, "EXECUTE:"):
		cmd := strings.TrimSpace(raw)[len("EXECUTE:"):]
		if strings.TrimSpace(cmd) == "" {
			return Action{}, errors.Errorf("bad action %q: EXECUTE requires a command", raw)
		}
		return Action{Kind: KindExecute, Arg: cmd}, nil
	default:
		return Action{}, errors.Errorf(
			"bad action %q: expected PRINT, REPLACE, DIFF, IFCHANGED, QUERY[:prompt] or EXECUTE:command", raw)
	}
}

// Interactive is the default sequence when both stdin and stdout are
// terminals: show a diff and ask before replacing, skipping unchanged files.
func Interactive() []Action {
	return []Action{
		{Kind: KindIfChanged},
		{Kind: KindDiff},
		{Kind: KindQuery, Arg: replacePrompt},
		{Kind: KindReplace},
	}
}

// NonInteractive is the default sequence for piped runs: print the
// transformed content to stdout.
func NonInteractive() []Action {
	return []Action{{Kind: KindPrint}}
}
