package action

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"refit/pkg/content"
	"refit/pkg/diffutil"
	"refit/pkg/fsutil"
)

var (
	// ErrInterrupted reports an interrupt signal received while waiting at
	// an interactive prompt. The pipeline driver stops the whole run and
	// the process exits with a dedicated status code.
	ErrInterrupted = errors.New("interrupted")

	// ErrReplaceOnStdin reports an attempt to replace standard input in
	// place.
	ErrReplaceOnStdin = errors.New("cannot replace stdin in place")
)

var promptColor = color.New(color.Bold)

// Env carries the process-level collaborators actions act through. One Env
// is shared by every file in a run.
type Env struct {
	// Stdout receives printed content and diffs.
	Stdout io.Writer
	// Stderr receives external commands' stderr.
	Stderr io.Writer
	// Prompt is where QUERY reads answers from, normally the terminal.
	Prompt io.Reader
	// DiffCommand is an external diff tool invoked as
	// "cmd inputpath outputpath". Empty means the builtin diff renderer.
	DiffCommand string
	// Write replaces a file in place. Defaults to the atomic writer.
	Write func(path string, content []byte) error

	promptReader *bufio.Reader
}

// DefaultEnv wires the real process streams and the atomic file writer.
func DefaultEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Prompt: os.Stdin,
		Write:  fsutil.WriteFileAtomic,
	}
}

func (e *Env) prompt() *bufio.Reader {
	if e.promptReader == nil {
		e.promptReader = bufio.NewReader(e.Prompt)
	}
	return e.promptReader
}

// Run executes the action against the file's content cache. A non-nil
// error fails the file; Abort with a nil error just ends its sequence.
func (a Action) Run(ctx context.Context, env *Env, c *content.Cache) (Result, error) {
	switch a.Kind {
	case KindPrint:
		return runPrint(env, c)
	case KindIfChanged:
		return runIfChanged(ctx, c)
	case KindReplace:
		return runReplace(ctx, env, c)
	case KindDiff:
		return runDiff(ctx, env, c)
	case KindExecute:
		return runExternal(ctx, env, c, a.Arg, false)
	case KindQuery:
		return runQuery(ctx, env, c, a.Arg)
	}
	return Abort, errors.Errorf("unknown action kind %d", a.Kind)
}

func runPrint(env *Env, c *content.Cache) (Result, error) {
	out, err := c.Output()
	if err != nil {
		return Abort, err
	}
	if _, err := env.Stdout.Write(out.Text); err != nil {
		return Abort, errors.Errorf("writing to stdout: %w", err)
	}
	return Continue, nil
}

func runIfChanged(ctx context.Context, c *content.Cache) (Result, error) {
	in, err := c.Input()
	if err != nil {
		return Abort, err
	}
	out, err := c.Output()
	if err != nil {
		return Abort, err
	}
	if bytes.Equal(in.Text, out.Text) {
		zerolog.Ctx(ctx).Debug().Stringer("source", c.Source()).Msg("unmodified")
		return Abort, nil
	}
	return Continue, nil
}

func runReplace(ctx context.Context, env *Env, c *content.Cache) (Result, error) {
	if c.Source().IsStdin() {
		return Abort, ErrReplaceOnStdin
	}
	out, err := c.Output()
	if err != nil {
		return Abort, err
	}
	zerolog.Ctx(ctx).Info().Stringer("source", c.Source()).Msg("modified")
	if err := env.Write(string(c.Source()), out.Text); err != nil {
		return Abort, errors.Errorf("replacing %s: %w", c.Source(), err)
	}
	return Continue, nil
}

func runDiff(ctx context.Context, env *Env, c *content.Cache) (Result, error) {
	if env.DiffCommand != "" {
		return runExternal(ctx, env, c, env.DiffCommand, true)
	}
	in, err := c.Input()
	if err != nil {
		return Abort, err
	}
	out, err := c.Output()
	if err != nil {
		return Abort, err
	}
	if err := diffutil.Render(env.Stdout, in, out); err != nil {
		return Abort, err
	}
	return Continue, nil
}

// runExternal invokes "command inputpath outputpath" through the shell.
// A non-zero exit status is logged but does not fail the file: diff tools
// use it to mean "files differ", and EXECUTE keeps the same contract.
func runExternal(ctx context.Context, env *Env, c *content.Cache, command string, isDiff bool) (Result, error) {
	inPath, err := c.InputPath()
	if err != nil {
		return Abort, err
	}
	outPath, err := c.OutputPath()
	if err != nil {
		return Abort, err
	}

	full := fmt.Sprintf("%s %s %s", command, inPath, outPath)
	log := zerolog.Ctx(ctx)
	log.Debug().Str("command", full).Bool("diff", isDiff).Msg("executing external command")

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", full)
	cmd.Stdout = env.Stdout
	cmd.Stderr = env.Stderr
	runErr := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		log.Debug().Int("status", exitErr.ExitCode()).Str("command", command).
			Msg("external command returned non-zero")
		return Continue, nil
	}
	if runErr != nil {
		return Abort, errors.Errorf("running %q: %w", command, runErr)
	}
	log.Debug().Int("status", 0).Str("command", command).Msg("external command finished")
	return Continue, nil
}

func runQuery(ctx context.Context, env *Env, c *content.Cache, prompt string) (Result, error) {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	p := strings.ReplaceAll(prompt, "{filename}", c.Source().String())
	fmt.Fprintf(env.Stdout, "\n%s [y/N] ", promptColor.Sprint(p))

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := env.prompt().ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	select {
	case <-sig:
		fmt.Fprintln(env.Stderr, "interrupted")
		return Abort, ErrInterrupted
	case <-ctx.Done():
		return Abort, ErrInterrupted
	case ans := <-answers:
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(ans.line)), "y") {
			return Continue, nil
		}
		// EOF and every non-affirmative answer decline the file.
		fmt.Fprintln(env.Stdout, "Aborted")
		return Abort, nil
	}
}
