// Package pipeline drives the per-file action sequence: it builds a content
// cache for each resolved source, runs the configured actions in order with
// early-abort semantics, and aggregates failures across files so one bad
// file never stops a run.
package pipeline

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"refit/pkg/action"
	"refit/pkg/content"
	"refit/pkg/ui"
)

// Mode selects the error recovery policy of a run.
type Mode int

const (
	// ModeNormal records per-file failures and keeps going.
	ModeNormal Mode = iota
	// ModeFailFast propagates the first failure immediately. Development
	// use; paired with debug logging.
	ModeFailFast
)

// Runner executes the action sequence over a set of sources, strictly one
// file at a time: actions write to shared process streams and may block on
// the user, so there is nothing to parallelize safely.
type Runner struct {
	// Actions is the parsed sequence, shared read-only across all files.
	Actions []action.Action
	// Transform is the injected content transformation, shared read-only.
	Transform content.Transform
	// Env carries the process-level collaborators actions act through.
	Env *action.Env
	// Mode selects error recovery, ModeNormal by default.
	Mode Mode
	// UI, when set, receives per-file status lines for the user.
	UI *ui.Printer
	// Stdin overrides where the stdin sentinel reads content from.
	// Defaults to the process's standard input.
	Stdin io.Reader
}

// Run processes every source in order. It returns nil when all files
// succeeded, a *SummaryError aggregating per-file failures otherwise, and
// action.ErrInterrupted as soon as the user interrupts a prompt.
func (r *Runner) Run(ctx context.Context, sources []content.Source, log *ErrorLog) error {
	if log == nil {
		log = &ErrorLog{}
	}
	processed := 0
	for _, src := range sources {
		err := r.runOne(ctx, src)
		if err == nil {
			processed++
			continue
		}
		if errors.Is(err, action.ErrInterrupted) {
			return err
		}
		if r.Mode == ModeFailFast {
			return errors.Errorf("processing %s: %w", src, err)
		}
		zerolog.Ctx(ctx).Error().Stringer("source", src).Err(err).Msg("processing failed")
		if r.UI != nil {
			r.UI.FileFailed(src.String(), err)
		}
		log.Add(src.String(), err)
	}
	if r.UI != nil {
		r.UI.Summary(processed, log.Len())
	}
	if log.Len() > 0 {
		return &SummaryError{Log: log}
	}
	return nil
}

// runOne runs the action sequence for a single source. The content cache is
// closed on every exit path; a cleanup failure surfaces like any other
// per-file error.
func (r *Runner) runOne(ctx context.Context, src content.Source) (err error) {
	c := content.NewCache(src, r.Transform)
	if r.Stdin != nil {
		c.ReadStdinFrom(r.Stdin)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = errors.Errorf("cleaning up temp files: %w", cerr)
		}
	}()

	for _, a := range r.Actions {
		res, err := a.Run(ctx, r.Env, c)
		if err != nil {
			return err
		}
		if res == action.Abort {
			return nil
		}
	}
	if r.UI != nil {
		r.UI.FileDone(src.String())
	}
	return nil
}
