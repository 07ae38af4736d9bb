// Package ui prints user-facing status lines for a run, mirroring each one
// to zerolog for debugging.
package ui

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 Printer provides user-friendly feedback about processed files.
type Printer struct {
	log zerolog.Logger
}

// NewPrinter creates a printer mirroring to the context logger.
func NewPrinter(log zerolog.Logger) *Printer {
	return &Printer{log: log}
}

// FileDone reports a file whose whole action sequence ran.
func (p *Printer) FileDone(source string) {
	pterm.Success.WithPrefix(pterm.Prefix{Text: "✓"}).Println(source)
	p.log.Info().Str("source", source).Msg("processed")
}

// FileFailed reports a file whose sequence failed.
func (p *Printer) FileFailed(source string, err error) {
	pterm.Error.WithPrefix(pterm.Prefix{Text: "✗"}).Println(source)
	p.log.Error().Str("source", source).Err(err).Msg("failed")
}

// Summary reports the end-of-run totals.
func (p *Printer) Summary(processed, failed int) {
	msg := fmt.Sprintf("%d file(s) processed, %d failed", processed, failed)
	if failed > 0 {
		pterm.Warning.Println(msg)
	} else {
		pterm.Success.Println(msg)
	}
	p.log.Info().Int("processed", processed).Int("failed", failed).Msg("run complete")
}
