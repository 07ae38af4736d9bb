package main

import (
	"context"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"

	"refit/pkg/action"
	"refit/pkg/config"
	"refit/pkg/content"
	"refit/pkg/pipeline"
	"refit/pkg/resolve"
	"refit/pkg/transform"
	"refit/pkg/ui"
)

// errUsage marks errors that should exit with the usage status code.
var errUsage = errors.New("usage")

var (
	// Flags
	configFile  string
	actionsSpec string
	diffCommand string
	printFlag   bool
	diffFlag    bool
	replaceFlag bool
	diffReplace bool
	interactive bool
	verbose     bool
	quiet       bool
	debug       bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refit [flags] [file|glob ...]",
		Short: "Apply a text transformation to files through an action pipeline",
		Long: `refit applies the replacement rules from its config file to each input
file (or standard input), then runs a chain of actions over the result:
print it, diff it, ask before replacing, replace in place, or hand both
versions to an external command.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context(), args)
		},
	}
	addRootFlags(cmd)
	return cmd
}

func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", ".refitrc.yaml", "config file path")
	cmd.Flags().StringVar(&actionsSpec, "actions", "",
		"comma-separated actions: PRINT|REPLACE|DIFF|IFCHANGED|QUERY[:prompt]|EXECUTE:command")
	cmd.Flags().StringVar(&diffCommand, "diff-command", "",
		"external diff tool invoked as 'cmd oldpath newpath' (default: builtin)")
	cmd.Flags().BoolVarP(&printFlag, "print", "p", false, "equivalent to --actions=PRINT")
	cmd.Flags().BoolVarP(&diffFlag, "diff", "d", false, "equivalent to --actions=DIFF")
	cmd.Flags().BoolVarP(&replaceFlag, "replace", "r", false, "equivalent to --actions=IFCHANGED,REPLACE")
	cmd.Flags().BoolVarP(&diffReplace, "diff-replace", "R", false, "equivalent to --actions=IFCHANGED,DIFF,REPLACE")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "equivalent to --actions=IFCHANGED,DIFF,QUERY,REPLACE")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "be noisy")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "be quiet")
	cmd.Flags().BoolVar(&debug, "debug", false, "debug mode: noisy and fail fast")
}

// setupLogging configures zerolog based on flags and returns a context
// carrying the logger.
func setupLogging(ctx context.Context) context.Context {
	level := zerolog.InfoLevel
	switch {
	case debug, verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
	return log.WithContext(ctx)
}

func runRoot(ctx context.Context, args []string) error {
	ctx = setupLogging(ctx)
	log := zerolog.Ctx(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	actions, err := chooseActions(cfg)
	if err != nil {
		return err
	}

	errlog := &pipeline.ErrorLog{}
	sources, err := resolveSources(ctx, args, errlog)
	if err != nil {
		return err
	}

	env := action.DefaultEnv()
	env.DiffCommand = diffCommand
	if env.DiffCommand == "" {
		env.DiffCommand = cfg.Diff
	}

	mode := pipeline.ModeNormal
	if debug {
		mode = pipeline.ModeFailFast
	}

	// Status lines only make sense on a terminal; piped runs own stdout.
	var printer *ui.Printer
	if isTerminal(os.Stdout) {
		printer = ui.NewPrinter(*log)
	}

	runner := &pipeline.Runner{
		Actions:   actions,
		Transform: transform.NewReplacer(cfg.TransformRules()),
		Env:       env,
		Mode:      mode,
		UI:        printer,
	}
	return runner.Run(ctx, sources, errlog)
}

// loadConfig reads the config file. A missing file is only an error when
// the user pointed at one explicitly; the default name is optional.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && configFile == ".refitrc.yaml" {
		return &config.Config{}, nil
	}
	return nil, err
}

// chooseActions resolves the action sequence from flags, then config, then
// the environment-dependent default: interactive terminals get the full
// diff-and-ask chain, piped runs just print.
func chooseActions(cfg *config.Config) ([]action.Action, error) {
	switch {
	case actionsSpec != "":
		return action.ParseSequence(actionsSpec)
	case printFlag:
		return action.NonInteractive(), nil
	case diffFlag:
		return []action.Action{{Kind: action.KindDiff}}, nil
	case replaceFlag:
		return []action.Action{{Kind: action.KindIfChanged}, {Kind: action.KindReplace}}, nil
	case diffReplace:
		return []action.Action{{Kind: action.KindIfChanged}, {Kind: action.KindDiff}, {Kind: action.KindReplace}}, nil
	case interactive:
		return action.Interactive(), nil
	case cfg.Actions != "":
		return action.ParseSequence(cfg.Actions)
	case isTerminal(os.Stdin) && isTerminal(os.Stdout):
		return action.Interactive(), nil
	default:
		return action.NonInteractive(), nil
	}
}

// resolveSources expands the filename arguments. With no arguments, piped
// stdin is processed; an interactive run with nothing to do is a usage
// error.
func resolveSources(ctx context.Context, args []string, errlog *pipeline.ErrorLog) ([]content.Source, error) {
	log := zerolog.Ctx(ctx)
	if len(args) == 0 {
		if isTerminal(os.Stdin) {
			return nil, errors.Errorf("%w: no files given and stdin is a terminal (see --help)", errUsage)
		}
		return []content.Source{content.Stdin}, nil
	}
	sources := resolve.Resolve(args, func(arg string) {
		log.Error().Str("arg", arg).Msg("bad filename")
		errlog.Add(arg, errors.New("bad filename"))
	})
	if len(sources) == 0 && errlog.Len() == 0 {
		return nil, errors.Errorf("%w: no files matched", errUsage)
	}
	return sources, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
