package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/five82/mopidy-bridge/internal/app"
	"github.com/five82/mopidy-bridge/internal/prefs"
	"github.com/five82/mopidy-bridge/internal/ui"
)

const exitInterrupted = 130

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return exitCode(newRootCmd().ExecuteContext(ctx))
}

// exitCode maps the command result to the process status: 130 after an
// interrupt, 1 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrInterrupted):
		return exitInterrupted
	default:
		fmt.Fprintf(os.Stderr, "mopidy-bridge: %v\n", err)
		return 1
	}
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "mopidy-bridge [ino|terminal]",
		Short: "Drive Mopidy from a serial controller or the terminal",
		Long: `mopidy-bridge starts Mopidy, waits for it to answer, and then forwards
commands from an Arduino on the serial port (ino) or from an interactive
prompt (terminal). Spotify links are queued with an audible confirmation.`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     app.Modes(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := resolveMode(cmd.Context(), args, opts.PrefsPath)
			if err != nil {
				return err
			}
			opts.Mode = mode
			return app.Run(cmd.Context(), opts)
		},
	}

	bindFlags(cmd.Flags(), &opts)
	return cmd
}

func bindFlags(flags *pflag.FlagSet, opts *app.Options) {
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.config/mopidy-bridge/config.toml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&opts.NoServer, "no-server", false, "connect to an already running server instead of launching one")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/mopidy-bridge/prefs.toml)")
	_ = flags.MarkHidden("prefs")
}

// resolveMode takes the mode from args, or asks for it on the terminal and
// remembers the answer as the next default. An interrupt at the prompt
// returns app.ErrInterrupted.
func resolveMode(ctx context.Context, args []string, prefsPath string) (app.Mode, error) {
	if len(args) == 1 {
		return app.ParseMode(args[0])
	}

	remembered := prefs.Load(prefsPath).Mode
	answer, err := ui.PromptMode(ctx, app.Modes(), remembered)
	if ctx.Err() != nil {
		return "", app.ErrInterrupted
	}
	if err != nil {
		return "", fmt.Errorf("choose mode: %w", err)
	}
	mode, err := app.ParseMode(answer)
	if err != nil {
		return "", err
	}
	if answer != remembered {
		_ = prefs.Update(prefsPath, func(p *prefs.Prefs) { p.Mode = answer })
	}
	return mode, nil
}
