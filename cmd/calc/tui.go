package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"calc-editor/internal/editor"
	"calc-editor/internal/evaluator"
	"calc-editor/internal/observability"
	"calc-editor/internal/tui"
)

var errNotTerminal = errors.New("calc tui needs an interactive terminal")

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit expressions in the terminal",
	Long: `Opens the calculator in the terminal. Type digits and operators,
Enter or = evaluates, Backspace deletes, Esc clears, q or Ctrl+C quits.
Logs go to log_file when set and are discarded otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			return errNotTerminal
		}

		// Logging to stderr would tear the screen.
		if cfg.LogFile != "" {
			if err := observability.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
				return err
			}
			defer observability.SyncLogger()
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				panic(r)
			}
			screen.Fini()
		}()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()

		ed := editor.New(editor.NewMachine(evaluator.New()))
		return tui.New(screen, ed, observability.Logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
