package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"calc-editor/internal/editor"
	"calc-editor/internal/evaluator"
	"calc-editor/internal/keyboard"
)

var evalCmd = &cobra.Command{
	Use:   "eval [expression]",
	Short: "Type an expression into the editor and evaluate it",
	Long: `Appends each character of the expression to a fresh editor, exactly as
if typed, then evaluates. Characters the editor rejects are dropped the same
way the keypad drops them.

With --script, key names are read from a file instead, whitespace separated,
one or more per line. Lines starting with # are comments. The script decides
itself when to press Enter.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, _ := cmd.Flags().GetString("script")

		var (
			actions []editor.Action
			err     error
		)
		switch {
		case script != "" && len(args) > 0:
			return fmt.Errorf("pass either an expression or --script, not both")
		case script != "":
			actions, err = readScript(afero.NewOsFs(), script)
		case len(args) == 1:
			actions, err = typeActions(args[0])
		default:
			return fmt.Errorf("an expression or --script is required")
		}
		if err != nil {
			return err
		}

		ed := editor.New(editor.NewMachine(evaluator.New()))
		for _, a := range actions {
			ed.Dispatch(a)
		}

		out := cmd.OutOrStdout()
		printSnapshot(newOutput(out), ed.Snapshot())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().String("script", "", "File of key names to replay")
}

// typeActions types expr and presses Enter at the end.
func typeActions(expr string) ([]editor.Action, error) {
	actions, err := keyboard.Type(expr)
	if err != nil {
		return nil, err
	}
	return append(actions, editor.EvaluateAction), nil
}

// readScript parses a key-name script from fsys.
func readScript(fsys afero.Fs, path string) ([]editor.Action, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var actions []editor.Action
	sc := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		for _, name := range strings.Fields(text) {
			a, err := keyboard.FromName(name)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			actions = append(actions, a)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return actions, nil
}

// newOutput colours only real terminals.
func newOutput(w io.Writer) *termenv.Output {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.NewOutput(w)
	}
	return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
}

func printSnapshot(out *termenv.Output, s editor.Snapshot) {
	fmt.Fprintln(out, s.Display())

	text := s.Result.Text()
	if text == "" {
		return
	}
	styled := out.String(text).Bold()
	if s.Result.IsError() {
		styled = styled.Foreground(out.Color("1"))
	} else {
		styled = styled.Foreground(out.Color("2"))
	}
	fmt.Fprintln(out, styled)
}
