package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var keyBindings = [][2]string{
	{"`0`-`9`, `00`", "append digits"},
	{"`.`", "decimal point, once per number"},
	{"`+` `-` `*` `/`", "operator; a second operator in a row is ignored"},
	{"`Enter`, `=`", "evaluate"},
	{"`Backspace`", "delete the last character"},
	{"`Escape`", "clear everything"},
	{"`q`, `Ctrl+C`, `Ctrl+D`", "quit (tui only)"},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show the key bindings",
	RunE: func(cmd *cobra.Command, args []string) error {
		md := keysMarkdown()
		out := cmd.OutOrStdout()

		if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			_, err := fmt.Fprint(out, md)
			return err
		}

		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			return err
		}
		rendered, err := r.Render(md)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

func keysMarkdown() string {
	var b strings.Builder
	b.WriteString("# Key bindings\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, kb := range keyBindings {
		fmt.Fprintf(&b, "| %s | %s |\n", kb[0], kb[1])
	}
	b.WriteString("\nThe same key names are accepted by `POST /calculator/sessions/{id}/keys` and `calc eval --script`.\n")
	return b.String()
}
