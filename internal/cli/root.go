package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DBPath     string
	Backend    string
	Theme      string
	Color      string // "auto" | "always" | "never"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidColorModes defines the allowed --color values.
var ValidColorModes = []string{"auto", "always", "never"}

// NewRootCommand creates the root command for the shoplist CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shoplist",
		Short: "shoplist - a tiny shopping list",
		Long: `A shopping list kept in a local SQLite database.

Items are shown newest first. Commands that take <n> address the item at that
1-based position in the list (as printed by "shoplist ls"); pass --id to
address an item by its id instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if !contains(ValidColorModes, opts.Color) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid color %q: must be one of %v", opts.Color, ValidColorModes))
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "usage: "+c.UseLine(), err)
	})

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigPath, "config", "", "path to config file (default ~/.shoplist/config.yaml)")
	pf.StringVar(&opts.DBPath, "db", "", "path to the item store file")
	pf.StringVar(&opts.Backend, "backend", "", "item store backend (sqlite|json)")
	pf.StringVar(&opts.Theme, "theme", "", "output theme (classic|neon|mono)")
	pf.StringVar(&opts.Color, "color", "auto", "colour output (auto|always|never); auto honours NO_COLOR")

	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newToggleCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newTUICommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stdout in JSON mode and on stderr otherwise.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	out := &OutputFormatter{Format: opts.Format, Writer: stdout, ErrWriter: stderr}
	if !isValidFormat(opts.Format) {
		out.Format = "text"
	}
	out.Error(err)
	return GetExitCode(err)
}

// usageArgs turns a positional-args failure into a usage exit code.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "usage: "+cmd.UseLine(), err)
		}
		return nil
	}
}

func isValidFormat(format string) bool {
	return contains(ValidFormats, format)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
