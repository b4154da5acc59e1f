// Package cli is the helpdesk command line: a tree of subcommands that
// drive the page controllers and print their views with lipgloss.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// ErrUsage marks errors caused by a bad command line.
var ErrUsage = errors.New("usage error")

// Command is a CLI command or subcommand.
type Command struct {
	// Name is the command name as typed (e.g. "tickets", "list").
	Name string

	// Summary is a one-line description shown in the parent's help.
	Summary string

	// Usage replaces the synthesized usage line when set.
	Usage string

	// Flags returns the flag set of this command. Called lazily; nil
	// means the command takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands are dispatched by the first positional argument.
	Subcommands []*Command

	// Run executes the command with the positional args left after flag
	// parsing. Used when no subcommand matches.
	Run func(ctx context.Context, args []string) error

	parent *Command
	out    io.Writer
}

// Execute parses args and dispatches to the matching subcommand or Run.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.writer())
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.Subcommands {
			if sub.Name == args[0] {
				sub.parent = c
				return sub.Execute(ctx, args[1:])
			}
		}
		if c.Run == nil {
			return fmt.Errorf("%w: unknown command %q\n\nRun '%s --help' for usage", ErrUsage, args[0], c.fullName())
		}
	}

	if c.Run == nil {
		c.PrintHelp(c.writer())
		return fmt.Errorf("%w: subcommand required", ErrUsage)
	}

	if c.Flags != nil {
		fs := c.Flags()
		fs.SetOutput(io.Discard)
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("%w: %v\n\nRun '%s --help' for usage", ErrUsage, err, c.fullName())
		}
		args = fs.Args()
	}
	return c.Run(ctx, args)
}

// PrintHelp writes the command help to w.
func (c *Command) PrintHelp(w io.Writer) {
	if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", c.fullName())
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.fullName())
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		var b strings.Builder
		fs := c.Flags()
		fs.SetOutput(&b)
		fs.PrintDefaults()
		if b.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", b.String())
		}
	}
}

func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func (c *Command) writer() io.Writer {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.out != nil {
			return cmd.out
		}
	}
	return io.Discard
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// requireArgs fails unless exactly n positional args were given.
func requireArgs(args []string, n int, names string) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %s", ErrUsage, names)
	}
	return nil
}

// changedString returns &value when the flag was set on the command line.
func changedString(fs *pflag.FlagSet, name, value string) *string {
	if fs == nil || !fs.Changed(name) {
		return nil
	}
	return &value
}

func changedInt(fs *pflag.FlagSet, name string, value int) *int {
	if fs == nil || !fs.Changed(name) {
		return nil
	}
	return &value
}

func changedFloat(fs *pflag.FlagSet, name string, value float64) *float64 {
	if fs == nil || !fs.Changed(name) {
		return nil
	}
	return &value
}

func changedBool(fs *pflag.FlagSet, name string, value bool) *bool {
	if fs == nil || !fs.Changed(name) {
		return nil
	}
	return &value
}
