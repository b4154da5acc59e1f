package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/boddenberg/helpdesk-admin-go/internal/cli"

	"github.com/spf13/pflag"
)

func newTree(got *[]string, n *int) *cli.Command {
	return &cli.Command{
		Name:    "helpdesk",
		Summary: "root",
		Subcommands: []*cli.Command{
			{
				Name:    "tickets",
				Summary: "tickets",
				Subcommands: []*cli.Command{
					{
						Name:    "list",
						Summary: "Lista tickets",
						Flags: func() *pflag.FlagSet {
							fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
							fs.IntVar(n, "page", 1, "página")
							return fs
						},
						Run: func(ctx context.Context, args []string) error {
							*got = args
							return nil
						},
					},
				},
			},
		},
	}
}

func TestExecute_DispatchesWithFlags(t *testing.T) {
	var got []string
	var page int
	root := newTree(&got, &page)

	if err := root.Execute(context.Background(), []string{"tickets", "list", "--page", "3", "extra"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 3 {
		t.Errorf("expected page 3, got %d", page)
	}
	if len(got) != 1 || got[0] != "extra" {
		t.Errorf("expected positional [extra], got %v", got)
	}
}

func TestExecute_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"nada"}},
		{"unknown subcommand", []string{"tickets", "nada"}},
		{"subcommand required", []string{"tickets"}},
		{"bad flag", []string{"tickets", "list", "--bogus"}},
		{"bad flag value", []string{"tickets", "list", "--page", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			var page int
			err := newTree(&got, &page).Execute(context.Background(), tt.args)
			if !errors.Is(err, cli.ErrUsage) {
				t.Errorf("expected ErrUsage, got %v", err)
			}
		})
	}
}

func TestExecute_HelpDoesNotRun(t *testing.T) {
	var got []string
	var page int
	root := newTree(&got, &page)

	for _, h := range []string{"-h", "--help", "help"} {
		if err := root.Execute(context.Background(), []string{"tickets", "list", h}); err != nil {
			t.Errorf("%s: unexpected error: %v", h, err)
		}
	}
	if got != nil {
		t.Errorf("Run should not be called for help, got args %v", got)
	}
}

func TestPrintHelp(t *testing.T) {
	var got []string
	var page int
	root := newTree(&got, &page)

	var buf bytes.Buffer
	root.PrintHelp(&buf)
	out := buf.String()
	for _, want := range []string{"root", "Usage:", "helpdesk <command> [flags]", "tickets"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	root.Subcommands[0].Subcommands[0].PrintHelp(&buf)
	if !strings.Contains(buf.String(), "--page") {
		t.Errorf("leaf help should list flags:\n%s", buf.String())
	}
}
