package cli_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/cli"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"
)

func TestPrompter_AnswersFromInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		assumeYes bool
		want      bool
	}{
		{"s confirms", "s\n", false, true},
		{"sim confirms", "sim\n", false, true},
		{"empty line confirms", "\n", false, true},
		{"n cancels", "n\n", false, false},
		{"anything else cancels", "talvez\n", false, false},
		{"eof cancels", "", false, false},
		{"assume yes", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ui.NewConfirm()
			detach := cli.NewPrompter(c, strings.NewReader(tt.input), io.Discard, tt.assumeYes).Attach()
			defer detach()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			ok, err := c.Show(ctx, ui.ConfirmOptions{Title: "Deletar Empresa", Message: "Tem certeza?"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("expected %v, got %v", tt.want, ok)
			}
		})
	}
}

func TestPrompter_RendersDialog(t *testing.T) {
	c := ui.NewConfirm()
	var out bytes.Buffer
	detach := cli.NewPrompter(c, strings.NewReader("s\n"), &out, false).Attach()
	defer detach()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.Show(ctx, ui.ConfirmOptions{Title: "Deletar Lançamento", Message: "Tem certeza?"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Deletar Lançamento") {
		t.Errorf("dialog title not rendered:\n%s", out.String())
	}
}

func TestPrompter_AnswersQueuedDialogsInOrder(t *testing.T) {
	c := ui.NewConfirm()
	detach := cli.NewPrompter(c, strings.NewReader("n\ns\n"), io.Discard, false).Attach()
	defer detach()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	first, err := c.Show(ctx, ui.ConfirmOptions{Title: "primeiro"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Show(ctx, ui.ConfirmOptions{Title: "segundo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first || !second {
		t.Errorf("expected false then true, got %v then %v", first, second)
	}
}

func TestPrompter_DetachStopsAnswering(t *testing.T) {
	c := ui.NewConfirm()
	detach := cli.NewPrompter(c, strings.NewReader("s\n"), io.Discard, false).Attach()
	detach()
	detach() // idempotent

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Show(ctx, ui.ConfirmOptions{Title: "x"}); err == nil {
		t.Error("expected the dialog to stay open after detach")
	}
}
