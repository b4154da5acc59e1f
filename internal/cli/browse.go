package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/pipeline"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"github.com/spf13/pflag"
)

const browseHelp = `Comandos:
  /texto          busca no título ou descrição
  empresa <id>    filtra por empresa (vazio limpa)
  categoria <id>  filtra por categoria (vazio limpa)
  de <dia>        abertos a partir de YYYY-MM-DD
  ate <dia>       abertos até YYYY-MM-DD
  limpar          remove todos os filtros
  tab <status>    aberto, em_andamento, fechado
  n / p           próxima / página anterior
  r               recarrega
  abrir <id>      abre o ticket para edição
  titulo <texto>  altera o título do rascunho
  descricao <txt> altera a descrição do rascunho
  status <status> altera o status do rascunho
  salvar          envia só os campos alterados
  cancelar        descarta o rascunho
  q               sai`

func ticketsBrowseCommand(r *Runner) *Command {
	var tab string
	return &Command{
		Name:    "browse",
		Summary: "Navega pelos tickets com filtros interativos",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("browse", pflag.ContinueOnError)
			fs.StringVar(&tab, "tab", string(domain.StatusAberto), "aba inicial")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			status, err := domain.ParseTicketStatus(tab)
			if err != nil {
				return err
			}

			lines, restore, err := newLineIO(r.in, r.out, "filtro> ")
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			defer restore()

			b := newBrowser(app.Tickets, lines, app.Config.DebounceDelay)
			defer b.close()
			return b.run(ctx, status)
		},
	}
}

// browser is the interactive ticket list. Filter edits go through a
// FilterBar, so only the last edit within the debounce window reaches
// the page.
type browser struct {
	page  *service.TicketsPage
	lines lineIO
	bar   *pipeline.FilterBar

	mu sync.Mutex // serializes rendering
}

func newBrowser(page *service.TicketsPage, lines lineIO, delay time.Duration) *browser {
	b := &browser{page: page, lines: lines}
	b.bar = pipeline.NewFilterBar(delay, b.applyFilters)
	return b
}

func (b *browser) close() {
	b.bar.Close()
}

func (b *browser) applyFilters(f pipeline.Filters) {
	view, err := b.page.SetFilters(f)
	if err != nil {
		b.printErr(err)
		return
	}
	b.render(view)
}

func (b *browser) render(v *service.TicketsView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	renderTickets(b.lines, v)
}

func (b *browser) printErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.lines, toastStyles[ui.ToastError].Render("✗ "+domain.UserMessage(err, err.Error())))
}

func (b *browser) run(ctx context.Context, tab domain.TicketStatus) error {
	if _, err := b.page.Load(ctx); err != nil {
		return err
	}
	view, err := b.page.SetTab(tab)
	if err != nil {
		return err
	}
	b.render(view)
	fmt.Fprintln(b.lines, mutedStyle.Render("? para ajuda"))

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := b.lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := b.handle(ctx, strings.TrimSpace(line)); quit {
			return nil
		}
	}
}

// handle runs one browse command and reports whether to quit.
func (b *browser) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch {
	case line == "":
		return false
	case strings.HasPrefix(line, "/"):
		b.bar.SetDescricao(strings.TrimPrefix(line, "/"))
	case cmd == "empresa":
		b.bar.SetEmpresa(arg)
	case cmd == "categoria":
		b.bar.SetCategoria(arg)
	case cmd == "de":
		b.bar.SetDataInicio(arg)
	case cmd == "ate":
		b.bar.SetDataFim(arg)
	case cmd == "limpar":
		b.bar.Clear()
	case cmd == "tab":
		status, err := domain.ParseTicketStatus(arg)
		if err != nil {
			b.printErr(err)
			return false
		}
		b.show(b.page.SetTab(status))
	case cmd == "n":
		b.render(b.page.SetPage(b.page.View().Page.Page + 1))
	case cmd == "p":
		b.render(b.page.SetPage(b.page.View().Page.Page - 1))
	case cmd == "r":
		b.show(b.page.Load(ctx))
	case cmd == "abrir":
		if err := b.page.OpenTicket(arg); err != nil {
			b.printErr(err)
			return false
		}
		b.showDraft()
	case cmd == "titulo":
		b.editDraft(func(m *ui.TicketModal) error { m.SetTitulo(arg); return nil })
	case cmd == "descricao":
		b.editDraft(func(m *ui.TicketModal) error { m.SetDescricao(arg); return nil })
	case cmd == "status":
		b.editDraft(func(m *ui.TicketModal) error {
			status, err := domain.ParseTicketStatus(arg)
			if err != nil {
				return err
			}
			return m.SetStatus(status)
		})
	case cmd == "salvar":
		if !b.page.Modal.IsOpen() {
			b.printErr(errNoDraft)
			return false
		}
		t, err := b.page.SaveTicket(ctx)
		if err != nil {
			// The draft stays open for another try or cancelar.
			b.printErr(err)
			return false
		}
		b.mu.Lock()
		fmt.Fprintf(b.lines, "Ticket #%s salvo\n", orDash(t.Numero))
		b.mu.Unlock()
	case cmd == "cancelar":
		b.page.Modal.Cancel()
	case cmd == "q" || cmd == "sair":
		return true
	case cmd == "?":
		b.mu.Lock()
		fmt.Fprintln(b.lines, browseHelp)
		b.mu.Unlock()
	default:
		if n, err := strconv.Atoi(cmd); err == nil {
			b.render(b.page.SetPage(n))
			return false
		}
		b.printErr(fmt.Errorf("comando desconhecido: %q (? para ajuda)", line))
	}
	return false
}

func (b *browser) show(v *service.TicketsView, err error) {
	if err != nil {
		b.printErr(err)
		return
	}
	b.render(v)
}

var errNoDraft = errors.New("nenhum ticket aberto (abrir <id>)")

func (b *browser) editDraft(fn func(*ui.TicketModal) error) {
	m := b.page.Modal
	if !m.IsOpen() {
		b.printErr(errNoDraft)
		return
	}
	if err := fn(m); err != nil {
		b.printErr(err)
		return
	}
	b.showDraft()
}

func (b *browser) showDraft() {
	d := b.page.Modal.Draft()
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.lines, "%s %s\n%s %s\n", mutedStyle.Render("Título:"), d.Titulo,
		mutedStyle.Render("Status:"), statusBadge(d.Status))
}
