package cli

import (
	"context"
	"fmt"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/pipeline"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"

	"github.com/spf13/pflag"
)

func dashboardCommand(r *Runner) *Command {
	var tab string
	return &Command{
		Name:    "dashboard",
		Summary: "Resumo e tickets recentes",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
			fs.StringVar(&tab, "tab", string(domain.StatusAberto), "aba: aberto, em_andamento, fechado")
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
			if _, err := app.Dashboard.Load(ctx); err != nil {
				return err
			}
			view, err := app.Dashboard.SetTab(status)
			if err != nil {
				return err
			}
			renderDashboard(r.out, view)
			return nil
		},
	}
}

func ticketsCommand(r *Runner) *Command {
	return &Command{
		Name:    "tickets",
		Summary: "Lista e edita tickets",
		Subcommands: []*Command{
			ticketsListCommand(r),
			ticketsShowCommand(r),
			ticketsFindCommand(r),
			ticketsCreateCommand(r),
			ticketsEditCommand(r),
			ticketsCloseCommand(r),
			ticketsMoveCommand(r),
			ticketsDeleteCommand(r),
			ticketsBrowseCommand(r),
		},
	}
}

type ticketListFlags struct {
	tab      string
	filters  pipeline.Filters
	page     int
	pageSize int
}

func (f *ticketListFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.tab, "tab", string(domain.StatusAberto), "aba: aberto, em_andamento, fechado")
	fs.StringVar(&f.filters.EmpresaID, "empresa", "", "filtra por empresa (ID)")
	fs.StringVar(&f.filters.CategoriaID, "categoria", "", "filtra por categoria (ID)")
	fs.StringVar(&f.filters.Descricao, "busca", "", "texto no título ou descrição")
	fs.StringVar(&f.filters.DataInicio, "de", "", "abertos a partir de (YYYY-MM-DD)")
	fs.StringVar(&f.filters.DataFim, "ate", "", "abertos até (YYYY-MM-DD)")
	fs.IntVar(&f.page, "page", 1, "página")
	fs.IntVar(&f.pageSize, "page-size", 0, "itens por página: 10, 20, 50 ou 100")
}

// apply runs the list pipeline in order: load, tab, filters, page size,
// page.
func (f *ticketListFlags) apply(ctx context.Context, p *service.TicketsPage) (*service.TicketsView, error) {
	status, err := domain.ParseTicketStatus(f.tab)
	if err != nil {
		return nil, err
	}
	if _, err := p.Load(ctx); err != nil {
		return nil, err
	}
	if _, err := p.SetTab(status); err != nil {
		return nil, err
	}
	if _, err := p.SetFilters(f.filters); err != nil {
		return nil, err
	}
	if f.pageSize != 0 {
		if _, err := p.SetPageSize(f.pageSize); err != nil {
			return nil, err
		}
	}
	return p.SetPage(f.page), nil
}

func ticketsListCommand(r *Runner) *Command {
	var f ticketListFlags
	return &Command{
		Name:    "list",
		Summary: "Lista tickets por aba com filtros",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			f.register(fs)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			view, err := f.apply(ctx, app.Tickets)
			if err != nil {
				return err
			}
			renderTickets(r.out, view)
			return nil
		},
	}
}

func ticketsShowCommand(r *Runner) *Command {
	return &Command{
		Name:    "show",
		Summary: "Mostra um ticket",
		Usage:   "helpdesk tickets show <id>",
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "<id>"); err != nil {
				return err
			}
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			d, err := app.Tickets.Detail(ctx, args[0])
			if err != nil {
				return err
			}
			renderTicket(r.out, d)
			return nil
		},
	}
}

func ticketsFindCommand(r *Runner) *Command {
	var empresa, st string
	return &Command{
		Name:    "find",
		Summary: "Consulta o backend por empresa e status, sem abas nem paginação",
		Usage:   "helpdesk tickets find [--empresa ID] [--status STATUS]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("find", pflag.ContinueOnError)
			fs.StringVar(&empresa, "empresa", "", "empresa (ID)")
			fs.StringVar(&st, "status", "", "aberto, em_andamento ou fechado")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			var status domain.TicketStatus
			if st != "" {
				var err error
				if status, err = domain.ParseTicketStatus(st); err != nil {
					return err
				}
			}
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			tickets, err := app.Tickets.Search(ctx, empresa, status)
			if err != nil {
				return err
			}
			renderTable(r.out, ticketHeaders, ticketRows(tickets, nil))
			return nil
		},
	}
}

func ticketsCreateCommand(r *Runner) *Command {
	var in domain.TicketCreateInput
	return &Command{
		Name:    "create",
		Summary: "Abre um ticket",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&in.EmpresaID, "empresa", "", "empresa (ID)")
			fs.StringVar(&in.ContatoID, "contato", "", "contato da empresa (ID)")
			fs.StringVar(&in.CategoriaID, "categoria", "", "categoria (ID)")
			fs.StringVar(&in.Titulo, "titulo", "", "título (mínimo 5 caracteres)")
			fs.StringVar(&in.Descricao, "descricao", "", "descrição (mínimo 10 caracteres)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			t, err := app.Tickets.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Ticket #%s aberto (%s)\n", orDash(t.Numero), t.ID)
			return nil
		},
	}
}

func ticketsEditCommand(r *Runner) *Command {
	var fs *pflag.FlagSet
	var titulo, descricao, categoria, contato, st string
	return &Command{
		Name:    "edit",
		Summary: "Edita um ticket; só os campos informados são enviados",
		Usage:   "helpdesk tickets edit <id> [flags]",
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("edit", pflag.ContinueOnError)
			fs.StringVar(&titulo, "titulo", "", "novo título")
			fs.StringVar(&descricao, "descricao", "", "nova descrição")
			fs.StringVar(&categoria, "categoria", "", "nova categoria (ID)")
			fs.StringVar(&contato, "contato", "", "novo contato (ID)")
			fs.StringVar(&st, "status", "", "novo status: aberto, em_andamento, fechado")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "<id>"); err != nil {
				return err
			}
			u := domain.TicketUpdate{
				Titulo:      changedString(fs, "titulo", titulo),
				Descricao:   changedString(fs, "descricao", descricao),
				CategoriaID: changedString(fs, "categoria", categoria),
				ContatoID:   changedString(fs, "contato", contato),
			}
			if v := changedString(fs, "status", st); v != nil {
				status, err := domain.ParseTicketStatus(*v)
				if err != nil {
					return err
				}
				u.Status = &status
			}
			if u.IsEmpty() {
				return fmt.Errorf("%w: informe ao menos um campo para alterar", ErrUsage)
			}
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}

			t, err := app.Tickets.EditTicket(ctx, args[0], u)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Ticket #%s salvo\n", orDash(t.Numero))
			return nil
		},
	}
}

func ticketsCloseCommand(r *Runner) *Command {
	var (
		solucao string
		horas   float64
	)
	return &Command{
		Name:    "close",
		Summary: "Fecha um ticket com a solução aplicada",
		Usage:   "helpdesk tickets close <id> --solucao TEXTO [--horas N]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("close", pflag.ContinueOnError)
			fs.StringVar(&solucao, "solucao", "", "descrição da solução (mínimo 10 caracteres)")
			fs.Float64Var(&horas, "horas", 0, "tempo gasto em horas")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "<id>"); err != nil {
				return err
			}
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			t, err := app.Tickets.CloseTicket(ctx, args[0], solucao, horas)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Ticket #%s fechado\n", orDash(t.Numero))
			return nil
		},
	}
}

func ticketsMoveCommand(r *Runner) *Command {
	return &Command{
		Name:    "move",
		Summary: "Muda só o status de um ticket",
		Usage:   "helpdesk tickets move <id> <status>",
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 2, "<id> <status>"); err != nil {
				return err
			}
			status, err := domain.ParseTicketStatus(args[1])
			if err != nil {
				return err
			}
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			t, err := app.Tickets.MoveTicket(ctx, args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Ticket #%s agora está %s\n", orDash(t.Numero), statusBadge(t.Status))
			return nil
		},
	}
}

func ticketsDeleteCommand(r *Runner) *Command {
	return &Command{
		Name:    "delete",
		Summary: "Deleta um ticket (pede confirmação)",
		Usage:   "helpdesk tickets delete <id>",
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "<id>"); err != nil {
				return err
			}
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			deleted, err := app.Tickets.DeleteTicket(ctx, args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(r.out, "Cancelado")
			}
			return nil
		},
	}
}
