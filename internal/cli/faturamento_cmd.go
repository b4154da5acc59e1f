package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"

	"github.com/spf13/pflag"
)

// queryFlags selects the month, company and status of the billing page.
type queryFlags struct {
	mes     string
	empresa string
	status  string
}

func (f *queryFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.mes, "mes", "", "mês de referência AAAA-MM (padrão: mês atual)")
	fs.StringVar(&f.empresa, "empresa", "", "filtra por empresa (ID)")
	fs.StringVar(&f.status, "status", string(service.StatusTodos), "todos, faturado ou pendente")
}

func (f *queryFlags) load(ctx context.Context, p *service.FinanceiroPage) (*service.FinanceiroView, error) {
	status, err := service.ParseStatusFilter(f.status)
	if err != nil {
		return nil, err
	}
	return p.SetQuery(ctx, service.FinanceiroQuery{
		MesReferencia: f.mes,
		EmpresaID:     f.empresa,
		Status:        status,
	})
}

func (f *queryFlags) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.register(fs)
	return fs
}

func faturamentoCommand(r *Runner) *Command {
	return &Command{
		Name:    "faturamento",
		Summary: "Lançamentos financeiros por mês",
		Subcommands: []*Command{
			faturamentoListCommand(r),
			faturamentoResumoCommand(r),
			faturamentoCreateCommand(r),
			faturamentoEditCommand(r),
			faturamentoToggleCommand(r),
			faturamentoDeleteCommand(r),
			faturamentoExportCommand(r),
		},
	}
}

func faturamentoListCommand(r *Runner) *Command {
	var q queryFlags
	return &Command{
		Name:    "list",
		Summary: "Lista os lançamentos do mês com os totais",
		Flags:   func() *pflag.FlagSet { return q.flagSet("list") },
		Run: func(ctx context.Context, args []string) error {
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			view, err := q.load(ctx, app.Financeiro)
			if err != nil {
				return err
			}
			renderFinanceiro(r.out, view)
			return nil
		},
	}
}

func faturamentoResumoCommand(r *Runner) *Command {
	var q queryFlags
	return &Command{
		Name:    "resumo",
		Summary: "Totais do mês",
		Flags:   func() *pflag.FlagSet { return q.flagSet("resumo") },
		Run: func(ctx context.Context, args []string) error {
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			view, err := q.load(ctx, app.Financeiro)
			if err != nil {
				return err
			}
			renderResumo(r.out, view.Resumo)
			return nil
		},
	}
}

func faturamentoCreateCommand(r *Runner) *Command {
	var (
		q         queryFlags
		ticket    string
		valor     float64
		descricao string
	)
	return &Command{
		Name:    "create",
		Summary: "Fatura um ticket fechado ainda sem lançamento",
		Usage:   "helpdesk faturamento create --ticket ID --valor N [--descricao TEXTO] [--mes AAAA-MM]",
		Flags: func() *pflag.FlagSet {
			fs := q.flagSet("create")
			fs.StringVar(&ticket, "ticket", "", "ticket (ID)")
			fs.Float64Var(&valor, "valor", 0, "valor em reais")
			fs.StringVar(&descricao, "descricao", "", "descrição do lançamento")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			if _, err := q.load(ctx, app.Financeiro); err != nil {
				return err
			}
			item, err := app.Financeiro.Create(ctx, ticket, valor, descricao)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Lançamento %s: ticket #%s, %s\n", item.ID, orDash(item.TicketNumero), formatBRL(item.Valor))
			return nil
		},
	}
}

func faturamentoEditCommand(r *Runner) *Command {
	var fs *pflag.FlagSet
	var valor float64
	var descricao, mes, nf string
	return &Command{
		Name:    "edit",
		Summary: "Altera os campos informados de um lançamento",
		Usage:   "helpdesk faturamento edit <id> [flags]",
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("edit", pflag.ContinueOnError)
			fs.Float64Var(&valor, "valor", 0, "novo valor em reais")
			fs.StringVar(&descricao, "descricao", "", "nova descrição")
			fs.StringVar(&mes, "mes", "", "novo mês de referência AAAA-MM")
			fs.StringVar(&nf, "nf", "", "número da nota fiscal")
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
			item, err := app.Financeiro.Update(ctx, args[0], domain.FaturamentoUpdate{
				Valor:            changedFloat(fs, "valor", valor),
				Descricao:        changedString(fs, "descricao", descricao),
				MesReferencia:    changedString(fs, "mes", mes),
				NumeroNotaFiscal: changedString(fs, "nf", nf),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Lançamento %s: %s\n", item.ID, formatBRL(item.Valor))
			return nil
		},
	}
}

func faturamentoToggleCommand(r *Runner) *Command {
	var (
		q  queryFlags
		nf string
	)
	return &Command{
		Name:    "toggle",
		Summary: "Alterna entre faturado e pendente",
		Usage:   "helpdesk faturamento toggle <id> [--nf NUMERO] [--mes AAAA-MM]",
		Flags: func() *pflag.FlagSet {
			fs := q.flagSet("toggle")
			fs.StringVar(&nf, "nf", "", "número da nota fiscal")
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
			if _, err := q.load(ctx, app.Financeiro); err != nil {
				return err
			}
			item, err := app.Financeiro.ToggleFaturado(ctx, args[0], nf)
			if err != nil {
				return err
			}
			estado := "pendente"
			if item.Faturado {
				estado = "faturado"
			}
			fmt.Fprintf(r.out, "Lançamento %s agora está %s\n", item.ID, estado)
			return nil
		},
	}
}

func faturamentoDeleteCommand(r *Runner) *Command {
	return &Command{
		Name:    "delete",
		Summary: "Deleta um lançamento (pede confirmação)",
		Usage:   "helpdesk faturamento delete <id>",
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "<id>"); err != nil {
				return err
			}
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			return r.deleted(app.Financeiro.Delete(ctx, args[0]))
		},
	}
}

func faturamentoExportCommand(r *Runner) *Command {
	var (
		q    queryFlags
		path string
	)
	return &Command{
		Name:    "export",
		Summary: "Exporta os lançamentos do mês em CSV ou JSON",
		Usage:   "helpdesk faturamento export csv|json [--out ARQUIVO] [flags]",
		Flags: func() *pflag.FlagSet {
			fs := q.flagSet("export")
			fs.StringVarP(&path, "out", "o", "", "arquivo de saída (padrão: faturamento-AAAA-MM.<formato>, - para stdout)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "csv|json"); err != nil {
				return err
			}
			app, err := r.authed(ctx)
			if err != nil {
				return err
			}
			if _, err := q.load(ctx, app.Financeiro); err != nil {
				return err
			}

			var exp *service.Export
			switch args[0] {
			case "csv":
				exp, err = app.Financeiro.ExportCSV(ctx)
			case "json":
				exp, err = app.Financeiro.ExportJSON(ctx)
			default:
				return fmt.Errorf("%w: formato desconhecido %q (csv ou json)", ErrUsage, args[0])
			}
			if err != nil {
				return err
			}

			if path == "-" {
				_, err := r.out.Write(exp.Data)
				return err
			}
			if path == "" {
				path = exp.Filename
			}
			if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(r.out, "Exportado para %s\n", path)
			return nil
		},
	}
}
