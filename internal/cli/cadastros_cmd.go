package cli

import (
	"context"
	"fmt"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"

	"github.com/spf13/pflag"
)

// deleted prints the outcome of a confirmed delete.
func (r *Runner) deleted(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(r.out, "Cancelado")
	}
	return nil
}

// ============================================================
// Empresas
// ============================================================

type empresaFlags struct {
	fs *pflag.FlagSet

	nome, cnpj, email, telefone, endereco, contatoPrincipal string
}

func (f *empresaFlags) flagSet(name string) *pflag.FlagSet {
	f.fs = pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.fs.StringVar(&f.nome, "nome", "", "razão social ou nome fantasia")
	f.fs.StringVar(&f.cnpj, "cnpj", "", "CNPJ (14 dígitos)")
	f.fs.StringVar(&f.email, "email", "", "email de contato")
	f.fs.StringVar(&f.telefone, "telefone", "", "telefone (10 ou 11 dígitos)")
	f.fs.StringVar(&f.endereco, "endereco", "", "endereço")
	f.fs.StringVar(&f.contatoPrincipal, "contato-principal", "", "contato principal (ID)")
	return f.fs
}

func (f *empresaFlags) input() domain.EmpresaInput {
	return domain.EmpresaInput{
		Nome:               changedString(f.fs, "nome", f.nome),
		CNPJ:               changedString(f.fs, "cnpj", f.cnpj),
		Email:              changedString(f.fs, "email", f.email),
		Telefone:           changedString(f.fs, "telefone", f.telefone),
		Endereco:           changedString(f.fs, "endereco", f.endereco),
		ContatoPrincipalID: changedString(f.fs, "contato-principal", f.contatoPrincipal),
	}
}

func empresasCommand(r *Runner) *Command {
	var create, edit empresaFlags
	return &Command{
		Name:    "empresas",
		Summary: "Cadastro de empresas clientes",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "Lista as empresas",
				Run: func(ctx context.Context, args []string) error {
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					items, err := app.Empresas.Load(ctx)
					if err != nil {
						return err
					}
					renderEmpresas(r.out, items)
					return nil
				},
			},
			{
				Name:    "create",
				Summary: "Cadastra uma empresa",
				Flags:   func() *pflag.FlagSet { return create.flagSet("create") },
				Run: func(ctx context.Context, args []string) error {
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					e, err := app.Empresas.Create(ctx, create.input())
					if err != nil {
						return err
					}
					fmt.Fprintf(r.out, "%s (%s)\n", e.Nome, e.ID)
					return nil
				},
			},
			{
				Name:    "edit",
				Summary: "Altera os campos informados de uma empresa",
				Usage:   "helpdesk empresas edit <id> [flags]",
				Flags:   func() *pflag.FlagSet { return edit.flagSet("edit") },
				Run: func(ctx context.Context, args []string) error {
					if err := requireArgs(args, 1, "<id>"); err != nil {
						return err
					}
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					e, err := app.Empresas.Update(ctx, args[0], edit.input())
					if err != nil {
						return err
					}
					fmt.Fprintf(r.out, "%s (%s)\n", e.Nome, e.ID)
					return nil
				},
			},
			{
				Name:    "delete",
				Summary: "Deleta uma empresa (pede confirmação)",
				Usage:   "helpdesk empresas delete <id>",
				Run: func(ctx context.Context, args []string) error {
					if err := requireArgs(args, 1, "<id>"); err != nil {
						return err
					}
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					return r.deleted(app.Empresas.Delete(ctx, args[0]))
				},
			},
		},
	}
}

// ============================================================
// Contatos
// ============================================================

type contatoFlags struct {
	fs *pflag.FlagSet

	empresa, nome, email, telefone, cargo, departamento string
	principal                                           bool
}

func (f *contatoFlags) flagSet(name string) *pflag.FlagSet {
	f.fs = pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.fs.StringVar(&f.empresa, "empresa", "", "empresa (ID, só na criação)")
	f.fs.StringVar(&f.nome, "nome", "", "nome")
	f.fs.StringVar(&f.email, "email", "", "email")
	f.fs.StringVar(&f.telefone, "telefone", "", "telefone (10 ou 11 dígitos)")
	f.fs.StringVar(&f.cargo, "cargo", "", "cargo")
	f.fs.StringVar(&f.departamento, "departamento", "", "departamento")
	f.fs.BoolVar(&f.principal, "principal", false, "contato principal da empresa")
	return f.fs
}

func (f *contatoFlags) input() domain.ContatoInput {
	return domain.ContatoInput{
		EmpresaID:    changedString(f.fs, "empresa", f.empresa),
		Nome:         changedString(f.fs, "nome", f.nome),
		Email:        changedString(f.fs, "email", f.email),
		Telefone:     changedString(f.fs, "telefone", f.telefone),
		Cargo:        changedString(f.fs, "cargo", f.cargo),
		Departamento: changedString(f.fs, "departamento", f.departamento),
		Principal:    changedBool(f.fs, "principal", f.principal),
	}
}

func contatosCommand(r *Runner) *Command {
	var empresa string
	var create, edit contatoFlags
	return &Command{
		Name:    "contatos",
		Summary: "Contatos das empresas",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "Lista os contatos, opcionalmente de uma empresa",
				Flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
					fs.StringVar(&empresa, "empresa", "", "só contatos desta empresa (ID)")
					return fs
				},
				Run: func(ctx context.Context, args []string) error {
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					view, err := app.Contatos.Load(ctx, empresa)
					if err != nil {
						return err
					}
					renderContatos(r.out, view)
					return nil
				},
			},
			{
				Name:    "create",
				Summary: "Cadastra um contato",
				Flags:   func() *pflag.FlagSet { return create.flagSet("create") },
				Run: func(ctx context.Context, args []string) error {
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					c, err := app.Contatos.Create(ctx, create.input())
					if err != nil {
						return err
					}
					fmt.Fprintf(r.out, "%s (%s)\n", c.Nome, c.ID)
					return nil
				},
			},
			{
				Name:    "edit",
				Summary: "Altera os campos informados de um contato",
				Usage:   "helpdesk contatos edit <id> [flags]",
				Flags:   func() *pflag.FlagSet { return edit.flagSet("edit") },
				Run: func(ctx context.Context, args []string) error {
					if err := requireArgs(args, 1, "<id>"); err != nil {
						return err
					}
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					c, err := app.Contatos.Update(ctx, args[0], edit.input())
					if err != nil {
						return err
					}
					fmt.Fprintf(r.out, "%s (%s)\n", c.Nome, c.ID)
					return nil
				},
			},
			{
				Name:    "delete",
				Summary: "Deleta um contato (pede confirmação)",
				Usage:   "helpdesk contatos delete <id>",
				Run: func(ctx context.Context, args []string) error {
					if err := requireArgs(args, 1, "<id>"); err != nil {
						return err
					}
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					return r.deleted(app.Contatos.Delete(ctx, args[0]))
				},
			},
		},
	}
}

// ============================================================
// Categorias
// ============================================================

type categoriaFlags struct {
	fs *pflag.FlagSet

	nome, descricao, cor, icone string
	ordem                       int
}

func (f *categoriaFlags) flagSet(name string) *pflag.FlagSet {
	f.fs = pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.fs.StringVar(&f.nome, "nome", "", "nome")
	f.fs.StringVar(&f.descricao, "descricao", "", "descrição")
	f.fs.StringVar(&f.cor, "cor", "", "cor #RRGGBB")
	f.fs.StringVar(&f.icone, "icone", "", "ícone")
	f.fs.IntVar(&f.ordem, "ordem", 0, "ordem de exibição")
	return f.fs
}

func (f *categoriaFlags) input() domain.CategoriaInput {
	return domain.CategoriaInput{
		Nome:      changedString(f.fs, "nome", f.nome),
		Descricao: changedString(f.fs, "descricao", f.descricao),
		Cor:       changedString(f.fs, "cor", f.cor),
		Icone:     changedString(f.fs, "icone", f.icone),
		Ordem:     changedInt(f.fs, "ordem", f.ordem),
	}
}

func categoriasCommand(r *Runner) *Command {
	var create, edit categoriaFlags
	return &Command{
		Name:    "categorias",
		Summary: "Categorias de ticket",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "Lista as categorias",
				Run: func(ctx context.Context, args []string) error {
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					items, err := app.Categorias.Load(ctx)
					if err != nil {
						return err
					}
					renderCategorias(r.out, items)
					return nil
				},
			},
			{
				Name:    "create",
				Summary: "Cadastra uma categoria",
				Flags:   func() *pflag.FlagSet { return create.flagSet("create") },
				Run: func(ctx context.Context, args []string) error {
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					c, err := app.Categorias.Create(ctx, create.input())
					if err != nil {
						return err
					}
					fmt.Fprintf(r.out, "%s (%s)\n", c.Nome, c.ID)
					return nil
				},
			},
			{
				Name:    "edit",
				Summary: "Altera os campos informados de uma categoria",
				Usage:   "helpdesk categorias edit <id> [flags]",
				Flags:   func() *pflag.FlagSet { return edit.flagSet("edit") },
				Run: func(ctx context.Context, args []string) error {
					if err := requireArgs(args, 1, "<id>"); err != nil {
						return err
					}
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					c, err := app.Categorias.Update(ctx, args[0], edit.input())
					if err != nil {
						return err
					}
					fmt.Fprintf(r.out, "%s (%s)\n", c.Nome, c.ID)
					return nil
				},
			},
			{
				Name:    "delete",
				Summary: "Deleta uma categoria (pede confirmação)",
				Usage:   "helpdesk categorias delete <id>",
				Run: func(ctx context.Context, args []string) error {
					if err := requireArgs(args, 1, "<id>"); err != nil {
						return err
					}
					app, err := r.authed(ctx)
					if err != nil {
						return err
					}
					return r.deleted(app.Categorias.Delete(ctx, args[0]))
				},
			},
		},
	}
}
