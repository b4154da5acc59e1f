package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/boddenberg/helpdesk-admin-go/internal/config"
	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const serviceName = "helpdesk-console"

// Runner holds what every command shares: the standard streams, the
// global flags and the lazily built App.
type Runner struct {
	out    io.Writer
	errOut io.Writer
	in     *input

	configFile string
	logLevel   string
	assumeYes  bool

	// newApp builds the App on first use.
	newApp func(ctx context.Context) (*App, error)

	app      *App
	toasts   *toastPrinter
	detach   []func()
	shutdown func(context.Context) error
}

func newRunner(in io.Reader, out, errOut io.Writer) *Runner {
	r := &Runner{out: out, errOut: errOut, in: newInput(in), toasts: newToastPrinter(out)}
	r.newApp = r.buildApp
	return r
}

func (r *Runner) buildApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load(r.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if r.logLevel != "" {
		cfg.LogLevel = r.logLevel
	}
	logger := observability.NewLogger(cfg.LogLevel)

	shutdown, err := observability.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		r.shutdown = shutdown
	}

	return NewApp(ctx, cfg, logger, r.errOut)
}

// App returns the wired console, building it on first call. Toasts are
// printed and, unless serving, the confirm dialog is answered from the
// terminal.
func (r *Runner) App(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	app, err := r.newApp(ctx)
	if err != nil {
		return nil, err
	}
	r.app = app
	r.detach = append(r.detach, app.Toaster.Subscribe(r.toasts.print))
	return app, nil
}

// interactive returns the App with the terminal confirm driver attached.
func (r *Runner) interactive(ctx context.Context) (*App, error) {
	app, err := r.App(ctx)
	if err != nil {
		return nil, err
	}
	r.detach = append(r.detach, newPrompter(app.Confirm, r.in, r.errOut, r.assumeYes).Attach())
	return app, nil
}

func (r *Runner) close() {
	for _, d := range r.detach {
		d()
	}
	r.detach = nil
	if r.app != nil {
		r.app.Close()
		_ = r.app.Logger.Sync()
	}
	if r.shutdown != nil {
		_ = r.shutdown(context.Background())
	}
}

// Root builds the command tree.
func (r *Runner) Root() *Command {
	return &Command{
		Name:    "helpdesk",
		Summary: "Console de administração do helpdesk: tickets, cadastros e faturamento.",
		out:     r.out,
		Subcommands: []*Command{
			loginCommand(r),
			logoutCommand(r),
			meCommand(r),
			dashboardCommand(r),
			ticketsCommand(r),
			empresasCommand(r),
			contatosCommand(r),
			categoriasCommand(r),
			faturamentoCommand(r),
			serveCommand(r),
		},
	}
}

// Main parses the global flags, runs the command and returns the exit
// code.
func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	r := newRunner(in, out, errOut)
	defer r.close()

	global := pflag.NewFlagSet("helpdesk", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	global.StringVar(&r.configFile, "config", "", "config file (default ./helpdesk.yaml)")
	global.StringVar(&r.logLevel, "log-level", "", "log level: debug, info, warn, error")
	global.BoolVarP(&r.assumeYes, "yes", "y", false, "answer yes to every confirmation")
	if err := global.Parse(args); err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
		return 2
	}

	return r.exitCode(r.Root().Execute(ctx, global.Args()))
}

func (r *Runner) exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		fmt.Fprintln(r.errOut, err)
		return 2
	case r.toasts.printedError():
		// The page already reported it.
		return 1
	}
	fmt.Fprintln(r.errOut, toastStyles[ui.ToastError].Render("✗ "+domain.UserMessage(err, err.Error())))
	return 1
}
