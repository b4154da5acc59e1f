// Command helpdesk is the operator console of the helpdesk: tickets,
// companies, contacts, categories and monthly billing.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/boddenberg/helpdesk-admin-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Main(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
