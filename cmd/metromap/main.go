// Command metromap lays out career maps as metro maps and serves the layout API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/metromap/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.New(os.Stderr, cli.LogInfo).Execute(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
