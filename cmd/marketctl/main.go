// Command marketctl is a single-session client for the service marketplace.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/haofuwu/service-market/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
