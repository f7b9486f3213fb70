package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/userdash/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.New().ExecuteContext(ctx); err != nil {
		cli.Report(os.Stderr, err)
		os.Exit(1)
	}
}
