package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-title-fetcher/cmd/fetcher/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		if !commands.IsReported(err) {
			fmt.Fprintf(os.Stderr, "fetcher: %v\n", err)
		}
		os.Exit(1)
	}
}
