package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"f1stats/cmd/f1stats/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	commands.ExecuteContext(ctx)
}
