package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/malusev998/currency-converter/cli/cmd"
	"github.com/malusev998/currency-converter/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.Execute(&cmd.Config{Ctx: ctx})

	logger.Sync()
	stop()

	if err != nil {
		os.Exit(1)
	}
}
