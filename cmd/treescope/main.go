package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	internal "github.com/ZanzyTHEbar/treescope/treescope"
	"github.com/ZanzyTHEbar/treescope/treescope/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		logger := internal.GetLogger()
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
