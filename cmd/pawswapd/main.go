package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/paw-chain/pawswap/app"
	"github.com/paw-chain/pawswap/cmd/pawswapd/cmd"
)

func main() {
	app.SetConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
