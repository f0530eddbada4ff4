package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chronoseq/internal/cli"
	appLog "chronoseq/internal/log"
)

func main() {
	// Root context with cancellation on SIGINT/SIGTERM, used by serve and
	// next --watch.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "chronoseq:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
