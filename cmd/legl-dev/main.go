package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/legl/legl-dev/internal/cli"
)

func main() {
	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		// A second signal skips the graceful shutdown.
		<-sigChan
		os.Exit(130)
	}()

	if err := cli.Execute(ctx); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
