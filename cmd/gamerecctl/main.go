// Command gamerecctl is the operator CLI: offline index builds, qdrant pushes,
// one-shot recommendations, profile edits and catalog stats.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gamerecctl:", err)
		stop()
		os.Exit(1)
	}
}
