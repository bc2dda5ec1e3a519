// Command stategraph runs the example graphs and the tool-calling agent.
//
//	stategraph calc --first 2 --second 4
//	stategraph shapes --input My --trace
//	stategraph agent --prompt "what is 2 + 4?"
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

	if err := newRootCommand(defaultModelFactory).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
