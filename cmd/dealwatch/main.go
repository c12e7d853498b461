// cmd/dealwatch/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/dealwatch/internal/cli"
)

func main() {
	// Cancel the running check on interrupt so the browser is closed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.ExecuteContext(ctx)
	if ctx.Err() != nil {
		log.Warn().Msg("Interrupt received, shut down gracefully")
	}
	stop()

	if err != nil {
		os.Exit(1)
	}
}
