package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hirescope/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment and config file still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
