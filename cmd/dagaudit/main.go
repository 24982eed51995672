package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	dagaudit "github.com/ipld/go-dagaudit"
)

const (
	exitIncomplete = 1 // the DAG is not complete in the store
	exitFailure    = 2 // completeness could not be determined
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		cancel()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, dagaudit.ErrMissingBlock),
		errors.Is(err, dagaudit.ErrDecode),
		errors.Is(err, dagaudit.ErrUnsupportedCodec):
		return exitIncomplete
	default:
		return exitFailure
	}
}
