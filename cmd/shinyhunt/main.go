// shinyhunt tracks which Pokémon have been caught, and which shiny.
//
// Usage:
//
//	shinyhunt [--pokedex paldea]          open the TUI
//	shinyhunt serve [--bind addr]         run the caching PokeAPI proxy
//	shinyhunt status                      print progress per generation
//	shinyhunt mark 25 133 --state shiny   set ids, or --range 1-151, or --gen 9
//	shinyhunt catch-all | release-all
//	shinyhunt export [-o file] | import <file>
//	shinyhunt recent [-n 10]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shinyhunt: %v\n", err)
		return 1
	}
	return 0
}
