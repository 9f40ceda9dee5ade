// Package app is the composition root for shinyhunt.
//
// Services opens the configured storage backend and the caught-state store
// on top of it, folding in legacy per-species keys. The CLI subcommands
// use Services directly; Run adds the TUI pieces:
//
//  1. Load config.toml and prefs.toml
//  2. Open the log file under the data directory
//  3. Open Services and start watching storage for other writers
//  4. Build the PokeAPI client, direct or through a shinyhunt proxy
//  5. Start the Loader, which fills a state.Store with the listing and
//     per-species details
//  6. Run the UI until the user quits or the context is cancelled
//
// The Loader retries a failed listing with exponential backoff capped at
// 30 seconds and restarts immediately when the UI asks for another
// Pokédex.
package app
