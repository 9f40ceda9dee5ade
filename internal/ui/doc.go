// Package ui provides the Bubble Tea terminal interface for shinyhunt.
//
// # Layout
//
//	┌ header ─ Pokédex, caught/shiny tally, detail progress, errors ┐
//	├ command bar ─ key hints for the active view ─────────────────┤
//	│ list (focused)                       │ progress pane         │
//	│ ● #001 Sprigatito  grass            │ listing tally         │
//	│ ★ #002 Floragato   grass            │ national tally        │
//	│   #114 Oddish      grass/poison  V  │ recent catches        │
//	└──────────────────────────────────────┴───────────────────────┘
//
// The logs view replaces the list with a tail of the application log,
// filterable by level.
//
// # Data flow
//
// Two sources feed the model:
//
//   - The listing snapshot (state.Store) is polled once per tick; the
//     loader writes it in the background.
//   - Caught state (caught.Store) is pushed. Run subscribes to the store's
//     event bus and forwards every event as a message; on each one the
//     list rows, progress pane and header re-read their slice of the
//     store. Writes from another process arrive the same way through
//     the store's storage watch.
//
// Key handlers write through the caught store and never update the
// model's copy of caught state directly.
package ui
