// Package state holds the loaded Pokédex listing shared between the
// background loader and the UI.
//
// # Overview
//
// The loader fetches a regional listing and then species details in
// chunks. Each step is published into a Store; the UI takes a Snapshot on
// every refresh tick. Caught state is not kept here; it lives in the
// caught package and is re-read on every change event.
//
// # Architecture
//
//	Producer (Loader):              Consumer (UI):
//	┌──────────────────┐           ┌──────────────────┐
//	│ store.Begin()    │           │                  │
//	│ store.Update()   │──────────→│ store.Snapshot() │
//	│ store.AddDetails │  (mutex)  │       ↓          │
//	│ store.Finish()   │           │   render rows    │
//	└──────────────────┘           └──────────────────┘
//
// # Update Semantics
//
//	// Success: replace the listing
//	store.Update(pokedex, entries, nil)
//	→ snapshot.Entries = entries
//	→ snapshot.LastError = nil, ConsecutiveFailures = 0
//
//	// Failure: keep the previous listing, record the error
//	store.Update(pokedex, nil, err)
//	→ snapshot.Entries = <unchanged>
//	→ snapshot.LastError = err, ConsecutiveFailures++
//
// Switching to a different Pokédex (Begin or Update with another id)
// drops the details of the old one. AddDetails for a Pokédex that is no
// longer current is ignored, so a slow chunk from an abandoned load cannot
// leak into the new listing.
//
// # Defensive Copying
//
// Snapshot clones the entries slice and the details map. Callers may
// modify what they receive.
//
// # Offline Detection
//
// IsOffline reports two or more consecutive failed loads; the header shows
// an offline badge instead of the last error text.
//
// The zero Store is ready to use.
package state
