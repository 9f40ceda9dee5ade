// Package caught owns the persisted catch progress: which Pokémon are
// uncaught, caught, or caught shiny.
//
// # Layout
//
// States live in a fixed array of WordCount uint32 words, 16 states per
// word and 2 bits per state (00 none, 01 caught, 10 shiny, 11 reserved).
// The state of id is found at bit offset 2*((id-1)%16) of word (id-1)/16.
// The array is persisted under StateKey as bitcodec text.
//
// # Consistency
//
// Store never caches the array. Every call re-reads storage, decodes,
// mutates a copy, encodes and writes, all under one mutex, then publishes a
// single events.Event. Other processes sharing the storage are observed
// through Store.Watch and re-published with events.External.
package caught
