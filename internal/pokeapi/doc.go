// Package pokeapi provides an HTTP client for PokeAPI, either directly or
// through the local batching proxy served by internal/proxy.
//
// # Overview
//
// Client.Get fetches one resource path such as "pokedex/31/" and returns
// the raw JSON. Client.Batch fetches many paths and returns results in
// input order, with nil in place of any path that failed. Typed helpers
// (Pokedex, Pokemon, Species) decode the fields the tracker renders.
//
// # Request Handling
//
// Every upstream request:
//   - waits on a client-side rate limiter
//   - sets Accept: application/json and a User-Agent
//   - is retried on 429, 5xx and transport errors, sleeping
//     RetryDelay*attempt between attempts, up to Retries attempts
//   - fails immediately on any other 4xx status
//
// Successful responses are kept in an expiring LRU cache. PokeAPI data is
// effectively immutable so the default TTL is two years. Concurrent
// requests for the same path share one upstream fetch.
//
// # Proxied Mode
//
// With Options.Proxied set, BaseURL points at the proxy's
// /api/pokemon/ prefix and Batch issues a single request:
//
//	GET {base}batch?urls=pokemon/1/,pokemon/2/
//
// The proxy answers with a JSON array holding null for failed items.
//
// # Errors
//
// Errors are wrapped with fmt.Errorf. A non-retryable or final HTTP
// failure carries a *StatusError:
//
//   - "pokeapi pokemon/99999/ returned status 404"
//   - "fetch pokemon/1/: giving up after 3 attempts: pokeapi pokemon/1/ returned status 429"
package pokeapi
