package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/shinyhunt/internal/dex"
	"github.com/five82/shinyhunt/internal/pokeapi"
	"github.com/five82/shinyhunt/internal/state"
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = 30 * time.Second
	detailChunkSize      = 20
	detailChunkPause     = 100 * time.Millisecond
)

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// Loader fetches Pokédex listings and species details into a state.Store.
type Loader struct {
	fetcher    pokeapi.Fetcher
	store      *state.Store
	logger     *slog.Logger
	requests   chan dex.Pokedex
	retryBase  time.Duration
	chunkSize  int
	chunkPause time.Duration
}

// NewLoader returns a Loader; call Start to run it.
func NewLoader(fetcher pokeapi.Fetcher, store *state.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		fetcher:    fetcher,
		store:      store,
		logger:     logger,
		requests:   make(chan dex.Pokedex, 1),
		retryBase:  defaultRetryInterval,
		chunkSize:  detailChunkSize,
		chunkPause: detailChunkPause,
	}
}

// Request switches the loader to p. Only the latest pending request is kept.
func (l *Loader) Request(p dex.Pokedex) {
	for {
		select {
		case l.requests <- p:
			return
		default:
		}
		select {
		case <-l.requests:
		default:
		}
	}
}

// Start launches the background goroutine and returns immediately.
func (l *Loader) Start(ctx context.Context, initial dex.Pokedex) {
	go l.run(ctx, initial)
}

func (l *Loader) run(ctx context.Context, current dex.Pokedex) {
	failures := 0
	for {
		next, err := l.load(ctx, current)
		if ctx.Err() != nil {
			return
		}
		if next != nil {
			current = *next
			failures = 0
			continue
		}

		var timer *time.Timer
		var retry <-chan time.Time
		if err != nil {
			failures++
			delay := calculateBackoff(failures, l.retryBase)
			l.logger.Warn("pokedex load failed", "pokedex", current.Name, "failures", failures, "retry_in", delay, "error", err)
			timer = time.NewTimer(delay)
			retry = timer.C
		} else {
			failures = 0
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case p := <-l.requests:
			current = p
			failures = 0
		case <-retry:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// load fetches the listing and then details chunk by chunk. It returns a
// pending switch request when one arrives mid-load.
func (l *Loader) load(ctx context.Context, p dex.Pokedex) (*dex.Pokedex, error) {
	l.store.Begin(p)
	defer l.store.Finish()

	entries, err := l.fetchListing(ctx, p)
	if err != nil {
		l.store.Update(p, nil, err)
		return nil, err
	}
	l.store.Update(p, entries, nil)
	l.logger.Info("pokedex loaded", "pokedex", p.Name, "entries", len(entries))

	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.NationalID > 0 {
			ids = append(ids, e.NationalID)
		}
	}
	for start := 0; start < len(ids); start += l.chunkSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case next := <-l.requests:
				return &next, nil
			case <-time.After(l.chunkPause):
			}
		}
		select {
		case next := <-l.requests:
			return &next, nil
		default:
		}

		chunk := ids[start:min(start+l.chunkSize, len(ids))]
		details, err := l.fetchDetails(ctx, chunk)
		if err != nil {
			return nil, err
		}
		l.store.AddDetails(p.ID, details)
	}
	return nil, nil
}

func (l *Loader) fetchListing(ctx context.Context, p dex.Pokedex) ([]dex.Entry, error) {
	body, err := l.fetcher.Get(ctx, p.Path())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.Label, err)
	}
	var payload pokeapi.Pokedex
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.Label, err)
	}
	entries := make([]dex.Entry, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		entries = append(entries, dex.Entry{
			Number:     e.EntryNumber,
			Name:       e.Species.Name,
			NationalID: e.Species.ID(),
		})
	}
	return entries, nil
}

// fetchDetails requests /pokemon and /pokemon-species for each id in one
// batch. Ids whose pokemon record failed are left out.
func (l *Loader) fetchDetails(ctx context.Context, ids []int) (map[int]state.Detail, error) {
	paths := make([]string, 0, 2*len(ids))
	for _, id := range ids {
		paths = append(paths, pokeapi.PokemonPath(id), pokeapi.SpeciesPath(id))
	}
	items, err := l.fetcher.Batch(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("fetch details: %w", err)
	}
	pokemon := pokeapi.DecodeBatch[pokeapi.Pokemon](items)
	species := pokeapi.DecodeBatch[pokeapi.Species](items)

	details := make(map[int]state.Detail, len(ids))
	for i, id := range ids {
		p := pokemon[2*i]
		if p == nil {
			continue
		}
		d := state.Detail{Types: p.TypeNames()}
		if s := species[2*i+1]; s != nil {
			d.Color = s.Color.Name
		}
		details[id] = d
	}
	return details, nil
}
