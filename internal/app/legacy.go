package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/shinyhunt/internal/caught"
	"github.com/five82/shinyhunt/internal/config"
	"github.com/five82/shinyhunt/internal/dex"
)

const legacyListingTimeout = 30 * time.Second

// migrateLegacy folds legacy entry keys into store. They were written per
// Paldea entry number, so the Paldea listing resolves them to national ids.
// When the listing is unavailable the keys are kept for the next start.
func migrateLegacy(ctx context.Context, cfg config.Config, store *caught.Store, logger *slog.Logger) error {
	pending, err := store.HasLegacy()
	if err != nil {
		return err
	}
	if !pending {
		return nil
	}

	paldea, _ := dex.Lookup("paldea")
	fetcher, err := NewFetcher(cfg, nil, logger.With("component", "pokeapi"))
	if err != nil {
		return fmt.Errorf("init pokeapi client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, legacyListingTimeout)
	defer cancel()
	listing, err := fetcher.Pokedex(ctx, paldea.ID)
	if err != nil {
		logger.Warn("legacy caught keys kept until the Paldea listing loads", "error", err)
		return nil
	}

	byEntry := make(map[int]int, len(listing.Entries))
	for _, e := range listing.Entries {
		if id := e.Species.ID(); id > 0 {
			byEntry[e.EntryNumber] = id
		}
	}
	migrated, err := store.MigrateLegacy(func(entry int) (int, bool) {
		id, ok := byEntry[entry]
		return id, ok
	})
	if err != nil {
		return fmt.Errorf("migrate legacy state: %w", err)
	}
	if migrated > 0 {
		logger.Info("migrated legacy caught keys", "count", migrated)
	}
	return nil
}
