package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/shinyhunt/internal/caught"
	"github.com/five82/shinyhunt/internal/config"
	"github.com/five82/shinyhunt/internal/dex"
	"github.com/five82/shinyhunt/internal/logging"
	"github.com/five82/shinyhunt/internal/pokeapi"
	"github.com/five82/shinyhunt/internal/prefs"
	"github.com/five82/shinyhunt/internal/state"
	"github.com/five82/shinyhunt/internal/storage"
	"github.com/five82/shinyhunt/internal/ui"
)

// Options configure the shinyhunt application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shinyhunt/prefs.toml
	Pokedex    string // overrides the saved Pokédex when set
}

// Services is the caught-state stack shared by the TUI and the CLI.
type Services struct {
	Config  config.Config
	Storage storage.Storage
	Caught  *caught.Store
	Logger  *slog.Logger
}

// OpenServices opens the configured storage backend and a caught store on
// top of it. Legacy entry keys are folded in on open.
func OpenServices(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Services, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	kind, err := storage.ParseKind(cfg.Storage)
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(kind, cfg.StoragePath(), logger.With("component", "storage"))
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", kind, err)
	}

	store := caught.NewStore(st, caught.WithLogger(logger.With("component", "caught")))
	if err := migrateLegacy(ctx, cfg, store, logger); err != nil {
		_ = st.Close()
		return nil, err
	}

	return &Services{Config: cfg, Storage: st, Caught: store, Logger: logger}, nil
}

// Close releases the storage backend.
func (s *Services) Close() error {
	return s.Storage.Close()
}

// NewFetcher builds the PokeAPI client for cfg, routed through the proxy
// when one is configured.
func NewFetcher(cfg config.Config, observer pokeapi.Observer, logger *slog.Logger) (*pokeapi.Client, error) {
	opts := pokeapi.Options{
		BaseURL:  cfg.APIBase,
		Observer: observer,
		Logger:   logger,
	}
	if cfg.ProxyURL != "" {
		opts.BaseURL = cfg.ProxyURL
		opts.Proxied = true
	}
	return pokeapi.NewClient(opts)
}

// Run boots the shinyhunt TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) (err error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	pokedex, ok := dex.Lookup(userPrefs.Pokedex)
	if opts.Pokedex != "" {
		pokedex, ok = dex.Lookup(opts.Pokedex)
		if !ok {
			return fmt.Errorf("unknown pokedex %q", opts.Pokedex)
		}
	}
	if !ok {
		pokedex = dex.Default()
	}

	logger, logFile, err := logging.OpenFile(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger.Info("starting shinyhunt", "storage", cfg.Storage, "pokedex", pokedex.Name)

	services, err := OpenServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close storage: %w", cerr))
		}
	}()

	stopWatch, err := services.Caught.Watch()
	if err != nil {
		// Other processes' writes will only show up after a restart.
		logger.Warn("storage watch unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	fetcher, err := NewFetcher(cfg, nil, logger.With("component", "pokeapi"))
	if err != nil {
		return fmt.Errorf("init pokeapi client: %w", err)
	}

	listing := &state.Store{}
	loader := NewLoader(fetcher, listing, logger.With("component", "loader"))
	loaderCtx, cancelLoader := context.WithCancel(ctx)
	defer cancelLoader()
	loader.Start(loaderCtx, pokedex)

	return ui.Run(ui.Options{
		Context:   ctx,
		Caught:    services.Caught,
		Listing:   listing,
		Loader:    loader,
		Pokedex:   pokedex,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogPath(),
	})
}
