package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
)

// BadgerConfig configures OpenBadger.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Logger receives badger's internal logs. Nil disables them.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns durable settings for a persistent database.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{SyncWrites: true}
}

// BadgerStorage keeps values in BadgerDB.
type BadgerStorage struct {
	db     *badger.DB
	owned  bool
	logger *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens a database owned by the returned storage; Close closes it.
func OpenBadger(cfg BadgerConfig) (*BadgerStorage, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger path is required for persistent storage")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger dir %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BadgerStorage{db: db, owned: true, logger: logger}, nil
}

// NewBadgerStorage wraps an already open database. Close leaves db open,
// so several storages can share one handle.
func NewBadgerStorage(db *badger.DB, logger *slog.Logger) *BadgerStorage {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BadgerStorage{db: db, logger: logger}
}

// DB exposes the underlying database.
func (s *BadgerStorage) DB() *badger.DB {
	return s.db
}

func (s *BadgerStorage) Get(key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("badger get %s: %w", key, err)
	}
	return string(value), true, nil
}

func (s *BadgerStorage) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStorage) Remove(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStorage) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger keys %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Watch subscribes to badger updates for key. The subscription is
// registered asynchronously; writes racing with Watch may be missed.
func (s *BadgerStorage) Watch(key string, fn func()) (func(), error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	match := []pb.Match{{Prefix: []byte(key)}}
	go func() {
		err := s.db.Subscribe(ctx, func(list *pb.KVList) error {
			for _, kv := range list.GetKv() {
				if string(kv.GetKey()) == key {
					fn()
					return nil
				}
			}
			return nil
		}, match)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("badger subscription ended", "key", key, "error", err)
		}
	}()
	return cancel, nil
}

func (s *BadgerStorage) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
