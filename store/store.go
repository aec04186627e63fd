package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/buntdb"
	"github.com/tidwall/gjson"
)

// Memory is the path that opens a store without a backing file.
const Memory = ":memory:"

type Store struct {
	db     *buntdb.DB
	logger *slog.Logger
}

type Option func(*options)

type options struct {
	sync   buntdb.SyncPolicy
	logger *slog.Logger
}

// WithSyncPolicy sets how often buntdb fsyncs its append-only file.
func WithSyncPolicy(p buntdb.SyncPolicy) Option {
	return func(o *options) { o.sync = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ParseSyncPolicy maps never, everysecond and always to buntdb policies.
func ParseSyncPolicy(s string) (buntdb.SyncPolicy, error) {
	switch strings.ToLower(s) {
	case "never":
		return buntdb.Never, nil
	case "", "everysecond":
		return buntdb.EverySecond, nil
	case "always":
		return buntdb.Always, nil
	}
	return buntdb.EverySecond, fmt.Errorf("unknown sync policy %q", s)
}

func Open(path string, opts ...Option) (*Store, error) {
	o := options{sync: buntdb.EverySecond, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	var cfg buntdb.Config
	if err := db.ReadConfig(&cfg); err != nil {
		db.Close()
		return nil, err
	}
	cfg.SyncPolicy = o.sync
	if err := db.SetConfig(cfg); err != nil {
		db.Close()
		return nil, err
	}

	o.logger.Debug("store opened", "path", path)
	return &Store{db: db, logger: o.logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get decodes the JSON value stored under key into v. When the key is
// absent v is left untouched, so callers pass a pre-filled default.
func (s *Store) Get(key string, v any) error {
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		var err error
		raw, err = tx.Get(key)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Set replaces the value stored under key with the JSON encoding of v.
func (s *Store) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	err = s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(b), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.logger.Debug("store write", "key", key, "bytes", len(b))
	return nil
}

// Count returns the number of elements in the array stored under key
// without decoding the records. Absent keys count as zero.
func (s *Store) Count(key string) (int, error) {
	var n int
	err := s.db.View(func(tx *buntdb.Tx) error {
		raw, err := tx.Get(key)
		if err != nil {
			return err
		}
		if !gjson.Valid(raw) {
			return fmt.Errorf("value under %s is not valid JSON", key)
		}
		n = int(gjson.Get(raw, "#").Int())
		return nil
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", key, err)
	}
	return n, nil
}

// Shrink compacts the append-only file.
func (s *Store) Shrink() error {
	return s.db.Shrink()
}
