// Copyright 2025 Docuverse
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/docuverse/attest/core"
)

// Store is a content-addressed cache for processed chunk sets, backed
// by BadgerDB. Keys are content hashes; values carry the time they
// were stored so validity can be checked lazily on read. Expired or
// corrupt entries read as a miss and are never treated as an error,
// so callers always have the option to recompute.
type Store struct {
	db     *badger.DB
	expiry time.Duration // zero means entries never expire
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithExpiry sets how long an entry stays valid after Put.
// Zero disables expiry. Default is 7 days.
func WithExpiry(d time.Duration) Option {
	return func(s *Store) {
		s.expiry = d
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a disk-backed store at the specified path.
// Creates the directory if it doesn't exist.
func Open(filePath string, opts ...Option) (*Store, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filePath, 0755); err != nil {
				return nil, err
			}
			info, err = os.Stat(filePath)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", filePath)
	}

	return open(badger.DefaultOptions(filePath), opts...)
}

// OpenMemory opens an in-memory store. Validity still behaves the same
// way, but nothing survives the process; intended for tests.
func OpenMemory(opts ...Option) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), opts...)
}

func open(badgerOpts badger.Options, opts ...Option) (*Store, error) {
	s := &Store{
		expiry: 7 * 24 * time.Hour,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	badgerOpts.Logger = &badgerLoggerAdapter{logger: s.logger}
	badgerOpts.Compression = options.None

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the chunks stored under key, or false on a miss.
// Missing, expired, and unreadable entries are all misses.
func (s *Store) Get(key string) ([]*core.Chunk, bool) {
	var entry *cacheEntry

	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = unmarshalEntry(val)
			return err
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			// Corrupt or unreadable entry; the caller recomputes.
			s.logger.Warn("cache entry unreadable, treating as miss", "key", key, "err", err)
		}
		return nil, false
	}

	if s.expired(entry.StoredAt) {
		s.logger.Debug("cache entry expired", "key", key, "storedAt", entry.StoredAt)
		return nil, false
	}

	return entry.Chunks, true
}

// Put persists chunks under key, stamping the entry with the current
// time. Overwrites any previous entry for the same key.
func (s *Store) Put(key string, chunks []*core.Chunk) error {
	data, err := marshalEntry(&cacheEntry{
		StoredAt: time.Now().Unix(),
		Chunks:   chunks,
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(makeChunkKey(key), data)
	})
}

// IsValid reports whether an entry for key exists and is not expired.
func (s *Store) IsValid(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *Store) expired(storedAt int64) bool {
	if s.expiry == 0 {
		return false
	}
	return time.Since(time.Unix(storedAt, 0)) >= s.expiry
}

// Key prefix for processed chunk entries. Kept distinct so other
// artifact kinds can share the same database later.
const chunkEntryPrefix = "chunks"

// makeChunkKey generates the storage key for a content hash.
func makeChunkKey(hash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", chunkEntryPrefix, hash))
}
