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


package ingestion

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/go-crypt/x/blake2b"
	"github.com/panjf2000/ants/v2"

	"github.com/docuverse/attest/cache"
	"github.com/docuverse/attest/core"
)

// MaxTotalBytes is the combined size limit for one Process call.
const MaxTotalBytes = 200 << 20

// Processor turns document files into a deduplicated chunk set.
// Parsed chunks are cached per file content hash, so re-uploading an
// unchanged file skips parsing entirely. Files are processed
// concurrently; chunk order follows the input file order regardless.
type Processor struct {
	store  *cache.Store
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor) error

// WithPoolSize sets the worker pool size for concurrent file parsing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Processor) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewProcessor creates a document processor backed by the given
// chunk cache.
func NewProcessor(store *cache.Store, opts ...Option) (*Processor, error) {
	if store == nil {
		return nil, ErrCacheRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		store:  store,
		pool:   pool,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Process parses the given files into one chunk set with duplicate
// content removed across files. A file that cannot be parsed is
// logged and skipped; only the size check fails the whole call.
func (p *Processor) Process(paths []string) ([]*core.Chunk, error) {
	if err := p.validateTotalSize(paths); err != nil {
		return nil, err
	}

	perFile := make([][]*core.Chunk, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			chunks, err := p.processFile(path)
			if err != nil {
				p.logger.Error("failed to process file", "path", path, "err", err)
				return
			}
			perFile[i] = chunks
		}
		if err := p.pool.Submit(task); err != nil {
			// Pool unavailable, fall back to the caller's goroutine.
			task()
		}
	}
	wg.Wait()

	seen := make(map[core.ID]struct{})
	var all []*core.Chunk
	for _, chunks := range perFile {
		for _, c := range chunks {
			id := c.ID()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, c)
		}
	}

	p.logger.Info("processed documents", "files", len(paths), "unique_chunks", len(all))
	return all, nil
}

// processFile parses one file, serving from and feeding the chunk
// cache keyed by the file's raw content hash.
func (p *Processor) processFile(path string) ([]*core.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	key := fileHash(data)
	if chunks, ok := p.store.Get(key); ok {
		p.logger.Info("loading chunks from cache", "path", path, "chunks", len(chunks))
		return chunks, nil
	}

	p.logger.Info("parsing and caching", "path", path)
	chunks, err := ParseFile(path)
	if err != nil {
		return nil, err
	}

	if err := p.store.Put(key, chunks); err != nil {
		// Cache failure is not worth losing the parse over.
		p.logger.Warn("failed to cache chunks", "path", path, "err", err)
	}
	return chunks, nil
}

func (p *Processor) validateTotalSize(paths []string) error {
	var total int64
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		total += info.Size()
	}
	if total > MaxTotalBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrTotalSizeExceeded, total, MaxTotalBytes)
	}
	return nil
}

// Release releases the worker pool. The processor should not be used
// after calling Release.
func (p *Processor) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func fileHash(data []byte) string {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
