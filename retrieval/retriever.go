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


package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/docuverse/attest/ai"
	"github.com/docuverse/attest/core"
)

// Default hybrid weights: semantic similarity carries slightly more
// signal than term overlap for natural-language questions.
const (
	DefaultLexicalWeight  = 0.4
	DefaultSemanticWeight = 0.6
)

// Retriever answers top-k queries over chunk sets by combining a BM25
// lexical index with a vector index. Indexes are keyed by chunk-set
// hash: the lexical side is rebuilt on every build (cheap), the
// semantic side is persisted and reloaded. A changed chunk set gets a
// fresh index under a new hash; old ones are left on disk.
type Retriever struct {
	embedder       ai.Embedder
	indexDir       string // "" keeps vector indexes in memory
	lexicalWeight  float32
	semanticWeight float32
	logger         *slog.Logger

	mu      sync.Mutex
	indexes map[string]*hybridIndex
	builds  map[string]*sync.Mutex // per chunk-set hash, at most one build in flight
}

type hybridIndex struct {
	hash     string
	lexical  *lexicalIndex
	semantic *semanticIndex
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithIndexDir sets the directory where vector indexes are persisted,
// one subdirectory per chunk-set hash. Default is in-memory only.
func WithIndexDir(dir string) Option {
	return func(r *Retriever) error {
		r.indexDir = dir
		return nil
	}
}

// WithWeights sets the lexical and semantic contributions to the
// merged score. The weights must sum to 1.0.
func WithWeights(lexical, semantic float32) Option {
	return func(r *Retriever) error {
		if math.Abs(float64(lexical+semantic)-1.0) > 1e-6 {
			return fmt.Errorf("%w: got %.3f + %.3f", ErrInvalidWeights, lexical, semantic)
		}
		r.lexicalWeight = lexical
		r.semanticWeight = semantic
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a hybrid retriever using the given embedder.
func NewRetriever(embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		embedder:       embedder,
		lexicalWeight:  DefaultLexicalWeight,
		semanticWeight: DefaultSemanticWeight,
		logger:         slog.Default(),
		indexes:        make(map[string]*hybridIndex),
		builds:         make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Query returns the top-k chunks for the query by combined lexical and
// semantic relevance. An empty result is a normal outcome; an error
// means the index could not be built or queried and the request cannot
// be answered.
func (r *Retriever) Query(ctx context.Context, chunks []*core.Chunk, query string, k int) ([]core.RankedChunk, error) {
	if len(chunks) == 0 || k <= 0 {
		return nil, nil
	}

	ix, err := r.index(ctx, chunks)
	if err != nil {
		return nil, err
	}

	// Both signals are read-only at this point, so they run
	// concurrently; the merge waits for both.
	type semOut struct {
		ranked []core.RankedChunk
		err    error
	}
	semCh := make(chan semOut, 1)
	go func() {
		ranked, err := ix.semantic.query(ctx, query, k)
		semCh <- semOut{ranked: ranked, err: err}
	}()

	lexical := ix.lexical.query(query, k)
	sem := <-semCh
	if sem.err != nil {
		return nil, fmt.Errorf("%w: semantic: %w", ErrQueryFailed, sem.err)
	}

	merged := mergeRanked(lexical, sem.ranked, r.lexicalWeight, r.semanticWeight)
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// index returns the hybrid index for the chunk set, building it if
// needed. At most one build runs per chunk-set hash; concurrent
// callers for the same hash wait rather than duplicating embedding
// work.
func (r *Retriever) index(ctx context.Context, chunks []*core.Chunk) (*hybridIndex, error) {
	hash := core.ChunkSetHash(chunks)

	r.mu.Lock()
	if ix, ok := r.indexes[hash]; ok {
		r.mu.Unlock()
		return ix, nil
	}
	lock, ok := r.builds[hash]
	if !ok {
		lock = &sync.Mutex{}
		r.builds[hash] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// A concurrent builder may have finished while we waited.
	r.mu.Lock()
	if ix, ok := r.indexes[hash]; ok {
		r.mu.Unlock()
		return ix, nil
	}
	r.mu.Unlock()

	lexical := newLexicalIndex(chunks)
	semantic, err := buildSemanticIndex(ctx, r.indexDir, hash, chunks, r.embedder, r.logger)
	if err != nil {
		r.logger.Error("failed to build vector index", "hash", hash, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	ix := &hybridIndex{hash: hash, lexical: lexical, semantic: semantic}

	r.mu.Lock()
	r.indexes[hash] = ix
	delete(r.builds, hash)
	r.mu.Unlock()

	r.logger.Debug("hybrid index ready", "hash", hash, "chunks", len(chunks))
	return ix, nil
}

// mergeRanked combines two ranked lists into one. Each list's scores
// are normalized to [0,1] on its own scale, scaled by its weight, and
// summed per chunk. Ties break by lexical rank, then semantic rank,
// so the ordering is reproducible for identical inputs.
func mergeRanked(lexical, semantic []core.RankedChunk, lexicalWeight, semanticWeight float32) []core.RankedChunk {
	const unranked = int(^uint(0) >> 1)

	type entry struct {
		chunk   *core.Chunk
		score   float32
		lexRank int
		semRank int
	}

	combined := make(map[*core.Chunk]*entry)
	order := make([]*entry, 0, len(lexical)+len(semantic))

	get := func(c *core.Chunk) *entry {
		if e, ok := combined[c]; ok {
			return e
		}
		e := &entry{chunk: c, lexRank: unranked, semRank: unranked}
		combined[c] = e
		order = append(order, e)
		return e
	}

	var maxLex float32
	if len(lexical) > 0 {
		maxLex = lexical[0].Score
	}
	for rank, rc := range lexical {
		e := get(rc.Chunk)
		e.lexRank = rank
		if maxLex > 0 {
			e.score += lexicalWeight * rc.Score / maxLex
		}
	}

	var maxSem float32
	if len(semantic) > 0 {
		maxSem = semantic[0].Score
	}
	for rank, rc := range semantic {
		e := get(rc.Chunk)
		e.semRank = rank
		if maxSem > 0 {
			e.score += semanticWeight * rc.Score / maxSem
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].score != order[j].score {
			return order[i].score > order[j].score
		}
		if order[i].lexRank != order[j].lexRank {
			return order[i].lexRank < order[j].lexRank
		}
		return order[i].semRank < order[j].semRank
	})

	merged := make([]core.RankedChunk, len(order))
	for i, e := range order {
		merged[i] = core.RankedChunk{Chunk: e.chunk, Score: e.score}
	}
	return merged
}
