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
	"path/filepath"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/docuverse/attest/ai"
	"github.com/docuverse/attest/core"
)

// embeddingBatchSize bounds a single embedding request; upstream
// services cap request token totals, so large chunk sets are embedded
// in sequential batches appended to the same collection.
const embeddingBatchSize = 500

const collectionName = "chunks"

// semanticIndex is a vector index over a chunk set, backed by a
// chromem collection. When a directory is configured the collection
// is persisted under the chunk-set hash and reloaded on later builds
// without re-embedding.
type semanticIndex struct {
	collection *chromem.Collection
	embedder   ai.Embedder
	chunks     []*core.Chunk
}

// buildSemanticIndex builds or reloads the vector index for a chunk
// set. dir == "" keeps the index in memory. Any embedding or storage
// failure is returned as-is; the caller wraps it as a build error.
func buildSemanticIndex(ctx context.Context, dir, hash string, chunks []*core.Chunk, embedder ai.Embedder, logger *slog.Logger) (*semanticIndex, error) {
	var (
		db  *chromem.DB
		err error
	)
	if dir == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(filepath.Join(dir, hash), false)
		if err != nil {
			return nil, err
		}
	}

	// chromem only calls this for documents added without a
	// precomputed embedding, i.e. never on the load path.
	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedText(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embedFn)
	if err != nil {
		return nil, err
	}

	ix := &semanticIndex{
		collection: collection,
		embedder:   embedder,
		chunks:     chunks,
	}

	if collection.Count() == len(chunks) {
		logger.Debug("reusing persisted vector index", "hash", hash, "documents", len(chunks))
		return ix, nil
	}

	logger.Info("embedding chunks", "hash", hash, "count", len(chunks), "batchSize", embeddingBatchSize)

	for start := 0; start < len(chunks); start += embeddingBatchSize {
		end := min(start+embeddingBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}

		docs := make([]chromem.Document, len(batch))
		for i, c := range batch {
			docs[i] = chromem.Document{
				ID:        strconv.Itoa(start + i),
				Content:   c.Content,
				Embedding: vectors[i],
			}
		}
		if err := collection.AddDocuments(ctx, docs, 1); err != nil {
			return nil, err
		}

		logger.Debug("embedded batch",
			"batch", start/embeddingBatchSize+1,
			"total", (len(chunks)+embeddingBatchSize-1)/embeddingBatchSize)
	}

	return ix, nil
}

// query returns up to k chunks ranked by cosine similarity to the
// query text, best first.
func (ix *semanticIndex) query(ctx context.Context, query string, k int) ([]core.RankedChunk, error) {
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	vector, err := ix.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := ix.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, err
	}

	ranked := make([]core.RankedChunk, 0, len(results))
	for _, res := range results {
		doc, err := strconv.Atoi(res.ID)
		if err != nil || doc < 0 || doc >= len(ix.chunks) {
			return nil, fmt.Errorf("unexpected document id %q in vector index", res.ID)
		}
		ranked = append(ranked, core.RankedChunk{
			Chunk: ix.chunks[doc],
			Score: res.Similarity,
		})
	}
	return ranked, nil
}
