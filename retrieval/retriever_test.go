package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuverse/attest/ai/mock"
	"github.com/docuverse/attest/core"
)

func testChunkSet() []*core.Chunk {
	return []*core.Chunk{
		{Content: "Section 5: termination requires 30 days notice.", Source: "contract.pdf", Page: 5},
		{Content: "The fee schedule is listed in Appendix A.", Source: "contract.pdf", Page: 12},
		{Content: "Either party may renew the agreement annually.", Source: "contract.pdf", Page: 3},
	}
}

// axisEmbedder maps known texts onto fixed unit vectors so semantic
// similarity is fully controlled by the test.
func axisEmbedder(axes map[string][]float32, fallback []float32) *mock.MockEmbedder {
	embed := func(text string) []float32 {
		if v, ok := axes[text]; ok {
			return v
		}
		return fallback
	}
	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return embed(text), nil
	}
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			out[i] = embed(t)
		}
		return out, nil
	}
	return m
}

func TestNewRetriever(t *testing.T) {
	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewRetriever(nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("valid", func(t *testing.T) {
		r, err := NewRetriever(mock.NewMockEmbedder())
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("weights must sum to one", func(t *testing.T) {
		_, err := NewRetriever(mock.NewMockEmbedder(), WithWeights(0.5, 0.6))
		assert.ErrorIs(t, err, ErrInvalidWeights)
	})

	t.Run("custom weights accepted", func(t *testing.T) {
		r, err := NewRetriever(mock.NewMockEmbedder(), WithWeights(0.3, 0.7))
		require.NoError(t, err)
		assert.InDelta(t, 0.3, r.lexicalWeight, 1e-6)
	})
}

func TestLexicalIndex_Query(t *testing.T) {
	ix := newLexicalIndex(testChunkSet())

	t.Run("term match ranks first", func(t *testing.T) {
		ranked := ix.query("What is the termination clause?", 3)
		require.NotEmpty(t, ranked)
		assert.Contains(t, ranked[0].Chunk.Content, "termination")
	})

	t.Run("stop words alone match nothing", func(t *testing.T) {
		ranked := ix.query("the is a of", 3)
		assert.Empty(t, ranked)
	})

	t.Run("no overlap matches nothing", func(t *testing.T) {
		ranked := ix.query("photosynthesis chlorophyll", 3)
		assert.Empty(t, ranked)
	})

	t.Run("deterministic ordering", func(t *testing.T) {
		a := ix.query("termination notice fee", 3)
		b := ix.query("termination notice fee", 3)
		require.Equal(t, len(a), len(b))
		for i := range a {
			assert.Same(t, a[i].Chunk, b[i].Chunk)
		}
	})
}

func TestRetriever_Query(t *testing.T) {
	chunks := testChunkSet()
	query := "What is the termination clause?"
	embedder := axisEmbedder(map[string][]float32{
		chunks[0].Content: {1, 0, 0},
		chunks[1].Content: {0, 1, 0},
		chunks[2].Content: {0, 0, 1},
		query:             {0.9, 0.1, 0},
	}, []float32{0.5, 0.5, 0.5})

	r, err := NewRetriever(embedder)
	require.NoError(t, err)

	ctx := context.Background()
	ranked, err := r.Query(ctx, chunks, query, 2)
	require.NoError(t, err)
	require.NotEmpty(t, ranked)
	assert.Contains(t, ranked[0].Chunk.Content, "termination")
	assert.LessOrEqual(t, len(ranked), 2)
}

func TestRetriever_EmptyChunkSet(t *testing.T) {
	r, err := NewRetriever(mock.NewMockEmbedder())
	require.NoError(t, err)

	ranked, err := r.Query(context.Background(), nil, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRetriever_ReusesIndexForSameHash(t *testing.T) {
	var batchCalls int
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 1, 0}, nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchCalls++
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(i + 1), 1, 0}
		}
		return out, nil
	}

	r, err := NewRetriever(embedder)
	require.NoError(t, err)

	ctx := context.Background()
	chunks := testChunkSet()

	_, err = r.Query(ctx, chunks, "termination", 3)
	require.NoError(t, err)
	_, err = r.Query(ctx, chunks, "renewal", 3)
	require.NoError(t, err)

	assert.Equal(t, 1, batchCalls, "second query for the same chunk-set hash must not re-embed")
}

func TestRetriever_PersistedIndexSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	chunks := testChunkSet()

	var batchCalls int
	newEmbedder := func() *mock.MockEmbedder {
		m := mock.NewMockEmbedder()
		m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 1, 0}, nil
		}
		m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			batchCalls++
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{float32(i + 1), 1, 0}
			}
			return out, nil
		}
		return m
	}

	r1, err := NewRetriever(newEmbedder(), WithIndexDir(dir))
	require.NoError(t, err)
	_, err = r1.Query(ctx, chunks, "termination", 3)
	require.NoError(t, err)
	require.Equal(t, 1, batchCalls)

	// A fresh retriever over the same directory reloads the persisted
	// collection instead of re-embedding.
	r2, err := NewRetriever(newEmbedder(), WithIndexDir(dir))
	require.NoError(t, err)
	_, err = r2.Query(ctx, chunks, "termination", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, batchCalls)
}

func TestRetriever_BuildFailureIsFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding backend down")
	}

	r, err := NewRetriever(embedder)
	require.NoError(t, err)

	_, err = r.Query(context.Background(), testChunkSet(), "termination", 3)
	assert.ErrorIs(t, err, ErrBuildFailed)
}

func TestRetriever_QueryFailureIsFatal(t *testing.T) {
	built := false
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		built = true
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding backend down")
	}

	r, err := NewRetriever(embedder)
	require.NoError(t, err)

	_, err = r.Query(context.Background(), testChunkSet(), "termination", 3)
	assert.True(t, built)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestRetriever_SingleBuildPerHash(t *testing.T) {
	var mu sync.Mutex
	var batchCalls int
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 1, 0}, nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		mu.Lock()
		batchCalls++
		mu.Unlock()
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(i + 1), 1, 0}
		}
		return out, nil
	}

	r, err := NewRetriever(embedder)
	require.NoError(t, err)

	ctx := context.Background()
	chunks := testChunkSet()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Query(ctx, chunks, "termination", 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, batchCalls, "concurrent queries must not duplicate the build")
}

func TestMergeRanked(t *testing.T) {
	a := &core.Chunk{Content: "a", Source: "x"}
	b := &core.Chunk{Content: "b", Source: "x"}
	c := &core.Chunk{Content: "c", Source: "x"}

	t.Run("chunk in both lists outranks single-list chunks", func(t *testing.T) {
		lexical := []core.RankedChunk{{Chunk: a, Score: 2}, {Chunk: b, Score: 1}}
		semantic := []core.RankedChunk{{Chunk: a, Score: 0.9}, {Chunk: c, Score: 0.8}}

		merged := mergeRanked(lexical, semantic, 0.4, 0.6)
		require.Len(t, merged, 3)
		assert.Same(t, a, merged[0].Chunk)
	})

	t.Run("ties break by lexical rank", func(t *testing.T) {
		// b and c get identical combined scores from one list each
		// with equal weights; b's lexical presence must win.
		lexical := []core.RankedChunk{{Chunk: b, Score: 1}}
		semantic := []core.RankedChunk{{Chunk: c, Score: 1}}

		merged := mergeRanked(lexical, semantic, 0.5, 0.5)
		require.Len(t, merged, 2)
		assert.Same(t, b, merged[0].Chunk)
		assert.Same(t, c, merged[1].Chunk)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Empty(t, mergeRanked(nil, nil, 0.4, 0.6))
	})
}
