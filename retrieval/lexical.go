package retrieval

import (
	"math"
	"sort"
	"strings"

	"github.com/docuverse/attest/core"
)

// BM25 parameters, standard values.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Stop words to drop during tokenization
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenize splits text into words, lowercases, trims punctuation, and removes stop words
func tokenize(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// posting records one term occurrence within a document.
type posting struct {
	doc int // index into the chunk slice
	tf  int // term frequency in that document
}

// lexicalIndex is an in-memory BM25 index over a chunk set. It is
// cheap to construct and therefore built fresh on every index build,
// unlike the semantic index which is persisted per chunk-set hash.
type lexicalIndex struct {
	chunks    []*core.Chunk
	postings  map[string][]posting
	docLen    []int
	avgDocLen float64
}

func newLexicalIndex(chunks []*core.Chunk) *lexicalIndex {
	ix := &lexicalIndex{
		chunks:   chunks,
		postings: make(map[string][]posting),
		docLen:   make([]int, len(chunks)),
	}

	var totalLen int
	for doc, chunk := range chunks {
		tokens := tokenize(chunk.Content)
		ix.docLen[doc] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term, count := range tf {
			ix.postings[term] = append(ix.postings[term], posting{doc: doc, tf: count})
		}
	}

	if len(chunks) > 0 {
		ix.avgDocLen = float64(totalLen) / float64(len(chunks))
	}
	return ix
}

// query scores all documents against the query terms with BM25 and
// returns up to k ranked chunks, best first. Ordering is fully
// deterministic: score descending, document position ascending.
func (ix *lexicalIndex) query(query string, k int) []core.RankedChunk {
	terms := tokenize(query)
	if len(terms) == 0 || len(ix.chunks) == 0 {
		return nil
	}

	n := float64(len(ix.chunks))
	scores := make([]float64, len(ix.chunks))
	for _, term := range terms {
		plist, ok := ix.postings[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (n-float64(len(plist))+0.5)/(float64(len(plist))+0.5))
		for _, p := range plist {
			tf := float64(p.tf)
			norm := 1 - bm25B + bm25B*float64(ix.docLen[p.doc])/ix.avgDocLen
			scores[p.doc] += idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
	}

	ranked := make([]core.RankedChunk, 0, len(ix.chunks))
	order := make([]int, 0, len(ix.chunks))
	for doc, score := range scores {
		if score > 0 {
			order = append(order, doc)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if scores[order[i]] != scores[order[j]] {
			return scores[order[i]] > scores[order[j]]
		}
		return order[i] < order[j]
	})

	for _, doc := range order {
		ranked = append(ranked, core.RankedChunk{
			Chunk: ix.chunks[doc],
			Score: float32(scores[doc]),
		})
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
