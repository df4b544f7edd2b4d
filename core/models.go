package core

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated by content-based hashing, so identical content
// always yields the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is an immutable unit of retrievable document text with
// provenance metadata. Identity for deduplication purposes is the
// hash of Content; Source and Page only describe where the text
// came from.
type Chunk struct {
	Content string
	Source  string            // document identifier, e.g. "contract.pdf"
	Page    int               // 1-based page number, 0 when unknown
	Section map[string]string // header path and other section metadata
}

// ID returns the content-based identity of the chunk.
func (c *Chunk) ID() ID {
	return IDFromContent(c.Content)
}

// HasPage reports whether the chunk carries a known page number.
func (c *Chunk) HasPage() bool {
	return c.Page > 0
}

// ChunkSetHash computes the cache key for a set of chunks from their
// concatenated contents. The hash changes iff any chunk's text
// changes, making it safe to key immutable indexes by it.
func ChunkSetHash(chunks []*Chunk) string {
	h, _ := blake2b.New(16, nil)
	for _, c := range chunks {
		h.Write([]byte(c.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RankedChunk is a chunk paired with a relevance score from one
// retrieval strategy. Produced per query, never persisted.
type RankedChunk struct {
	Chunk *Chunk
	Score float32
}

// Relevance classifies whether retrieved material suffices to answer
// a question.
type Relevance int

const (
	// RelevanceNoMatch means the passages do not discuss the question's topic at all.
	RelevanceNoMatch Relevance = iota + 1
	// RelevancePartial means the passages touch the topic but lack full detail.
	RelevancePartial
	// RelevanceCanAnswer means the passages contain enough explicit information for a full answer.
	RelevanceCanAnswer
)

// String returns the classification label used on the wire with the model.
func (r Relevance) String() string {
	switch r {
	case RelevanceCanAnswer:
		return "CAN_ANSWER"
	case RelevancePartial:
		return "PARTIAL"
	default:
		return "NO_MATCH"
	}
}

// SourceRef is one entry of an answer's citation list. Index matches
// the [Source N] tag embedded in the drafting prompt, so the list is
// positional and must stay in lockstep with the prompt numbering.
type SourceRef struct {
	Index  int
	Source string
	Page   int // 0 when unknown
}

// Answer is a drafted answer with its citations and the context text
// that backed the draft.
type Answer struct {
	Draft       string
	Sources     []SourceRef
	ContextUsed string
}

// Verdict is the structured outcome of verifying a draft against the
// retrieved chunks. Each verification call produces a fresh verdict
// that fully replaces the prior one.
type Verdict struct {
	Supported         bool
	UnsupportedClaims []string
	Contradictions    []string
	Relevant          bool
	Notes             string
}
