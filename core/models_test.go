package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "Section 5: termination requires 30 days notice and must be delivered in writing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestChunk_ID(t *testing.T) {
	a := &Chunk{Content: "identical text", Source: "a.pdf", Page: 1}
	b := &Chunk{Content: "identical text", Source: "b.pdf", Page: 7}

	if a.ID() != b.ID() {
		t.Errorf("Chunk.ID() should depend only on content, got %d vs %d", a.ID(), b.ID())
	}
}

func TestChunk_HasPage(t *testing.T) {
	tests := []struct {
		name  string
		chunk Chunk
		want  bool
	}{
		{
			name:  "known page",
			chunk: Chunk{Content: "x", Source: "doc.pdf", Page: 5},
			want:  true,
		},
		{
			name:  "unknown page",
			chunk: Chunk{Content: "x", Source: "notes.md"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chunk.HasPage(); got != tt.want {
				t.Errorf("Chunk.HasPage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunkSetHash(t *testing.T) {
	set := []*Chunk{
		{Content: "first", Source: "a.pdf"},
		{Content: "second", Source: "a.pdf"},
	}

	h1 := ChunkSetHash(set)
	h2 := ChunkSetHash(set)
	if h1 != h2 {
		t.Errorf("ChunkSetHash() not deterministic: %s vs %s", h1, h2)
	}

	changed := []*Chunk{
		{Content: "first", Source: "a.pdf"},
		{Content: "second, edited", Source: "a.pdf"},
	}
	if ChunkSetHash(changed) == h1 {
		t.Errorf("ChunkSetHash() unchanged after content change")
	}

	// Metadata changes must not change the hash.
	relabeled := []*Chunk{
		{Content: "first", Source: "z.pdf", Page: 9},
		{Content: "second", Source: "z.pdf", Page: 10},
	}
	if ChunkSetHash(relabeled) != h1 {
		t.Errorf("ChunkSetHash() should depend only on contents")
	}
}

func TestRelevance_String(t *testing.T) {
	tests := []struct {
		name      string
		relevance Relevance
		want      string
	}{
		{name: "can answer", relevance: RelevanceCanAnswer, want: "CAN_ANSWER"},
		{name: "partial", relevance: RelevancePartial, want: "PARTIAL"},
		{name: "no match", relevance: RelevanceNoMatch, want: "NO_MATCH"},
		{name: "zero value falls back to no match", relevance: Relevance(0), want: "NO_MATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.relevance.String(); got != tt.want {
				t.Errorf("Relevance.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
