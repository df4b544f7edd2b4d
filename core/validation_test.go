package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name:    "valid chunk",
			chunk:   &Chunk{Content: "Section 5: termination requires 30 days notice.", Source: "contract.pdf", Page: 5},
			wantErr: nil,
		},
		{
			name:    "valid chunk without page",
			chunk:   &Chunk{Content: "Overview paragraph", Source: "readme.md"},
			wantErr: nil,
		},
		{
			name:    "valid chunk with section metadata",
			chunk:   &Chunk{Content: "body", Source: "doc.md", Section: map[string]string{"Header 1": "Intro"}},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "empty content",
			chunk:   &Chunk{Source: "doc.pdf"},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "empty source",
			chunk:   &Chunk{Content: "text"},
			wantErr: ErrEmptySource,
		},
		{
			name:    "negative page",
			chunk:   &Chunk{Content: "text", Source: "doc.pdf", Page: -1},
			wantErr: ErrNegativePage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidChunk) {
				t.Errorf("ValidateChunk() error should wrap ErrInvalidChunk, got %v", err)
			}
		})
	}
}

func TestValidateChunkSet(t *testing.T) {
	t.Run("empty set is valid", func(t *testing.T) {
		if err := ValidateChunkSet(nil); err != nil {
			t.Errorf("ValidateChunkSet(nil) = %v, want nil", err)
		}
	})

	t.Run("valid set", func(t *testing.T) {
		set := []*Chunk{
			{Content: "a", Source: "x.pdf", Page: 1},
			{Content: "b", Source: "y.pdf"},
		}
		if err := ValidateChunkSet(set); err != nil {
			t.Errorf("ValidateChunkSet() = %v, want nil", err)
		}
	})

	t.Run("invalid member surfaces with position", func(t *testing.T) {
		set := []*Chunk{
			{Content: "a", Source: "x.pdf"},
			{Content: "", Source: "x.pdf"},
		}
		err := ValidateChunkSet(set)
		if !errors.Is(err, ErrInvalidChunkSet) || !errors.Is(err, ErrEmptyContent) {
			t.Errorf("ValidateChunkSet() error = %v, want chunk set + empty content", err)
		}
	})

	t.Run("oversized set rejected", func(t *testing.T) {
		big := strings.Repeat("x", MaxChunkSetBytes/2+1)
		set := []*Chunk{
			{Content: big, Source: "a.txt"},
			{Content: big, Source: "b.txt"},
		}
		err := ValidateChunkSet(set)
		if !errors.Is(err, ErrChunkSetTooLarge) {
			t.Errorf("ValidateChunkSet() error = %v, want ErrChunkSetTooLarge", err)
		}
	})
}
