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


package core

import "fmt"

// MaxChunkSetBytes is the upper bound on the combined content size of
// a chunk set accepted into the answering workflow.
const MaxChunkSetBytes = 200 << 20 // 200MB

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Source must not be empty
//   - Page must not be negative (0 means unknown)
//
// NOT validated:
//   - Section metadata (optional, any shape)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySource)
	}

	if chunk.Page < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativePage)
	}

	return nil
}

// ValidateChunkSet validates a set of chunks before it enters the
// answering workflow. An empty set is valid; the relevance gate
// refuses to answer over it rather than erroring.
func ValidateChunkSet(chunks []*Chunk) error {
	var total int
	for i, chunk := range chunks {
		if err := ValidateChunk(chunk); err != nil {
			return fmt.Errorf("%w: chunk %d: %w", ErrInvalidChunkSet, i, err)
		}
		total += len(chunk.Content)
	}

	if total > MaxChunkSetBytes {
		return fmt.Errorf("%w: %w: %d bytes", ErrInvalidChunkSet, ErrChunkSetTooLarge, total)
	}

	return nil
}
