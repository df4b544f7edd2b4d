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


package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docuverse/attest/ai"
	"github.com/docuverse/attest/core"
)

const researchMaxTokens = 4000

// FallbackAnswer is returned as the draft when the model cannot be
// reached or produces nothing.
const FallbackAnswer = "I cannot answer this question based on the provided documents."

// Researcher drafts an answer to a question from a set of chunks,
// annotating the context so the model can cite sources by number.
type Researcher struct {
	completer ai.Completer
	logger    *slog.Logger
}

// NewResearcher creates a researcher backed by the given completer.
func NewResearcher(completer ai.Completer, logger *slog.Logger) *Researcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Researcher{completer: completer, logger: logger}
}

// Generate drafts an answer from the chunks. It never returns an
// error: a failed or empty completion yields the fallback refusal with
// the sources and context intact.
func (r *Researcher) Generate(ctx context.Context, question string, chunks []*core.Chunk) *core.Answer {
	contextText, sources := buildContext(chunks)
	r.logger.Debug("research context built", "chars", len(contextText), "sources", len(sources))

	draft, err := r.completer.Complete(ctx, researchPrompt(question, contextText), researchMaxTokens)
	if err != nil {
		r.logger.Warn("research inference failed, using fallback answer", "error", err)
		draft = FallbackAnswer
	}

	draft = strings.TrimSpace(draft)
	if draft == "" {
		draft = FallbackAnswer
	}

	return &core.Answer{
		Draft:       draft,
		Sources:     sources,
		ContextUsed: contextText,
	}
}

// buildContext tags each chunk with a numbered source reference so
// citations in the draft can be traced back. Chunks without a page
// keep the shorter tag form.
func buildContext(chunks []*core.Chunk) (string, []core.SourceRef) {
	parts := make([]string, 0, len(chunks))
	sources := make([]core.SourceRef, 0, len(chunks))

	for i, c := range chunks {
		var tag string
		if c.HasPage() {
			tag = fmt.Sprintf("[Source %d: %s, Page %d]", i+1, c.Source, c.Page)
		} else {
			tag = fmt.Sprintf("[Source %d: %s]", i+1, c.Source)
		}
		sources = append(sources, core.SourceRef{Index: i + 1, Source: c.Source, Page: c.Page})
		parts = append(parts, tag+"\n"+c.Content)
	}

	return strings.Join(parts, "\n\n"), sources
}
