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
	"log/slog"
	"strings"

	"github.com/docuverse/attest/ai"
	"github.com/docuverse/attest/core"
)

const gateMaxTokens = 1000

// Gate classifies whether retrieved passages justify attempting an
// answer at all. It never fails: every inference or parsing problem
// degrades to a conservative label instead of an error.
type Gate struct {
	completer ai.Completer
	logger    *slog.Logger
}

// NewGate creates a relevance gate backed by the given completer.
func NewGate(completer ai.Completer, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{completer: completer, logger: logger}
}

// Check classifies how well the chunks address the question. An empty
// chunk set is NO_MATCH without a model call. A backend failure is
// NO_MATCH; an unparseable response is PARTIAL, since the model at
// least engaged with the passages.
func (g *Gate) Check(ctx context.Context, question string, chunks []*core.Chunk) core.Relevance {
	if len(chunks) == 0 {
		g.logger.Debug("no chunks to classify", "question", question)
		return core.RelevanceNoMatch
	}

	passages := make([]string, len(chunks))
	for i, c := range chunks {
		passages[i] = c.Content
	}

	resp, err := g.completer.Complete(ctx, relevancePrompt(question, strings.Join(passages, "\n\n")), gateMaxTokens)
	if err != nil {
		g.logger.Warn("relevance inference failed, treating as NO_MATCH", "error", err)
		return core.RelevanceNoMatch
	}

	label := parseRelevance(resp)
	g.logger.Debug("relevance classified", "label", label.String(), "raw", resp)
	return label
}

// parseRelevance matches labels by substring, most permissive first.
// CAN_ANSWER wins over PARTIAL wins over NO_MATCH when the model
// echoes more than one label.
func parseRelevance(resp string) core.Relevance {
	upper := strings.ToUpper(strings.TrimSpace(resp))
	switch {
	case strings.Contains(upper, "CAN_ANSWER"):
		return core.RelevanceCanAnswer
	case strings.Contains(upper, "PARTIAL"):
		return core.RelevancePartial
	case strings.Contains(upper, "NO_MATCH"):
		return core.RelevanceNoMatch
	default:
		// The model said something off-script about passages it did
		// read. Erring toward PARTIAL lets the workflow attempt an
		// answer rather than refusing on a formatting quirk.
		return core.RelevancePartial
	}
}
