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

	"github.com/docuverse/attest/ai"
	"github.com/docuverse/attest/core"
)

const (
	// DefaultMaxIterations bounds the research/verify cycle. When the
	// verifier still rejects the draft on the last attempt, the last
	// draft is returned with a note instead of looping forever.
	DefaultMaxIterations = 3

	// retrievalK is how many chunks the controller pulls for a
	// question before gating and drafting.
	retrievalK = 20
)

// RefusalMessage is the answer returned when the gate classifies the
// retrieved material as unrelated to the question.
const RefusalMessage = "This question isn't related (or there's no data) for your query. Please ask another question relevant to the uploaded document(s)."

// Retriever is the slice of the retrieval engine the controller needs.
type Retriever interface {
	Query(ctx context.Context, chunks []*core.Chunk, query string, k int) ([]core.RankedChunk, error)
}

// Result is the final output of one question: the accepted (or last)
// draft, the formatted verification report, and deduplicated sources.
type Result struct {
	DraftAnswer        string
	VerificationReport string
	Sources            []core.SourceRef
}

// workflow states
type state int

const (
	stateCheckRelevance state = iota
	stateResearch
	stateVerify
	stateEnd
)

// Controller sequences gate, research, and verification for one
// question at a time. A Controller is safe for concurrent use; all
// per-question state lives on the stack of Answer.
type Controller struct {
	retriever     Retriever
	gate          *Gate
	researcher    *Researcher
	verifier      *Verifier
	maxIterations int
	logger        *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithMaxIterations sets the research/verify cycle bound.
// Values below 1 are ignored.
func WithMaxIterations(n int) ControllerOption {
	return func(c *Controller) {
		if n >= 1 {
			c.maxIterations = n
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController wires the three steps over a shared completer.
func NewController(retriever Retriever, completer ai.Completer, opts ...ControllerOption) (*Controller, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}

	c := &Controller{
		retriever:     retriever,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.gate = NewGate(completer, c.logger)
	c.researcher = NewResearcher(completer, c.logger)
	c.verifier = NewVerifier(completer, c.logger)
	return c, nil
}

// Answer runs the full control loop for one question against the
// chunk set. Only retrieval and validation failures surface as
// errors; every model-side failure is absorbed into a refusal or a
// fail-closed report so the caller always gets a usable Result.
func (c *Controller) Answer(ctx context.Context, question string, chunks []*core.Chunk) (*Result, error) {
	if err := core.ValidateChunkSet(chunks); err != nil {
		return nil, err
	}

	ranked, err := c.retriever.Query(ctx, chunks, question, retrievalK)
	if err != nil {
		return nil, fmt.Errorf("retrieve for question: %w", err)
	}

	docs := make([]*core.Chunk, len(ranked))
	for i, rc := range ranked {
		docs[i] = rc.Chunk
	}
	c.logger.Debug("retrieved chunks for question", "question", question, "count", len(docs))

	var (
		ans     *core.Answer
		verdict *core.Verdict
		report  string
		iter    int
	)

	for st := stateCheckRelevance; st != stateEnd; {
		switch st {
		case stateCheckRelevance:
			label := c.gate.Check(ctx, question, docs)
			if label == core.RelevanceNoMatch {
				c.logger.Info("question gated as unrelated", "question", question)
				return &Result{DraftAnswer: RefusalMessage}, nil
			}
			st = stateResearch

		case stateResearch:
			iter++
			c.logger.Debug("drafting answer", "iteration", iter)
			ans = c.researcher.Generate(ctx, question, docs)
			st = stateVerify

		case stateVerify:
			verdict = c.verifier.Check(ctx, ans.Draft, docs)
			report = FormatVerdict(verdict)

			switch {
			case verdict.Supported && verdict.Relevant:
				st = stateEnd
			case iter >= c.maxIterations:
				c.logger.Warn("verification did not pass within the iteration bound",
					"iterations", iter)
				report += fmt.Sprintf("\nNote: verification did not fully pass after %d attempts; returning the last draft.\n", iter)
				st = stateEnd
			default:
				c.logger.Info("verification rejected draft, re-drafting",
					"iteration", iter,
					"supported", verdict.Supported,
					"relevant", verdict.Relevant)
				st = stateResearch
			}
		}
	}

	return &Result{
		DraftAnswer:        ans.Draft,
		VerificationReport: report,
		Sources:            dedupSources(ans.Sources),
	}, nil
}

// dedupSources drops repeat (source, page) pairs, keeping first-seen
// order so citation numbers in the draft stay meaningful.
func dedupSources(sources []core.SourceRef) []core.SourceRef {
	type key struct {
		source string
		page   int
	}
	seen := make(map[key]struct{}, len(sources))
	out := make([]core.SourceRef, 0, len(sources))
	for _, s := range sources {
		k := key{source: s.Source, page: s.Page}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
