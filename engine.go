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


package attest

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/docuverse/attest/ai"
	"github.com/docuverse/attest/ai/openai"
	"github.com/docuverse/attest/answer"
	"github.com/docuverse/attest/cache"
	"github.com/docuverse/attest/core"
	"github.com/docuverse/attest/ingestion"
	"github.com/docuverse/attest/retrieval"
)

// Engine ties document ingestion, retrieval, and the answer workflow
// together over one data directory. Documents are loaded once and
// questions are asked against the loaded chunk set.
type Engine struct {
	store      *cache.Store
	provider   ai.AIProvider
	retriever  *retrieval.Retriever
	controller *answer.Controller
	processor  *ingestion.Processor
	chunks     []*core.Chunk
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	maxIterations int
	logger        *slog.Logger
}

// WithAIConfig sets the model hosts and names.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithMaxIterations bounds the research/verify cycle per question.
func WithMaxIterations(n int) EngineOption {
	return func(o *engineOptions) {
		o.maxIterations = n
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEngine creates an engine storing its chunk cache and vector
// indexes under dataDir.
func NewEngine(dataDir string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:      ai.DefaultConfig(),
		maxIterations: answer.DefaultMaxIterations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	store, err := cache.Open(filepath.Join(dataDir, "chunks"), cache.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		store.Close()
		return nil, err
	}

	retriever, err := retrieval.NewRetriever(provider.Embedder(),
		retrieval.WithIndexDir(filepath.Join(dataDir, "vectors")),
		retrieval.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	controller, err := answer.NewController(retriever, provider.Completer(),
		answer.WithMaxIterations(options.maxIterations),
		answer.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	processor, err := ingestion.NewProcessor(store, ingestion.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	return &Engine{
		store:      store,
		provider:   provider,
		retriever:  retriever,
		controller: controller,
		processor:  processor,
		logger:     options.logger,
	}, nil
}

// LoadDocuments parses the files into the engine's chunk set,
// replacing any previously loaded set.
func (e *Engine) LoadDocuments(paths []string) error {
	chunks, err := e.processor.Process(paths)
	if err != nil {
		return err
	}
	if err := core.ValidateChunkSet(chunks); err != nil {
		return err
	}
	e.chunks = chunks
	e.logger.Info("documents loaded", "files", len(paths), "chunks", len(chunks))
	return nil
}

// Chunks returns the currently loaded chunk set.
func (e *Engine) Chunks() []*core.Chunk {
	return e.chunks
}

// Ask answers a question against the loaded documents.
func (e *Engine) Ask(ctx context.Context, question string) (*answer.Result, error) {
	return e.controller.Answer(ctx, question, e.chunks)
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	e.processor.Release()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing chunk cache", "err", err)
		return err
	}
	return nil
}
