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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/docuverse/attest"
	"github.com/docuverse/attest/ai"
)

func main() {
	app := &cli.App{
		Name:  "attest",
		Usage: "Answer questions over documents with retrieval and verification",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Ask a question against one or more documents",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "doc",
						Aliases:  []string{"f"},
						Usage:    "Document file to load (.pdf, .docx, .md, .txt); repeatable",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Directory for chunk and index caches",
						Value:   ".attest",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL for both embedding and completion",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides --host)",
					},
					&cli.StringFlag{
						Name:  "completion-host",
						Usage: "Completion service host URL (overrides --host)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "completion-model",
						Usage: "Completion model name",
					},
					&cli.IntFlag{
						Name:  "max-iterations",
						Usage: "Maximum research/verify attempts per question",
						Value: 3,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	var configOpts []ai.ConfigOption
	if host := c.String("host"); host != "" {
		configOpts = append(configOpts, ai.WithHost(host))
	}
	if host := c.String("embedding-host"); host != "" {
		configOpts = append(configOpts, ai.WithEmbeddingHost(host))
	}
	if host := c.String("completion-host"); host != "" {
		configOpts = append(configOpts, ai.WithCompletionHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		configOpts = append(configOpts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("completion-model"); model != "" {
		configOpts = append(configOpts, ai.WithCompletionModel(model))
	}

	aiConfig := ai.NewConfig(configOpts...)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	engine, err := attest.NewEngine(c.String("data"),
		attest.WithAIConfig(aiConfig),
		attest.WithMaxIterations(c.Int("max-iterations")))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	if err := engine.LoadDocuments(c.StringSlice("doc")); err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	result, err := engine.Ask(context.Background(), question)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	fmt.Println(result.DraftAnswer)

	if result.VerificationReport != "" {
		fmt.Println()
		fmt.Println("Verification:")
		fmt.Println(result.VerificationReport)
	}

	if len(result.Sources) > 0 {
		fmt.Println("Sources:")
		for _, s := range result.Sources {
			if s.Page > 0 {
				fmt.Printf("  - %s, page %d\n", s.Source, s.Page)
			} else {
				fmt.Printf("  - %s\n", s.Source)
			}
		}
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
