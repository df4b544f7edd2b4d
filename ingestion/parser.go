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


package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/docuverse/attest/core"
)

// ParseFile extracts chunks from one document. The chunk granularity
// depends on the format: PDFs chunk per page, markdown per section
// under a level-1/level-2 heading, DOCX per paragraph, and plain text
// as a single chunk.
func ParseFile(path string) ([]*core.Chunk, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return parsePDF(path)
	case ".docx":
		return parseDOCX(path)
	case ".md":
		return parseMarkdown(path)
	case ".txt":
		return parseText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(path))
	}
}

func parsePDF(path string) ([]*core.Chunk, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	var chunks []*core.Chunk
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		chunks = append(chunks, &core.Chunk{
			Content: pageText,
			Source:  name,
			Page:    i,
		})
	}
	return chunks, nil
}

func parseDOCX(path string) ([]*core.Chunk, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	name := filepath.Base(path)
	var chunks []*core.Chunk
	for _, para := range strings.Split(r.Editable().GetContent(), "</w:p>") {
		text := strings.TrimSpace(extractRuns(para))
		if text == "" {
			continue
		}
		chunks = append(chunks, &core.Chunk{
			Content: text,
			Source:  name,
		})
	}
	return chunks, nil
}

// extractRuns pulls the text out of <w:t> runs in a DOCX paragraph.
func extractRuns(xml string) string {
	var b strings.Builder
	for _, part := range strings.Split(xml, "<w:t")[1:] {
		start := strings.Index(part, ">")
		if start < 0 {
			continue
		}
		end := strings.Index(part, "</w:t>")
		if end < start {
			continue
		}
		b.WriteString(part[start+1 : end])
	}
	return b.String()
}

// parseMarkdown splits a document into one chunk per section under a
// level-1 or level-2 heading, carrying the heading path as section
// metadata. Text before the first heading becomes a chunk without one.
func parseMarkdown(path string) ([]*core.Chunk, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	name := filepath.Base(path)
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var (
		chunks  []*core.Chunk
		headers map[string]string
		body    strings.Builder
	)

	flush := func() {
		content := strings.TrimSpace(body.String())
		body.Reset()
		if content == "" {
			return
		}
		var section map[string]string
		if len(headers) > 0 {
			section = make(map[string]string, len(headers))
			for k, v := range headers {
				section[k] = v
			}
		}
		chunks = append(chunks, &core.Chunk{
			Content: content,
			Source:  name,
			Section: section,
		})
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && h.Level <= 2 {
			flush()
			title := nodeSource(h, src)
			if h.Level == 1 {
				headers = map[string]string{"Header 1": title}
			} else {
				next := map[string]string{"Header 2": title}
				if parent, ok := headers["Header 1"]; ok {
					next["Header 1"] = parent
				}
				headers = next
			}
			continue
		}
		if part := nodeSource(node, src); part != "" {
			body.WriteString(part)
			body.WriteString("\n\n")
		}
	}
	flush()

	return chunks, nil
}

// nodeSource reassembles a block node's raw source text. Leaf blocks
// carry their own line segments; container blocks collect from their
// children.
func nodeSource(n ast.Node, src []byte) string {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		var b strings.Builder
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		return strings.TrimRight(b.String(), "\n")
	}

	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if part := nodeSource(c, src); part != "" {
			b.WriteString(part)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func parseText(path string) ([]*core.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}
	return []*core.Chunk{{
		Content: content,
		Source:  filepath.Base(path),
	}}, nil
}
