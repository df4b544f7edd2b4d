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

const verifyMaxTokens = 2000

// Verifier checks a draft answer against the full chunk set. Failure
// to confirm support is never treated as success: backend errors,
// empty responses, and missing fields all default to a not-supported,
// not-relevant verdict with a note saying why.
type Verifier struct {
	completer ai.Completer
	logger    *slog.Logger
}

// NewVerifier creates a verifier backed by the given completer.
func NewVerifier(completer ai.Completer, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{completer: completer, logger: logger}
}

// Check verifies the draft against every chunk, not just the top-k
// used for drafting, so support the drafting step missed still counts.
func (v *Verifier) Check(ctx context.Context, draft string, chunks []*core.Chunk) *core.Verdict {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	contextText := strings.Join(parts, "\n\n")

	resp, err := v.completer.Complete(ctx, verifyPrompt(draft, contextText), verifyMaxTokens)
	if err != nil {
		v.logger.Warn("verification inference failed, failing closed", "error", err)
		return &core.Verdict{Notes: fmt.Sprintf("Model error: %v", err)}
	}

	resp = strings.TrimSpace(resp)
	if resp == "" {
		v.logger.Warn("verification returned an empty response, failing closed")
		return &core.Verdict{Notes: "Empty response from the model."}
	}

	verdict := parseVerdict(resp)
	v.logger.Debug("verification parsed",
		"supported", verdict.Supported,
		"relevant", verdict.Relevant,
		"unsupported_claims", len(verdict.UnsupportedClaims),
		"contradictions", len(verdict.Contradictions))
	return verdict
}

// parseVerdict reads the five-field verification format line by line.
// Unrecognized lines are skipped; fields the model omitted keep their
// fail-closed zero values.
func parseVerdict(resp string) *core.Verdict {
	verdict := &core.Verdict{}

	for _, line := range strings.Split(resp, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// Tolerate markdown emphasis the model may echo around keys.
		key = strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(key), "*")))
		value = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(value), "*"))

		switch key {
		case "supported":
			verdict.Supported = isYes(value)
		case "unsupported claims":
			verdict.UnsupportedClaims = parseBracketList(value)
		case "contradictions":
			verdict.Contradictions = parseBracketList(value)
		case "relevant":
			verdict.Relevant = isYes(value)
		case "additional details":
			verdict.Notes = value
		}
	}

	return verdict
}

func isYes(value string) bool {
	return strings.HasPrefix(strings.ToUpper(value), "YES")
}

// parseBracketList parses "[item1, item2, ...]" into its items with
// surrounding quotes dropped. Anything not bracketed counts as empty.
func parseBracketList(value string) []string {
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value[1:len(value)-1], ",") {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `"'`)
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// FormatVerdict renders a verdict as the verification report shown
// alongside the final answer. List fields keep the bracketed form so
// a formatted report parses back to the same verdict.
func FormatVerdict(verdict *core.Verdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Supported:** %s\n", yesNo(verdict.Supported))
	fmt.Fprintf(&b, "**Unsupported Claims:** %s\n", joinOrNone(verdict.UnsupportedClaims))
	fmt.Fprintf(&b, "**Contradictions:** %s\n", joinOrNone(verdict.Contradictions))
	fmt.Fprintf(&b, "**Relevant:** %s\n", yesNo(verdict.Relevant))

	notes := verdict.Notes
	if notes == "" {
		notes = "None"
	}
	fmt.Fprintf(&b, "**Additional Details:** %s\n", notes)

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return "[" + strings.Join(items, ", ") + "]"
}
