package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuverse/attest/ai/mock"
	"github.com/docuverse/attest/core"
)

func gateChunks() []*core.Chunk {
	return []*core.Chunk{
		{Content: "Section 5: termination requires 30 days notice.", Source: "contract.pdf", Page: 5},
		{Content: "The fee schedule is listed in Appendix A.", Source: "contract.pdf", Page: 12},
	}
}

func TestGate_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("empty chunk set skips the model", func(t *testing.T) {
		completer := mock.NewMockCompleter()
		g := NewGate(completer, nil)

		label := g.Check(ctx, "anything", nil)
		assert.Equal(t, core.RelevanceNoMatch, label)
		assert.Equal(t, 0, completer.CallCount())
	})

	t.Run("clean labels", func(t *testing.T) {
		tests := []struct {
			response string
			want     core.Relevance
		}{
			{"CAN_ANSWER", core.RelevanceCanAnswer},
			{"PARTIAL", core.RelevancePartial},
			{"NO_MATCH", core.RelevanceNoMatch},
			{"  can_answer  ", core.RelevanceCanAnswer},
		}
		for _, tt := range tests {
			completer := mock.NewMockCompleter()
			completer.Response = tt.response
			g := NewGate(completer, nil)
			assert.Equal(t, tt.want, g.Check(ctx, "q", gateChunks()), "response=%q", tt.response)
		}
	})

	t.Run("label embedded in chatter", func(t *testing.T) {
		completer := mock.NewMockCompleter()
		completer.Response = "Based on the passages, the label is PARTIAL."
		g := NewGate(completer, nil)
		assert.Equal(t, core.RelevancePartial, g.Check(ctx, "q", gateChunks()))
	})

	t.Run("multiple labels resolve by precedence", func(t *testing.T) {
		completer := mock.NewMockCompleter()
		completer.Response = "Either CAN_ANSWER or NO_MATCH depending on interpretation."
		g := NewGate(completer, nil)
		assert.Equal(t, core.RelevanceCanAnswer, g.Check(ctx, "q", gateChunks()))
	})

	t.Run("inference error is NO_MATCH", func(t *testing.T) {
		completer := mock.NewMockCompleter()
		completer.CompleteFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
			return "", errors.New("backend down")
		}
		g := NewGate(completer, nil)
		assert.Equal(t, core.RelevanceNoMatch, g.Check(ctx, "q", gateChunks()))
	})

	t.Run("unparseable response is PARTIAL", func(t *testing.T) {
		completer := mock.NewMockCompleter()
		completer.Response = "The document discusses contractual obligations."
		g := NewGate(completer, nil)
		assert.Equal(t, core.RelevancePartial, g.Check(ctx, "q", gateChunks()))
	})

	t.Run("prompt carries question and passages", func(t *testing.T) {
		completer := mock.NewMockCompleter()
		completer.Response = "CAN_ANSWER"
		g := NewGate(completer, nil)
		g.Check(ctx, "What is the termination clause?", gateChunks())

		require.Equal(t, 1, completer.CallCount())
		prompt := completer.LastPrompt()
		assert.Contains(t, prompt, "What is the termination clause?")
		assert.Contains(t, prompt, "Section 5: termination requires 30 days notice.")
		assert.Contains(t, prompt, "The fee schedule is listed in Appendix A.")
	})
}
