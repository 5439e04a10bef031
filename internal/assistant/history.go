package assistant

import (
	"aria/internal/llm"

	"github.com/pkoukk/tiktoken-go"
)

// tokenCounter estimates message token counts. When the encoding cannot be
// loaded (offline builds have no cached BPE files) it falls back to a
// bytes/4 heuristic, which overestimates slightly and trims a little early.
type tokenCounter struct {
	encoder *tiktoken.Tiktoken
}

func newTokenCounter() *tokenCounter {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &tokenCounter{}
	}
	return &tokenCounter{encoder: encoder}
}

func (c *tokenCounter) count(msg llm.Message) int {
	// Per-message framing overhead.
	total := 4
	total += c.countText(msg.Content)
	for _, call := range msg.ToolCalls {
		total += c.countText(call.Function.Name)
		total += c.countText(call.Function.Arguments)
	}
	return total
}

func (c *tokenCounter) countText(text string) int {
	if text == "" {
		return 0
	}
	if c.encoder == nil {
		return len(text)/4 + 1
	}
	return len(c.encoder.Encode(text, nil, nil))
}

// trimHistory drops the oldest turns until the history fits the token
// budget. The system prompt always survives, and a tool message is never
// left without the assistant message that requested it.
func trimHistory(messages []llm.Message, budget int, counter *tokenCounter) []llm.Message {
	if len(messages) == 0 {
		return messages
	}

	keepFrom := 0
	if messages[0].Role == "system" {
		keepFrom = 1
	}

	total := 0
	for _, msg := range messages {
		total += counter.count(msg)
	}

	start := keepFrom
	for total > budget && start < len(messages)-1 {
		total -= counter.count(messages[start])
		start++
		// Orphaned tool results confuse the model; drop them with the
		// assistant message that produced them.
		for start < len(messages)-1 && messages[start].Role == "tool" {
			total -= counter.count(messages[start])
			start++
		}
	}

	if start == keepFrom {
		return messages
	}
	trimmed := make([]llm.Message, 0, len(messages)-start+keepFrom)
	trimmed = append(trimmed, messages[:keepFrom]...)
	trimmed = append(trimmed, messages[start:]...)
	return trimmed
}
