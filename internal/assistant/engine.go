// Package assistant runs the tool-calling loop: it replays the conversation
// into the LLM, executes the tools the model requests, and feeds the results
// back until the model produces a plain reply.
package assistant

import (
	"context"
	"fmt"
	"time"

	"aria/internal/llm"
	"aria/internal/observability"
	"aria/internal/session"
	"aria/internal/tools"
)

const (
	defaultMaxIterations = 8
	defaultHistoryBudget = 12000
)

// Config tunes the engine.
type Config struct {
	// MaxIterations bounds tool-call rounds per user message.
	MaxIterations int
	// HistoryTokenBudget bounds the history replayed into the model.
	HistoryTokenBudget int
	// SystemPrompt overrides the built-in prompt when set.
	SystemPrompt string
}

// Reply is the outcome of one user turn.
type Reply struct {
	SessionID string   `json:"session_id"`
	Text      string   `json:"text"`
	ToolsUsed []string `json:"tools_used,omitempty"`
	// PendingActionID is set when a gated tool proposed an action this
	// turn, so callers can offer confirm/edit/cancel controls directly.
	PendingActionID string `json:"pending_action_id,omitempty"`
}

// Engine drives conversations.
type Engine struct {
	client   llm.Client
	registry *tools.Registry
	sessions session.Store
	logger   *observability.Logger
	metrics  *observability.MetricsCollector

	maxIterations int
	historyBudget int
	systemPrompt  string
	counter       *tokenCounter
}

// NewEngine assembles an assistant engine.
func NewEngine(client llm.Client, registry *tools.Registry, sessions session.Store,
	logger *observability.Logger, metrics *observability.MetricsCollector, cfg Config) *Engine {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.HistoryTokenBudget <= 0 {
		cfg.HistoryTokenBudget = defaultHistoryBudget
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return &Engine{
		client:        client,
		registry:      registry,
		sessions:      sessions,
		logger:        observability.OrNop(logger).With("component", "assistant"),
		metrics:       metrics,
		maxIterations: cfg.MaxIterations,
		historyBudget: cfg.HistoryTokenBudget,
		systemPrompt:  cfg.SystemPrompt,
		counter:       newTokenCounter(),
	}
}

// HandleMessage runs one user turn to completion and persists the session.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, text string) (*Reply, error) {
	if text == "" {
		return nil, fmt.Errorf("empty message")
	}
	ctx = observability.WithSessionID(ctx, sessionID)

	sess, err := e.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(sess.Messages) == 0 {
		sess.AddMessage(llm.Message{Role: "system", Content: e.systemPrompt})
	}
	sess.AddMessage(llm.Message{Role: "user", Content: text})

	reply := &Reply{SessionID: sessionID}
	toolDefs := e.registry.LLMDefinitions()

	for i := 0; i < e.maxIterations; i++ {
		messages := trimHistory(sess.Messages, e.historyBudget, e.counter)

		start := time.Now()
		resp, err := e.client.Chat(ctx, &llm.ChatRequest{
			Model:    e.client.Model(),
			Messages: messages,
			Tools:    toolDefs,
		})
		e.metrics.RecordLLMRequest(ctx, e.client.Model(), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("llm request: %w", err)
		}
		msg, ok := resp.FirstChoice()
		if !ok {
			return nil, fmt.Errorf("llm returned no choices")
		}
		sess.AddMessage(msg)

		if len(msg.ToolCalls) == 0 {
			reply.Text = msg.Content
			break
		}
		for _, toolCall := range msg.ToolCalls {
			result := e.runTool(ctx, sessionID, toolCall)
			reply.ToolsUsed = append(reply.ToolsUsed, toolCall.Function.Name)
			if actionID, ok := result.Metadata["action_id"].(string); ok {
				reply.PendingActionID = actionID
			}
			sess.AddMessage(llm.Message{
				Role:       "tool",
				Content:    result.Content,
				ToolCallID: toolCall.ID,
				Name:       toolCall.Function.Name,
			})
		}
	}

	if reply.Text == "" {
		e.logger.WarnContext(ctx, "iteration cap reached without final reply",
			"max_iterations", e.maxIterations)
		reply.Text = "I could not finish that request within the allowed number of steps. Please try a simpler request."
	}

	if err := e.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return reply, nil
}

// runTool executes one tool call. Failures are reported back to the model as
// tool output so it can retry or explain, never as a turn-level error.
func (e *Engine) runTool(ctx context.Context, sessionID string, toolCall llm.ToolCall) *tools.ToolResult {
	name := toolCall.Function.Name
	start := time.Now()

	tool, err := e.registry.Get(name)
	if err != nil {
		e.metrics.RecordToolExecution(ctx, name, time.Since(start), err)
		return &tools.ToolResult{CallID: toolCall.ID, Content: "Error: " + err.Error(), Error: err}
	}
	args, err := llm.ParseToolArguments(toolCall.Function.Arguments)
	if err != nil {
		e.metrics.RecordToolExecution(ctx, name, time.Since(start), err)
		return &tools.ToolResult{CallID: toolCall.ID, Content: "Error: invalid tool arguments: " + err.Error(), Error: err}
	}

	result, err := tool.Execute(ctx, tools.ToolCall{
		ID:        toolCall.ID,
		Name:      name,
		Arguments: args,
		SessionID: sessionID,
	})
	if err != nil {
		e.metrics.RecordToolExecution(ctx, name, time.Since(start), err)
		e.logger.ErrorContext(ctx, "tool execution failed", "tool", name, "error", err)
		return &tools.ToolResult{CallID: toolCall.ID, Content: "Error: " + err.Error(), Error: err}
	}
	e.metrics.RecordToolExecution(ctx, name, time.Since(start), result.Error)
	if result.Error != nil {
		e.logger.WarnContext(ctx, "tool reported error", "tool", name, "error", result.Error)
	}
	return result
}
