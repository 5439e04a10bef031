// Package tools exposes workspace operations to the LLM as callable tools.
// Read-only tools execute immediately; side-effecting tools are gated behind
// the confirmation engine and only run after confirm_action.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"aria/internal/llm"
)

// ToolCall is a request to execute a tool, decoded from the model's
// function-call arguments.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	SessionID string         `json:"session_id,omitempty"`
}

// ToolResult is the execution result fed back to the model.
type ToolResult struct {
	CallID   string         `json:"call_id"`
	Content  string         `json:"content"`
	Error    error          `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ParameterSchema defines tool parameters in JSON Schema form.
type ParameterSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property defines a single parameter.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Items       *Property `json:"items,omitempty"`
	Enum        []any     `json:"enum,omitempty"`
}

// Definition describes a tool for the LLM.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// LLM converts the definition into the chat-completions tool schema.
func (d Definition) LLM() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.FunctionSpec{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters.asMap(),
		},
	}
}

func (s ParameterSchema) asMap() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, prop := range s.Properties {
		props[name] = prop.asMap()
	}
	schema := map[string]any{
		"type":       s.Type,
		"properties": props,
	}
	if len(s.Required) > 0 {
		schema["required"] = s.Required
	}
	return schema
}

func (p Property) asMap() map[string]any {
	m := map[string]any{
		"type":        p.Type,
		"description": p.Description,
	}
	if p.Items != nil {
		m["items"] = p.Items.asMap()
	}
	if len(p.Enum) > 0 {
		m["enum"] = p.Enum
	}
	return m
}

// Executor executes a single tool call.
type Executor interface {
	Execute(ctx context.Context, call ToolCall) (*ToolResult, error)
	Definition() Definition
}

// Registry holds the tool set advertised to the model.
type Registry struct {
	tools map[string]Executor
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Executor)}
}

// Register adds a tool. Registering a duplicate name is an error.
func (r *Registry) Register(tool Executor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Definition().Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already exists: %s", name)
	}
	r.tools[name] = tool
	return nil
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool, nil
}

// Definitions returns all tool definitions sorted by name, so the prompt the
// model sees is stable across runs.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// LLMDefinitions returns the registry in the chat-completions tool format.
func (r *Registry) LLMDefinitions() []llm.ToolDefinition {
	defs := r.Definitions()
	out := make([]llm.ToolDefinition, len(defs))
	for i, def := range defs {
		out[i] = def.LLM()
	}
	return out
}

// stringArg extracts a string argument, empty when absent or mistyped.
func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

// intArg extracts an integer argument with a default. The model sends JSON
// numbers, which decode as float64.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// stringSliceArg extracts a string-array argument, tolerating both []string
// and the []any that json decoding produces.
func stringSliceArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// errorResult wraps a domain failure so the model sees it and can recover,
// rather than aborting the conversation turn.
func errorResult(callID string, err error) *ToolResult {
	return &ToolResult{
		CallID:  callID,
		Content: "Error: " + err.Error(),
		Error:   err,
	}
}
