package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aria/internal/graph"
)

// RegisterReadOnly registers the tools that execute immediately against the
// workspace without confirmation.
func RegisterReadOnly(registry *Registry, client *graph.Client) error {
	executors := []Executor{
		&searchContactsTool{client: client},
		&readInboxTool{client: client},
		&searchEmailTool{client: client},
		&listEventsTool{client: client},
		&createEventTool{client: client},
		&listChatsTool{client: client},
		&readChatMessagesTool{client: client},
		&searchFilesTool{client: client},
	}
	for _, tool := range executors {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// jsonContent marshals a tool payload for the model. Marshal failures are
// programming errors surfaced as tool errors rather than panics.
func jsonContent(callID string, payload any) (*ToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorResult(callID, fmt.Errorf("encode result: %w", err)), nil
	}
	return &ToolResult{CallID: callID, Content: string(data)}, nil
}

type searchContactsTool struct {
	client *graph.Client
}

func (t *searchContactsTool) Definition() Definition {
	return Definition{
		Name:        "search_contacts",
		Description: "Search the directory for a person by name. Returns matching contacts with their email addresses.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"name": {Type: "string", Description: "Full or partial name of the person"},
			},
			Required: []string{"name"},
		},
	}
}

func (t *searchContactsTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	name := stringArg(call.Arguments, "name")
	if name == "" {
		return errorResult(call.ID, fmt.Errorf("name is required")), nil
	}
	contacts, err := t.client.SearchContacts(ctx, name)
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{"contacts": contacts})
}

type readInboxTool struct {
	client *graph.Client
}

func (t *readInboxTool) Definition() Definition {
	return Definition{
		Name:        "read_inbox",
		Description: "List the most recent messages in the user's inbox.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"limit": {Type: "integer", Description: "Maximum messages to return, default 10"},
			},
		},
	}
}

func (t *readInboxTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	messages, err := t.client.ListInbox(ctx, intArg(call.Arguments, "limit", 10))
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{"messages": messages})
}

type searchEmailTool struct {
	client *graph.Client
}

func (t *searchEmailTool) Definition() Definition {
	return Definition{
		Name:        "search_email",
		Description: "Search the user's mail by keyword, sender or subject.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"query": {Type: "string", Description: "Search terms"},
				"limit": {Type: "integer", Description: "Maximum messages to return, default 10"},
			},
			Required: []string{"query"},
		},
	}
}

func (t *searchEmailTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	query := stringArg(call.Arguments, "query")
	if query == "" {
		return errorResult(call.ID, fmt.Errorf("query is required")), nil
	}
	messages, err := t.client.SearchMessages(ctx, query, intArg(call.Arguments, "limit", 10))
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{"messages": messages})
}

type listEventsTool struct {
	client *graph.Client
}

func (t *listEventsTool) Definition() Definition {
	return Definition{
		Name:        "list_events",
		Description: "List calendar events in a time window. Defaults to the next 7 days.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"from":  {Type: "string", Description: "Window start, RFC 3339"},
				"to":    {Type: "string", Description: "Window end, RFC 3339"},
				"limit": {Type: "integer", Description: "Maximum events to return, default 20"},
			},
		},
	}
}

func (t *listEventsTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	from := time.Now()
	to := from.Add(7 * 24 * time.Hour)
	if raw := stringArg(call.Arguments, "from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errorResult(call.ID, fmt.Errorf("invalid from timestamp: %w", err)), nil
		}
		from = parsed
	}
	if raw := stringArg(call.Arguments, "to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errorResult(call.ID, fmt.Errorf("invalid to timestamp: %w", err)), nil
		}
		to = parsed
	}
	events, err := t.client.ListEvents(ctx, from, to, intArg(call.Arguments, "limit", 20))
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{"events": events})
}

type createEventTool struct {
	client *graph.Client
}

func (t *createEventTool) Definition() Definition {
	return Definition{
		Name:        "create_event",
		Description: "Create a calendar event for the user.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"subject":  {Type: "string", Description: "Event title"},
				"start":    {Type: "string", Description: "Start time, RFC 3339"},
				"end":      {Type: "string", Description: "End time, RFC 3339"},
				"location": {Type: "string", Description: "Optional location name"},
				"body":     {Type: "string", Description: "Optional event description"},
			},
			Required: []string{"subject", "start", "end"},
		},
	}
}

func (t *createEventTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	subject := stringArg(call.Arguments, "subject")
	start := stringArg(call.Arguments, "start")
	end := stringArg(call.Arguments, "end")
	if subject == "" || start == "" || end == "" {
		return errorResult(call.ID, fmt.Errorf("subject, start and end are required")), nil
	}
	for _, raw := range []string{start, end} {
		if _, err := time.Parse(time.RFC3339, raw); err != nil {
			return errorResult(call.ID, fmt.Errorf("invalid timestamp %q: %w", raw, err)), nil
		}
	}
	event := graph.Event{
		Subject: subject,
		Start:   graph.EventDateTime{DateTime: start, TimeZone: "UTC"},
		End:     graph.EventDateTime{DateTime: end, TimeZone: "UTC"},
	}
	if location := stringArg(call.Arguments, "location"); location != "" {
		event.Location = &graph.Location{DisplayName: location}
	}
	if body := stringArg(call.Arguments, "body"); body != "" {
		event.Body = &graph.ItemBody{ContentType: "text", Content: body}
	}
	created, err := t.client.CreateEvent(ctx, event)
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{"event": created})
}

type listChatsTool struct {
	client *graph.Client
}

func (t *listChatsTool) Definition() Definition {
	return Definition{
		Name:        "list_chats",
		Description: "List the user's chat conversations with their members.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"limit": {Type: "integer", Description: "Maximum chats to return, default 20"},
			},
		},
	}
}

func (t *listChatsTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	chats, err := t.client.ListChats(ctx, intArg(call.Arguments, "limit", 20))
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{"chats": chats})
}

type readChatMessagesTool struct {
	client *graph.Client
}

func (t *readChatMessagesTool) Definition() Definition {
	return Definition{
		Name:        "read_chat_messages",
		Description: "Read recent messages from a chat conversation.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"chat_id": {Type: "string", Description: "Chat identifier from list_chats"},
				"limit":   {Type: "integer", Description: "Maximum messages to return, default 20"},
			},
			Required: []string{"chat_id"},
		},
	}
}

func (t *readChatMessagesTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	chatID := stringArg(call.Arguments, "chat_id")
	if chatID == "" {
		return errorResult(call.ID, fmt.Errorf("chat_id is required")), nil
	}
	messages, err := t.client.ListChatMessages(ctx, chatID, intArg(call.Arguments, "limit", 20))
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{"messages": messages})
}

type searchFilesTool struct {
	client *graph.Client
}

func (t *searchFilesTool) Definition() Definition {
	return Definition{
		Name:        "search_files",
		Description: "Search the user's drive for files, or list a folder when no query is given.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"query":  {Type: "string", Description: "Search terms; omit to list a folder"},
				"folder": {Type: "string", Description: "Folder path to list, default root"},
				"limit":  {Type: "integer", Description: "Maximum items to return, default 20"},
			},
		},
	}
}

func (t *searchFilesTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	limit := intArg(call.Arguments, "limit", 20)
	if query := stringArg(call.Arguments, "query"); query != "" {
		items, err := t.client.SearchDriveItems(ctx, query, limit)
		if err != nil {
			return errorResult(call.ID, err), nil
		}
		return jsonContent(call.ID, map[string]any{"items": items})
	}
	items, err := t.client.ListDriveItems(ctx, stringArg(call.Arguments, "folder"), limit)
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{"items": items})
}
