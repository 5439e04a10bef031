package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aria/internal/confirm"
	"aria/internal/graph"
	"aria/internal/observability"
)

// Dispatcher resolves confirmed action payloads into workspace calls. The
// confirmation engine never touches the workspace itself; this is the only
// place a gated action actually executes.
type Dispatcher struct {
	engine *confirm.Engine
	client *graph.Client
	logger *observability.Logger
}

// NewDispatcher creates a dispatcher over the engine and workspace client.
func NewDispatcher(engine *confirm.Engine, client *graph.Client, logger *observability.Logger) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		client: client,
		logger: observability.OrNop(logger).With("component", "dispatcher"),
	}
}

// RegisterConfirmation registers the tools that drive the confirmation
// workflow from the conversation.
func RegisterConfirmation(registry *Registry, dispatcher *Dispatcher) error {
	executors := []Executor{
		&confirmActionTool{dispatcher: dispatcher},
		&editActionTool{engine: dispatcher.engine},
		&cancelActionTool{engine: dispatcher.engine},
	}
	for _, tool := range executors {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// Confirm removes the pending action and executes it. Exposed on the
// dispatcher so the HTTP layer can share the execution path with the
// confirm_action tool.
func (d *Dispatcher) Confirm(ctx context.Context, actionID, sessionID string) (string, error) {
	payload, err := d.engine.Confirm(ctx, actionID, sessionID)
	if err != nil {
		return "", err
	}
	summary, err := d.execute(ctx, payload)
	if err != nil {
		d.logger.ErrorContext(ctx, "confirmed action failed to execute",
			"action_id", actionID, "kind", payload.Kind, "error", err)
		return "", fmt.Errorf("action confirmed but execution failed: %w", err)
	}
	return summary, nil
}

func (d *Dispatcher) execute(ctx context.Context, payload confirm.ExecutionPayload) (string, error) {
	switch payload.Kind {
	case confirm.KindSendEmail:
		return d.executeSendEmail(ctx, payload)
	case confirm.KindSendChatMessage:
		return d.executeSendChatMessage(ctx, payload)
	case confirm.KindDeleteEmail:
		messageID := lookupString(payload.CachedLookup, "messageId")
		if messageID == "" {
			return "", fmt.Errorf("missing message id")
		}
		if err := d.client.DeleteMessage(ctx, messageID); err != nil {
			return "", err
		}
		return "Email deleted.", nil
	case confirm.KindDeleteChatMessage:
		chatID := lookupString(payload.CachedLookup, "chatId")
		messageID := lookupString(payload.CachedLookup, "messageId")
		if chatID == "" || messageID == "" {
			return "", fmt.Errorf("missing chat or message id")
		}
		if err := d.client.DeleteChatMessage(ctx, chatID, messageID); err != nil {
			return "", err
		}
		return "Chat message deleted.", nil
	default:
		return "", fmt.Errorf("%w: %q", confirm.ErrUnknownKind, payload.Kind)
	}
}

func (d *Dispatcher) executeSendEmail(ctx context.Context, payload confirm.ExecutionPayload) (string, error) {
	recipientName := dataString(payload.Data, confirm.FieldRecipientName)
	contact, err := d.resolveRecipient(ctx, recipientName, payload.CachedLookup)
	if err != nil {
		return "", err
	}

	mail := graph.OutgoingMail{
		Subject: dataString(payload.Data, confirm.FieldSubject),
		Body: graph.ItemBody{
			ContentType: "text",
			Content:     dataString(payload.Data, confirm.FieldBody),
		},
		ToRecipients: []graph.Recipient{{
			EmailAddress: graph.EmailAddressField{
				Address: contact.EmailAddress,
				Name:    contact.DisplayName,
			},
		}},
	}
	for _, cc := range dataStrings(payload.Data, confirm.FieldCCRecipients) {
		recipient, err := d.resolveCC(ctx, cc)
		if err != nil {
			return "", err
		}
		mail.CcRecipients = append(mail.CcRecipients, recipient)
	}

	if err := d.client.SendMail(ctx, mail); err != nil {
		return "", err
	}
	return fmt.Sprintf("Email sent to %s.", contact.DisplayName), nil
}

func (d *Dispatcher) executeSendChatMessage(ctx context.Context, payload confirm.ExecutionPayload) (string, error) {
	chatID := lookupString(payload.CachedLookup, "chatId")
	if chatID == "" {
		return "", fmt.Errorf("missing chat id")
	}
	text := dataString(payload.Data, confirm.FieldMessageText)
	if _, err := d.client.SendChatMessage(ctx, chatID, text); err != nil {
		return "", err
	}
	recipient := dataString(payload.Data, confirm.FieldRecipientName)
	if recipient == "" {
		return "Chat message sent.", nil
	}
	return fmt.Sprintf("Chat message sent to %s.", recipient), nil
}

// resolveRecipient reuses the lookup cached when the action was proposed, so
// confirming does not pay for a second directory search. An edited recipient
// name invalidates the cache and forces a fresh resolution.
func (d *Dispatcher) resolveRecipient(ctx context.Context, name string, lookup map[string]any) (graph.Contact, error) {
	cached := graph.Contact{
		ID:           lookupString(lookup, "contactId"),
		DisplayName:  lookupString(lookup, "displayName"),
		EmailAddress: lookupString(lookup, "emailAddress"),
	}
	if cached.EmailAddress != "" && (name == "" || strings.EqualFold(name, cached.DisplayName)) {
		d.client.CacheContact(cached)
		return cached, nil
	}
	if name == "" {
		return graph.Contact{}, fmt.Errorf("missing recipient")
	}
	return d.client.ResolveContact(ctx, name)
}

// resolveCC accepts either a literal address or a directory name.
func (d *Dispatcher) resolveCC(ctx context.Context, entry string) (graph.Recipient, error) {
	if strings.Contains(entry, "@") {
		return graph.Recipient{EmailAddress: graph.EmailAddressField{Address: entry}}, nil
	}
	contact, err := d.client.ResolveContact(ctx, entry)
	if err != nil {
		return graph.Recipient{}, fmt.Errorf("cc recipient: %w", err)
	}
	return graph.Recipient{EmailAddress: graph.EmailAddressField{
		Address: contact.EmailAddress,
		Name:    contact.DisplayName,
	}}, nil
}

func lookupString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	value, _ := m[key].(string)
	return value
}

func dataString(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}

func dataStrings(data map[string]any, key string) []string {
	switch v := data[key].(type) {
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

type confirmActionTool struct {
	dispatcher *Dispatcher
}

func (t *confirmActionTool) Definition() Definition {
	return Definition{
		Name:        "confirm_action",
		Description: "Execute a pending action after the user has approved it. Only call this when the user explicitly confirms.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"action_id": {Type: "string", Description: "Identifier of the pending action"},
			},
			Required: []string{"action_id"},
		},
	}
}

func (t *confirmActionTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	actionID := stringArg(call.Arguments, "action_id")
	if actionID == "" {
		return errorResult(call.ID, fmt.Errorf("action_id is required")), nil
	}
	summary, err := t.dispatcher.Confirm(ctx, actionID, call.SessionID)
	if err != nil {
		if errors.Is(err, confirm.ErrActionNotFound) {
			return errorResult(call.ID, fmt.Errorf("no pending action %s; it may have expired or already been handled", actionID)), nil
		}
		return errorResult(call.ID, err), nil
	}
	return &ToolResult{CallID: call.ID, Content: summary}, nil
}

type editActionTool struct {
	engine *confirm.Engine
}

func (t *editActionTool) Definition() Definition {
	return Definition{
		Name:        "edit_action",
		Description: "Change fields of a pending action before it is confirmed. Returns the updated preview.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"action_id": {Type: "string", Description: "Identifier of the pending action"},
				"edits":     {Type: "object", Description: "Field names mapped to their new values"},
			},
			Required: []string{"action_id", "edits"},
		},
	}
}

func (t *editActionTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	actionID := stringArg(call.Arguments, "action_id")
	edits, _ := call.Arguments["edits"].(map[string]any)
	if actionID == "" || len(edits) == 0 {
		return errorResult(call.ID, fmt.Errorf("action_id and a non-empty edits object are required")), nil
	}
	preview, err := t.engine.Edit(ctx, actionID, call.SessionID, edits)
	if err != nil {
		if errors.Is(err, confirm.ErrActionNotFound) {
			return errorResult(call.ID, fmt.Errorf("no pending action %s; it may have expired or already been handled", actionID)), nil
		}
		return errorResult(call.ID, err), nil
	}
	return jsonContent(call.ID, map[string]any{
		"status":  "pending_confirmation",
		"preview": preview,
	})
}

type cancelActionTool struct {
	engine *confirm.Engine
}

func (t *cancelActionTool) Definition() Definition {
	return Definition{
		Name:        "cancel_action",
		Description: "Discard a pending action without executing it.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"action_id": {Type: "string", Description: "Identifier of the pending action"},
			},
			Required: []string{"action_id"},
		},
	}
}

func (t *cancelActionTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	actionID := stringArg(call.Arguments, "action_id")
	if actionID == "" {
		return errorResult(call.ID, fmt.Errorf("action_id is required")), nil
	}
	if err := t.engine.Cancel(ctx, actionID, call.SessionID); err != nil {
		if errors.Is(err, confirm.ErrActionNotFound) {
			return errorResult(call.ID, fmt.Errorf("no pending action %s; it may have expired or already been handled", actionID)), nil
		}
		return errorResult(call.ID, err), nil
	}
	return &ToolResult{CallID: call.ID, Content: "Action cancelled. Nothing was executed."}, nil
}
