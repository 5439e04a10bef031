package tools

import (
	"context"
	"fmt"

	"aria/internal/confirm"
	"aria/internal/graph"
)

// RegisterGated registers the side-effecting tools. Instead of executing,
// each one stores a pending action and returns its preview; execution happens
// in confirm_action.
func RegisterGated(registry *Registry, engine *confirm.Engine, client *graph.Client) error {
	executors := []Executor{
		&sendEmailTool{engine: engine, client: client},
		&sendChatMessageTool{engine: engine, client: client},
		&deleteEmailTool{engine: engine, client: client},
		&deleteChatMessageTool{engine: engine, client: client},
	}
	for _, tool := range executors {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// pendingResult renders a freshly created preview for the model, with an
// explicit nudge to relay it to the user instead of acting on it.
func pendingResult(callID string, preview confirm.Preview) (*ToolResult, error) {
	result, err := jsonContent(callID, map[string]any{
		"status":  "pending_confirmation",
		"preview": preview,
		"note":    "Show this preview to the user and wait for their decision. Use confirm_action, edit_action or cancel_action with the action id.",
	})
	if err != nil || result.Error != nil {
		return result, err
	}
	result.Metadata = map[string]any{"action_id": preview.ID}
	return result, nil
}

// contactLookup packages a resolved contact for reuse at execution time.
func contactLookup(contact graph.Contact) map[string]any {
	return map[string]any{
		"contactId":    contact.ID,
		"displayName":  contact.DisplayName,
		"emailAddress": contact.EmailAddress,
	}
}

type sendEmailTool struct {
	engine *confirm.Engine
	client *graph.Client
}

func (t *sendEmailTool) Definition() Definition {
	return Definition{
		Name:        "send_email",
		Description: "Prepare an email for the user to review. The email is not sent until the user confirms.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"recipient_name": {Type: "string", Description: "Name of the person to email"},
				"subject":        {Type: "string", Description: "Email subject"},
				"body":           {Type: "string", Description: "Email body text"},
				"cc":             {Type: "array", Description: "Optional CC recipients, names or addresses", Items: &Property{Type: "string"}},
			},
			Required: []string{"recipient_name", "subject", "body"},
		},
	}
}

func (t *sendEmailTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	recipient := stringArg(call.Arguments, "recipient_name")
	if recipient == "" {
		return errorResult(call.ID, fmt.Errorf("recipient_name is required")), nil
	}
	contact, err := t.client.ResolveContact(ctx, recipient)
	if err != nil {
		return errorResult(call.ID, err), nil
	}

	data := map[string]any{
		confirm.FieldRecipientName: contact.DisplayName,
		confirm.FieldSubject:       stringArg(call.Arguments, "subject"),
		confirm.FieldBody:          stringArg(call.Arguments, "body"),
	}
	if cc := stringSliceArg(call.Arguments, "cc"); len(cc) > 0 {
		data[confirm.FieldCCRecipients] = cc
	}

	preview, err := t.engine.CreatePreview(ctx, confirm.KindSendEmail, data, confirm.CreateOptions{
		SessionID:    call.SessionID,
		CachedLookup: contactLookup(contact),
	})
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return pendingResult(call.ID, preview)
}

type sendChatMessageTool struct {
	engine *confirm.Engine
	client *graph.Client
}

func (t *sendChatMessageTool) Definition() Definition {
	return Definition{
		Name:        "send_chat_message",
		Description: "Prepare a chat message for the user to review. The message is not sent until the user confirms.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"recipient_name": {Type: "string", Description: "Name of the person to message"},
				"message_text":   {Type: "string", Description: "The message to send"},
			},
			Required: []string{"recipient_name", "message_text"},
		},
	}
}

func (t *sendChatMessageTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	recipient := stringArg(call.Arguments, "recipient_name")
	text := stringArg(call.Arguments, "message_text")
	if recipient == "" || text == "" {
		return errorResult(call.ID, fmt.Errorf("recipient_name and message_text are required")), nil
	}
	contact, err := t.client.ResolveContact(ctx, recipient)
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	chat, found, err := t.client.FindChatWithUser(ctx, contact.ID)
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	if !found {
		return errorResult(call.ID, fmt.Errorf("no existing chat with %s", contact.DisplayName)), nil
	}

	lookup := contactLookup(contact)
	lookup["chatId"] = chat.ID

	preview, err := t.engine.CreatePreview(ctx, confirm.KindSendChatMessage, map[string]any{
		confirm.FieldRecipientName: contact.DisplayName,
		confirm.FieldMessageText:   text,
	}, confirm.CreateOptions{SessionID: call.SessionID, CachedLookup: lookup})
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return pendingResult(call.ID, preview)
}

type deleteEmailTool struct {
	engine *confirm.Engine
	client *graph.Client
}

func (t *deleteEmailTool) Definition() Definition {
	return Definition{
		Name:        "delete_email",
		Description: "Prepare deletion of an email. Nothing is deleted until the user confirms.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"message_id": {Type: "string", Description: "Message identifier from read_inbox or search_email"},
			},
			Required: []string{"message_id"},
		},
	}
}

func (t *deleteEmailTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	messageID := stringArg(call.Arguments, "message_id")
	if messageID == "" {
		return errorResult(call.ID, fmt.Errorf("message_id is required")), nil
	}
	// Fetch the message so the preview names what is being deleted rather
	// than showing an opaque id.
	message, err := t.client.GetMessage(ctx, messageID)
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	sender := message.From.EmailAddress.Name
	if sender == "" {
		sender = message.From.EmailAddress.Address
	}

	preview, err := t.engine.CreatePreview(ctx, confirm.KindDeleteEmail, map[string]any{
		confirm.FieldSubject: message.Subject,
		confirm.FieldSender:  sender,
	}, confirm.CreateOptions{
		SessionID:    call.SessionID,
		CachedLookup: map[string]any{"messageId": messageID},
	})
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return pendingResult(call.ID, preview)
}

type deleteChatMessageTool struct {
	engine *confirm.Engine
	client *graph.Client
}

func (t *deleteChatMessageTool) Definition() Definition {
	return Definition{
		Name:        "delete_chat_message",
		Description: "Prepare deletion of one of the user's chat messages. Nothing is deleted until the user confirms.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"chat_id":        {Type: "string", Description: "Chat identifier from list_chats"},
				"message_id":     {Type: "string", Description: "Message identifier from read_chat_messages"},
				"recipient_name": {Type: "string", Description: "Who the chat is with, for the preview"},
			},
			Required: []string{"chat_id", "message_id"},
		},
	}
}

func (t *deleteChatMessageTool) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	chatID := stringArg(call.Arguments, "chat_id")
	messageID := stringArg(call.Arguments, "message_id")
	if chatID == "" || messageID == "" {
		return errorResult(call.ID, fmt.Errorf("chat_id and message_id are required")), nil
	}

	var messagePreview string
	messages, err := t.client.ListChatMessages(ctx, chatID, 50)
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	for _, message := range messages {
		if message.ID == messageID {
			messagePreview = message.Content
			break
		}
	}
	if messagePreview == "" {
		return errorResult(call.ID, fmt.Errorf("message %s not found in chat %s", messageID, chatID)), nil
	}

	preview, err := t.engine.CreatePreview(ctx, confirm.KindDeleteChatMessage, map[string]any{
		confirm.FieldRecipientName:  stringArg(call.Arguments, "recipient_name"),
		confirm.FieldMessagePreview: messagePreview,
	}, confirm.CreateOptions{
		SessionID:    call.SessionID,
		CachedLookup: map[string]any{"chatId": chatID, "messageId": messageID},
	})
	if err != nil {
		return errorResult(call.ID, err), nil
	}
	return pendingResult(call.ID, preview)
}
