package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListChats returns the user's most recently active chats.
func (c *Client) ListChats(ctx context.Context, limit int) ([]Chat, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query := url.Values{}
	query.Set("$top", strconv.Itoa(limit))
	query.Set("$expand", "members")

	var resp listResponse[Chat]
	if err := c.get(ctx, "/me/chats", query, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// FindChatWithUser locates the one-on-one chat with the given user, if any.
func (c *Client) FindChatWithUser(ctx context.Context, userID string) (Chat, bool, error) {
	chats, err := c.ListChats(ctx, 50)
	if err != nil {
		return Chat{}, false, err
	}
	for _, chat := range chats {
		if chat.Type != "oneOnOne" {
			continue
		}
		for _, member := range chat.Members {
			if member.UserID == userID {
				return chat, true, nil
			}
		}
	}
	return Chat{}, false, nil
}

// SendChatMessage posts a message into a chat.
func (c *Client) SendChatMessage(ctx context.Context, chatID, text string) (ChatMessage, error) {
	if chatID == "" {
		return ChatMessage{}, fmt.Errorf("send chat message requires a chat id")
	}
	payload := struct {
		Body ItemBody `json:"body"`
	}{Body: ItemBody{ContentType: "text", Content: text}}

	var msg ChatMessage
	if err := c.post(ctx, "/chats/"+url.PathEscape(chatID)+"/messages", payload, &msg); err != nil {
		return ChatMessage{}, err
	}
	return msg, nil
}

// ListChatMessages returns the latest messages in a chat.
func (c *Client) ListChatMessages(ctx context.Context, chatID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query := url.Values{}
	query.Set("$top", strconv.Itoa(limit))

	var resp listResponse[ChatMessage]
	if err := c.get(ctx, "/chats/"+url.PathEscape(chatID)+"/messages", query, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// DeleteChatMessage soft-deletes the user's own chat message.
func (c *Client) DeleteChatMessage(ctx context.Context, chatID, messageID string) error {
	if chatID == "" || messageID == "" {
		return fmt.Errorf("delete chat message requires chat and message ids")
	}
	path := "/chats/" + url.PathEscape(chatID) + "/messages/" + url.PathEscape(messageID) + "/softDelete"
	return c.post(ctx, path, nil, nil)
}
