package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SendMail sends an email from the signed-in user.
func (c *Client) SendMail(ctx context.Context, mail OutgoingMail) error {
	if len(mail.ToRecipients) == 0 {
		return fmt.Errorf("send mail requires at least one recipient")
	}
	payload := struct {
		Message         OutgoingMail `json:"message"`
		SaveToSentItems bool         `json:"saveToSentItems"`
	}{Message: mail, SaveToSentItems: true}
	return c.post(ctx, "/me/sendMail", payload, nil)
}

// ListInbox returns the most recent inbox messages.
func (c *Client) ListInbox(ctx context.Context, limit int) ([]MailMessage, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := url.Values{}
	query.Set("$top", strconv.Itoa(limit))
	query.Set("$orderby", "receivedDateTime desc")

	var resp listResponse[MailMessage]
	if err := c.get(ctx, "/me/mailFolders/inbox/messages", query, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// SearchMessages finds messages matching a free-text query.
func (c *Client) SearchMessages(ctx context.Context, search string, limit int) ([]MailMessage, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := url.Values{}
	query.Set("$search", search)
	query.Set("$top", strconv.Itoa(limit))

	var resp listResponse[MailMessage]
	if err := c.get(ctx, "/me/messages", query, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// GetMessage fetches a single message by id.
func (c *Client) GetMessage(ctx context.Context, messageID string) (MailMessage, error) {
	var msg MailMessage
	if err := c.get(ctx, "/me/messages/"+url.PathEscape(messageID), nil, &msg); err != nil {
		return MailMessage{}, err
	}
	return msg, nil
}

// DeleteMessage moves a message to deleted items.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	if messageID == "" {
		return fmt.Errorf("delete message requires a message id")
	}
	return c.delete(ctx, "/me/messages/"+url.PathEscape(messageID))
}
