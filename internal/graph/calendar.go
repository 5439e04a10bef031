package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ListEvents returns calendar events inside the window.
func (c *Client) ListEvents(ctx context.Context, from, to time.Time, limit int) ([]Event, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query := url.Values{}
	query.Set("startDateTime", from.Format(time.RFC3339))
	query.Set("endDateTime", to.Format(time.RFC3339))
	query.Set("$top", strconv.Itoa(limit))
	query.Set("$orderby", "start/dateTime")

	var resp listResponse[Event]
	if err := c.get(ctx, "/me/calendarView", query, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// CreateEvent adds an event to the user's default calendar.
func (c *Client) CreateEvent(ctx context.Context, event Event) (Event, error) {
	if event.Subject == "" {
		return Event{}, fmt.Errorf("create event requires a subject")
	}
	var created Event
	if err := c.post(ctx, "/me/events", event, &created); err != nil {
		return Event{}, err
	}
	return created, nil
}
