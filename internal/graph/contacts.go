package graph

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// SearchContacts resolves a free-form name to directory contacts. Results are
// cached per normalized query; the directory search is the most expensive
// call in a typical send-email flow and the confirmation round-trip would
// otherwise pay it twice.
func (c *Client) SearchContacts(ctx context.Context, name string) ([]Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("contact search requires a name")
	}

	key := strings.ToLower(name)
	if contact, ok := c.contactCache.Get(key); ok {
		return []Contact{contact}, nil
	}

	query := url.Values{}
	query.Set("$search", name)
	query.Set("$top", "10")

	var resp listResponse[Contact]
	if err := c.get(ctx, "/me/people", query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Value) == 1 {
		c.contactCache.Add(key, resp.Value[0])
	}
	return resp.Value, nil
}

// ResolveContact returns exactly one contact for the name, failing when the
// directory search is empty or ambiguous.
func (c *Client) ResolveContact(ctx context.Context, name string) (Contact, error) {
	contacts, err := c.SearchContacts(ctx, name)
	if err != nil {
		return Contact{}, err
	}
	switch len(contacts) {
	case 0:
		return Contact{}, fmt.Errorf("no contact found matching %q", name)
	case 1:
		return contacts[0], nil
	default:
		names := make([]string, 0, len(contacts))
		for _, contact := range contacts {
			names = append(names, contact.DisplayName)
		}
		return Contact{}, fmt.Errorf("ambiguous contact %q: matches %s", name, strings.Join(names, ", "))
	}
}

// CacheContact seeds the contact cache, letting the dispatch layer reuse a
// lookup carried through the confirmation workflow.
func (c *Client) CacheContact(contact Contact) {
	if contact.DisplayName == "" {
		return
	}
	c.contactCache.Add(strings.ToLower(contact.DisplayName), contact)
}
