package graph

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// ListDriveItems returns the children of a drive folder; an empty path lists
// the drive root.
func (c *Client) ListDriveItems(ctx context.Context, folderPath string, limit int) ([]DriveItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	path := "/me/drive/root/children"
	if folderPath = strings.Trim(folderPath, "/"); folderPath != "" {
		path = "/me/drive/root:/" + url.PathEscape(folderPath) + ":/children"
	}
	query := url.Values{}
	query.Set("$top", strconv.Itoa(limit))

	var resp listResponse[DriveItem]
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// SearchDriveItems finds files matching a free-text query.
func (c *Client) SearchDriveItems(ctx context.Context, search string, limit int) ([]DriveItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	query := url.Values{}
	query.Set("$top", strconv.Itoa(limit))

	path := "/me/drive/root/search(q='" + url.PathEscape(search) + "')"
	var resp listResponse[DriveItem]
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}
