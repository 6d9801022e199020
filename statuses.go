package masto

import (
	"context"
	"net/http"

	"github.com/mastokit/masto/pkg/types"
)

// StatusPostOptions carries the optional arguments of StatusPost.
type StatusPostOptions struct {
	// InReplyToID makes the new status a reply to an existing one.
	InReplyToID string
	// MediaIDs attaches up to four pieces of media uploaded via MediaPost.
	MediaIDs []string
}

// Status returns a single status.
func (c *Client) Status(ctx context.Context, id string) (*types.Status, error) {
	var status types.Status
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/statuses/"+id, nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// StatusContext returns the ancestors and descendants of a status.
func (c *Client) StatusContext(ctx context.Context, id string) (*types.Context, error) {
	var context types.Context
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/statuses/"+id+"/context", nil, nil, &context); err != nil {
		return nil, err
	}
	return &context, nil
}

// StatusRebloggedBy returns the accounts that reblogged a status.
func (c *Client) StatusRebloggedBy(ctx context.Context, id string) ([]types.Account, error) {
	var accounts []types.Account
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/statuses/"+id+"/reblogged_by", nil, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// StatusFavouritedBy returns the accounts that favourited a status.
func (c *Client) StatusFavouritedBy(ctx context.Context, id string) ([]types.Account, error) {
	var accounts []types.Account
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/statuses/"+id+"/favourited_by", nil, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// StatusPost posts a new status and returns it.
func (c *Client) StatusPost(ctx context.Context, status string, opts *StatusPostOptions) (*types.Status, error) {
	params := Params{"status": status}
	if opts != nil {
		params["in_reply_to_id"] = opts.InReplyToID
		params["media_ids"] = opts.MediaIDs
	}

	var posted types.Status
	if err := c.transport.Do(ctx, http.MethodPost, "/api/v1/statuses", params.encode(), nil, &posted); err != nil {
		return nil, err
	}
	return &posted, nil
}

// Toot is a synonym for StatusPost that only takes the status text.
func (c *Client) Toot(ctx context.Context, status string) (*types.Status, error) {
	return c.StatusPost(ctx, status, nil)
}

// StatusDelete deletes a status.
func (c *Client) StatusDelete(ctx context.Context, id string) error {
	return c.transport.Do(ctx, http.MethodDelete, "/api/v1/statuses/"+id, nil, nil, nil)
}

// StatusReblog reblogs a status and returns a new status wrapping the
// reblogged one.
func (c *Client) StatusReblog(ctx context.Context, id string) (*types.Status, error) {
	return c.statusAction(ctx, id, "reblog")
}

// StatusUnreblog un-reblogs a status and returns the status that used to be
// reblogged.
func (c *Client) StatusUnreblog(ctx context.Context, id string) (*types.Status, error) {
	return c.statusAction(ctx, id, "unreblog")
}

// StatusFavourite favourites a status and returns it.
func (c *Client) StatusFavourite(ctx context.Context, id string) (*types.Status, error) {
	return c.statusAction(ctx, id, "favourite")
}

// StatusUnfavourite un-favourites a status and returns it.
func (c *Client) StatusUnfavourite(ctx context.Context, id string) (*types.Status, error) {
	return c.statusAction(ctx, id, "unfavourite")
}

func (c *Client) statusAction(ctx context.Context, id, action string) (*types.Status, error) {
	var status types.Status
	if err := c.transport.Do(ctx, http.MethodPost, "/api/v1/statuses/"+id+"/"+action, nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
