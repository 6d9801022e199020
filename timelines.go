package masto

import (
	"context"
	"net/http"

	"github.com/mastokit/masto/pkg/types"
)

// Timeline returns statuses from the named timeline, most recent first.
// Valid names are "home", "mentions", "public" and "tag/<hashtag>"; the
// convenience wrappers below cover each.
func (c *Client) Timeline(ctx context.Context, timeline string, opts *types.RangeOptions) ([]types.Status, error) {
	params := rangeParams(opts).encode()

	var statuses []types.Status
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/timelines/"+timeline, params, nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// TimelineHome returns the authenticated user's home timeline, i.e. statuses
// from followed users and the user itself.
func (c *Client) TimelineHome(ctx context.Context, opts *types.RangeOptions) ([]types.Status, error) {
	return c.Timeline(ctx, "home", opts)
}

// TimelineMentions returns the authenticated user's mentions.
func (c *Client) TimelineMentions(ctx context.Context, opts *types.RangeOptions) ([]types.Status, error) {
	return c.Timeline(ctx, "mentions", opts)
}

// TimelinePublic returns the public / visible-network timeline.
func (c *Client) TimelinePublic(ctx context.Context, opts *types.RangeOptions) ([]types.Status, error) {
	return c.Timeline(ctx, "public", opts)
}

// TimelineHashtag returns all statuses tagged with the given hashtag.
func (c *Client) TimelineHashtag(ctx context.Context, hashtag string, opts *types.RangeOptions) ([]types.Status, error) {
	return c.Timeline(ctx, "tag/"+hashtag, opts)
}
