package masto

import (
	"context"
	"net/http"

	"github.com/mastokit/masto/pkg/types"
)

// Notifications returns the authenticated user's notifications: mentions,
// favourites, reblogs and follows.
func (c *Client) Notifications(ctx context.Context) ([]types.Notification, error) {
	var notifications []types.Notification
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/notifications", nil, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}
