package masto

import (
	"context"
	"net/http"

	"github.com/mastokit/masto/pkg/types"
)

// Account returns an account by ID.
func (c *Client) Account(ctx context.Context, id string) (*types.Account, error) {
	var account types.Account
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/accounts/"+id, nil, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// AccountVerifyCredentials returns the authenticated user's own account.
func (c *Client) AccountVerifyCredentials(ctx context.Context) (*types.Account, error) {
	var account types.Account
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/accounts/verify_credentials", nil, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// AccountStatuses returns statuses posted by an account. The same cursor
// options as the timelines apply.
func (c *Client) AccountStatuses(ctx context.Context, id string, opts *types.RangeOptions) ([]types.Status, error) {
	params := rangeParams(opts).encode()

	var statuses []types.Status
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/accounts/"+id+"/statuses", params, nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// AccountFollowing returns the accounts the given account follows.
func (c *Client) AccountFollowing(ctx context.Context, id string) ([]types.Account, error) {
	return c.accountList(ctx, "/api/v1/accounts/"+id+"/following")
}

// AccountFollowers returns the accounts following the given account.
func (c *Client) AccountFollowers(ctx context.Context, id string) ([]types.Account, error) {
	return c.accountList(ctx, "/api/v1/accounts/"+id+"/followers")
}

// AccountRelationships returns the authenticated user's relationships
// (following, followed-by, blocking) to the given accounts.
func (c *Client) AccountRelationships(ctx context.Context, ids []string) ([]types.Relationship, error) {
	params := Params{"id": ids}.encode()

	var relationships []types.Relationship
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/accounts/relationships", params, nil, &relationships); err != nil {
		return nil, err
	}
	return relationships, nil
}

// AccountSuggestions returns accounts the instance suggests the
// authenticated user follow.
func (c *Client) AccountSuggestions(ctx context.Context) ([]types.Account, error) {
	return c.accountList(ctx, "/api/v1/accounts/suggestions")
}

// AccountSearch returns accounts matching the query. A username@domain query
// makes the instance look the account up remotely if it is not yet known
// locally.
func (c *Client) AccountSearch(ctx context.Context, query string, limit int) ([]types.Account, error) {
	params := Params{"q": query, "limit": limit}.encode()

	var accounts []types.Account
	if err := c.transport.Do(ctx, http.MethodGet, "/api/v1/accounts/search", params, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// AccountFollow follows an account and returns the updated relationship.
func (c *Client) AccountFollow(ctx context.Context, id string) (*types.Relationship, error) {
	return c.accountAction(ctx, id, "follow")
}

// AccountUnfollow unfollows an account and returns the updated relationship.
func (c *Client) AccountUnfollow(ctx context.Context, id string) (*types.Relationship, error) {
	return c.accountAction(ctx, id, "unfollow")
}

// AccountBlock blocks an account and returns the updated relationship.
func (c *Client) AccountBlock(ctx context.Context, id string) (*types.Relationship, error) {
	return c.accountAction(ctx, id, "block")
}

// AccountUnblock unblocks an account and returns the updated relationship.
func (c *Client) AccountUnblock(ctx context.Context, id string) (*types.Relationship, error) {
	return c.accountAction(ctx, id, "unblock")
}

func (c *Client) accountList(ctx context.Context, endpoint string) ([]types.Account, error) {
	var accounts []types.Account
	if err := c.transport.Do(ctx, http.MethodGet, endpoint, nil, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) accountAction(ctx context.Context, id, action string) (*types.Relationship, error) {
	var relationship types.Relationship
	if err := c.transport.Do(ctx, http.MethodPost, "/api/v1/accounts/"+id+"/"+action, nil, nil, &relationship); err != nil {
		return nil, err
	}
	return &relationship, nil
}
