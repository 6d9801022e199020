// Package types defines the entities returned by the Mastodon API.
package types

import "time"

// Account represents a Mastodon user account.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Acct           string    `json:"acct"` // username for local users, username@domain for remote
	DisplayName    string    `json:"display_name"`
	Locked         bool      `json:"locked"`
	CreatedAt      time.Time `json:"created_at"`
	Note           string    `json:"note"`
	URL            string    `json:"url"`
	Avatar         string    `json:"avatar"`
	Header         string    `json:"header"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	StatusesCount  int64     `json:"statuses_count"`
}

// Mention is a reference to another account inside a status.
type Mention struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
	URL      string `json:"url"`
}

// Tag is a hashtag used in a status.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Attachment represents a piece of media attached to a status, returned by
// the media upload endpoint. Its ID is what StatusPost accepts as a media ID.
type Attachment struct {
	ID         string `json:"id"`
	Type       string `json:"type"` // "image", "video" or "gifv"
	URL        string `json:"url"`
	RemoteURL  string `json:"remote_url"`
	PreviewURL string `json:"preview_url"`
	TextURL    string `json:"text_url"`
}

// Status represents a single toot.
type Status struct {
	ID                 string       `json:"id"`
	URI                string       `json:"uri"`
	URL                string       `json:"url"`
	Account            Account      `json:"account"`
	InReplyToID        string       `json:"in_reply_to_id,omitempty"`
	InReplyToAccountID string       `json:"in_reply_to_account_id,omitempty"`
	Reblog             *Status      `json:"reblog"`
	Content            string       `json:"content"`
	CreatedAt          time.Time    `json:"created_at"`
	ReblogsCount       int64        `json:"reblogs_count"`
	FavouritesCount    int64        `json:"favourites_count"`
	Reblogged          bool         `json:"reblogged"`
	Favourited         bool         `json:"favourited"`
	Sensitive          bool         `json:"sensitive"`
	SpoilerText        string       `json:"spoiler_text"`
	Visibility         string       `json:"visibility"`
	MediaAttachments   []Attachment `json:"media_attachments"`
	Mentions           []Mention    `json:"mentions"`
	Tags               []Tag        `json:"tags"`
}

// Context holds the ancestors and descendants of a status.
type Context struct {
	Ancestors   []Status `json:"ancestors"`
	Descendants []Status `json:"descendants"`
}

// Notification represents a mention, favourite, reblog or follow aimed at
// the authenticated user.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "mention", "reblog", "favourite" or "follow"
	CreatedAt time.Time `json:"created_at"`
	Account   Account   `json:"account"`
	Status    *Status   `json:"status"` // nil for follow notifications
}

// Relationship describes how the authenticated user relates to another
// account.
type Relationship struct {
	ID         string `json:"id"`
	Following  bool   `json:"following"`
	FollowedBy bool   `json:"followed_by"`
	Blocking   bool   `json:"blocking"`
	Muting     bool   `json:"muting"`
	Requested  bool   `json:"requested"`
}

// Application is the record returned by app registration.
type Application struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Website      string `json:"website"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AccessToken is the response of the password-grant token endpoint.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	CreatedAt   int64  `json:"created_at"`
}

// RangeOptions carries the cursor parameters shared by the timeline and
// account-status listings. Zero values are omitted from the request.
type RangeOptions struct {
	// MaxID returns results older than this status ID.
	MaxID string
	// SinceID returns results newer than this status ID.
	SinceID string
	// Limit caps the number of results; the server applies its own default
	// and maximum when zero.
	Limit int
}
