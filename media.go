package masto

import (
	"context"
	"fmt"
	"math/rand"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mastokit/masto/internal"
	pkgerrs "github.com/mastokit/masto/pkg/errors"
	"github.com/mastokit/masto/pkg/types"
)

const uploadNameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MediaPost uploads the file at the given path and returns the attachment
// metadata. The attachment's ID is what StatusPost accepts as a media ID.
// The mime type is determined from the file extension; files whose type
// cannot be determined are rejected with an IllegalArgumentError.
func (c *Client) MediaPost(ctx context.Context, path string) (*types.Attachment, error) {
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		return nil, &pkgerrs.IllegalArgumentError{
			Message: fmt.Sprintf("could not determine mime type of %s", path),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pkgerrs.IllegalArgumentError{
			Message: fmt.Sprintf("could not read media file %s", path),
			Err:     err,
		}
	}

	return c.MediaPostData(ctx, data, mimeType)
}

// MediaPostData uploads raw media data under an explicit mime type and
// returns the attachment metadata.
func (c *Client) MediaPostData(ctx context.Context, data []byte, mimeType string) (*types.Attachment, error) {
	if mimeType == "" {
		return nil, &pkgerrs.IllegalArgumentError{
			Message: "data passed directly without mime type",
		}
	}

	file := &internal.File{
		Field:       "file",
		Name:        uploadName(mimeType),
		ContentType: mimeType,
		Content:     data,
	}

	var attachment types.Attachment
	if err := c.transport.Do(ctx, http.MethodPost, "/api/v1/media", nil, []*internal.File{file}, &attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// uploadName generates a unique filename for the upload so the server never
// sees the caller's local paths.
func uploadName(mimeType string) string {
	suffix := make([]byte, 10)
	for i := range suffix {
		suffix[i] = uploadNameAlphabet[rand.Intn(len(uploadNameAlphabet))]
	}
	return fmt.Sprintf("mastoupload_%d_%s%s", time.Now().Unix(), suffix, extensionForMime(mimeType))
}

// extensionForMime picks a file extension for a mime type, empty when none
// is registered.
func extensionForMime(mimeType string) string {
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
