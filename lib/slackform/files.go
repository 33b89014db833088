package slackform

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/slack-go/slack"

	"tenantops/lib/tenant"
)

// fileAPI is the slice of the Slack client used for file downloads.
type fileAPI interface {
	GetFileContext(ctx context.Context, downloadURL string, writer io.Writer) error
}

var _ fileAPI = (*slack.Client)(nil)

// FileClient downloads workspace-private files, e.g. the uploaded
// tenant logo, authenticating with the bot token baked into the client.
type FileClient struct {
	api fileAPI
}

func NewFileClient(api fileAPI) *FileClient {
	return &FileClient{api: api}
}

// Fetch downloads one private file.
func (c *FileClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.api.GetFileContext(ctx, url, &buf); err != nil {
		return nil, fmt.Errorf("%w: downloading %s: %s", tenant.ErrExternalService, url, err.Error())
	}
	return buf.Bytes(), nil
}
