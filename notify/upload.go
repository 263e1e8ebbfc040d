package notify

import (
	"bytes"
	"context"
	"fmt"
	"github.com/slack-go/slack"
	"heckel.io/slacknotify/config"
	"net/http"
	"os"
	"path/filepath"
)

// uploadFile runs the three-step external upload: request an upload URL for
// the file's name and size, post the raw file bytes to that URL, then finalize
// the upload against the resolved target channel. There is no rollback; a
// failure at any step fails the upload as a whole.
func (c *Client) uploadFile(ctx context.Context, upload *config.Upload) (*slack.CompleteUploadExternalResponse, error) {
	stat, err := os.Stat(upload.Path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", upload.Path)
	}
	uploadURL, err := c.api.GetUploadURLExternalContext(ctx, slack.GetUploadURLExternalParameters{
		FileName:    filepath.Base(upload.Path),
		FileSize:    int(stat.Size()),
		AltTxt:      upload.AltText,
		SnippetType: upload.SnippetType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve upload URL: %s", err.Error())
	}
	if err := c.uploadFileBytes(ctx, uploadURL.UploadURL, upload.Path); err != nil {
		return nil, err
	}
	channelID, err := c.resolveChannelID(ctx, c.conf.Channel)
	if err != nil {
		return nil, err
	}
	response, err := c.api.CompleteUploadExternalContext(ctx, slack.CompleteUploadExternalParameters{
		Files:           []slack.FileSummary{{ID: uploadURL.FileID, Title: upload.Title}},
		Channel:         channelID,
		InitialComment:  upload.InitialComment,
		ThreadTimestamp: upload.ThreadTS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete the upload: %s", err.Error())
	}
	return response, nil
}

// uploadFileBytes posts the file contents to the upload URL returned by
// files.getUploadURLExternal. The file is read fully into memory.
func (c *Client) uploadFileBytes(ctx context.Context, uploadURL, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %s", path, err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error during file upload: HTTP %d", resp.StatusCode)
	}
	return nil
}

// resolveChannelID maps a channel name to its conversation ID by paging
// through the conversations list, 1000 channels at a time, until a name
// matches or the cursor stream ends
func (c *Client) resolveChannelID(ctx context.Context, name string) (string, error) {
	params := &slack.GetConversationsParameters{
		Types:           []string{"public_channel", "private_channel", "mpim", "im"},
		Limit:           channelListPageSize,
		ExcludeArchived: true,
	}
	for {
		channels, cursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("failed to retrieve channels: %s", err.Error())
		}
		for _, channel := range channels {
			if channel.Name == name {
				return channel.ID, nil
			}
		}
		if cursor == "" {
			return "", fmt.Errorf("channel named %q not found", name)
		}
		params.Cursor = cursor
	}
}
