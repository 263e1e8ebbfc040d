// Package notify implements a single idempotent Slack interaction: sending or
// editing a message via incoming webhooks or the WebAPI, or uploading a file.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"heckel.io/slacknotify/config"
	"reflect"
)

// Fields compared when deciding whether an edit would change the live
// message. The message text itself is not part of the comparison.
var editDiffFields = []string{"icon_url", "icon_emoji", "link_names", "color", "attachments", "blocks"}

// Result describes the outcome of a Run
type Result struct {
	Changed        bool           `json:"changed"`
	TS             string         `json:"ts,omitempty"`
	Channel        string         `json:"channel,omitempty"`
	Msg            string         `json:"msg,omitempty"`
	API            map[string]any `json:"api,omitempty"`
	Payload        string         `json:"payload,omitempty"`
	UploadResponse any            `json:"upload_response,omitempty"`
}

// Run performs the configured Slack interaction. A file upload takes
// precedence over everything else. Edits are diffed against the live message
// first, so a no-op edit never hits the write endpoint; in dry-run mode no
// write is issued regardless.
func (c *Client) Run(ctx context.Context) (*Result, error) {
	if c.conf.Upload != nil {
		response, err := c.uploadFile(ctx, c.conf.Upload)
		if err != nil {
			return nil, fmt.Errorf("failed to upload file: %s", err.Error())
		}
		return &Result{Changed: true, Msg: "file uploaded successfully", UploadResponse: response}, nil
	}
	if !config.ValidColor(c.conf.Color) {
		return nil, fmt.Errorf("color must be one of normal, good, warning or danger, or a valid hex value of length 3 or 6, got %q", c.conf.Color)
	}
	a, err := classifyToken(c.conf.Token, c.conf.Domain)
	if err != nil {
		return nil, err
	}
	changed := true
	if c.conf.MessageID != "" {
		message, err := c.getMessage(ctx, c.conf.Channel, c.conf.MessageID)
		if err != nil {
			return nil, err
		}
		changed = messageChanged(message, c.conf)
		if c.conf.DryRun || !changed {
			return &Result{Changed: changed, TS: asString(message["ts"]), Channel: asString(message["channel"])}, nil
		}
	} else if c.conf.DryRun {
		return &Result{Changed: changed}, nil
	}
	p := buildPayload(c.conf)
	response, err := c.postPayload(ctx, a, p)
	if err != nil {
		return nil, err
	}
	if ok, isWebAPI := response["ok"]; isWebAPI {
		if okBool, _ := ok.(bool); !okBool {
			return nil, fmt.Errorf("slack API error: %v", response["error"])
		}
		// The payload is returned as a serialized string, matching what was sent
		payloadJSON, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		return &Result{
			Changed: changed,
			TS:      asString(response["ts"]),
			Channel: asString(response["channel"]),
			API:     response,
			Payload: string(payloadJSON),
		}, nil
	}
	// A webhook 200 carries no structured body; OK is all we know
	return &Result{Changed: changed, Msg: "OK"}, nil
}

// messageChanged compares the fetched message against the requested values,
// field by field, after normalizing both sides through JSON
func messageChanged(message map[string]any, conf *config.Config) bool {
	requested := map[string]any{
		"icon_url":    orNil(conf.IconURL),
		"icon_emoji":  orNil(conf.IconEmoji),
		"link_names":  conf.LinkNames,
		"color":       orNil(conf.Color),
		"attachments": orNilAttachments(conf.Attachments),
		"blocks":      orNilBlocks(conf.Blocks),
	}
	for _, field := range editDiffFields {
		if !jsonEqual(message[field], requested[field]) {
			return true
		}
	}
	return false
}

// jsonEqual compares two values after a JSON round trip, so that numbers and
// nested structures from different sources compare by value
func jsonEqual(a, b any) bool {
	aJSON, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bJSON, err := json.Marshal(b)
	if err != nil {
		return false
	}
	var aNorm, bNorm any
	if err := json.Unmarshal(aJSON, &aNorm); err != nil {
		return false
	}
	if err := json.Unmarshal(bJSON, &bNorm); err != nil {
		return false
	}
	return reflect.DeepEqual(aNorm, bNorm)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func orNilAttachments(attachments []map[string]any) any {
	if attachments == nil {
		return nil
	}
	return attachments
}

func orNilBlocks(blocks []any) any {
	if blocks == nil {
		return nil
	}
	return blocks
}
