package notify

import (
	"heckel.io/slacknotify/config"
	"heckel.io/slacknotify/util"
	"strings"
)

var (
	quoteEscaper = strings.NewReplacer(`'`, `\'`, `"`, `\"`)

	// Attachment text fields whose quotes are escaped before sending
	attachmentEscapeKeys = []string{"title", "text", "author_name", "pretext", "fallback"}

	// Block Kit string fields whose quotes are escaped, at any nesting depth
	blockEscapeKeys = []string{"text", "alt_text"}

	// Channel prefixes that suppress the "#" in "auto" mode
	noHashPrefixes = []string{"#", "@", "C0", "GF", "G0", "CP"}
)

// payload is the JSON body sent to Slack. Fields the caller did not set are
// absent from the map, not null.
type payload map[string]any

// buildPayload assembles the message body from the config. A custom color
// moves the message text into a synthetic attachment, since a color bar can
// only be rendered on attachments.
func buildPayload(conf *config.Config) payload {
	p := payload{}
	if conf.Message != "" {
		if conf.Color == config.DefaultColor {
			p["text"] = escapeQuotes(conf.Message)
		} else {
			p["attachments"] = []any{map[string]any{
				"text":      escapeQuotes(conf.Message),
				"color":     conf.Color,
				"mrkdwn_in": []any{"text"},
			}}
		}
	}
	if conf.Channel != "" {
		p["channel"] = prefixChannel(conf.Channel, conf.PrependHash)
	}
	if conf.ThreadID != "" {
		p["thread_ts"] = conf.ThreadID
	}
	if conf.Username != "" {
		p["username"] = conf.Username
	}
	if conf.IconEmoji != "" {
		p["icon_emoji"] = conf.IconEmoji
	} else if conf.IconURL != "" {
		p["icon_url"] = conf.IconURL
	}
	p["link_names"] = conf.LinkNames
	if conf.Parse != "" {
		p["parse"] = string(conf.Parse)
	}
	if conf.MessageID != "" {
		p["ts"] = conf.MessageID
	}
	if conf.Attachments != nil {
		attachments, ok := p["attachments"].([]any)
		if !ok {
			attachments = make([]any, 0, len(conf.Attachments))
		}
		for _, attachment := range conf.Attachments {
			attachments = append(attachments, escapeAttachment(attachment))
		}
		p["attachments"] = attachments
	}
	if conf.Blocks != nil {
		p["blocks"] = escapeQuotesRecursive(conf.Blocks, blockEscapeKeys)
	}
	return p
}

// prefixChannel applies the channel prefix policy. In "auto" mode the "#" is
// only prepended if the channel does not already start with a known prefix.
func prefixChannel(channel string, policy config.PrependHash) string {
	switch policy {
	case config.Always:
		return "#" + channel
	case config.Never:
		return channel
	default:
		for _, prefix := range noHashPrefixes {
			if strings.HasPrefix(channel, prefix) {
				return channel
			}
		}
		return "#" + channel
	}
}

// escapeQuotes backslash-escapes single and double quotes. Other Slack
// metacharacters (&, <, >) are left alone; callers are expected to
// HTML-entity-encode those themselves.
func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// escapeAttachment escapes quotes in the known attachment text fields and
// defaults a missing fallback to the escaped text. The caller's map is copied,
// never modified.
func escapeAttachment(attachment map[string]any) map[string]any {
	escaped := make(map[string]any, len(attachment)+1)
	for k, v := range attachment {
		if s, ok := v.(string); ok && util.StringContains(attachmentEscapeKeys, k) {
			escaped[k] = escapeQuotes(s)
		} else {
			escaped[k] = v
		}
	}
	if _, ok := escaped["fallback"]; !ok {
		if text, ok := escaped["text"].(string); ok {
			escaped["fallback"] = text
		}
	}
	return escaped
}

// escapeQuotesRecursive walks an arbitrarily nested block structure and
// escapes quotes in string values stored under one of the given keys. Maps and
// slices are copied on the way down; the input is never mutated.
func escapeQuotesRecursive(v any, keys []string) any {
	switch t := v.(type) {
	case map[string]any:
		escaped := make(map[string]any, len(t))
		for k, v := range t {
			if s, ok := v.(string); ok && util.StringContains(keys, k) {
				escaped[k] = escapeQuotes(s)
			} else {
				escaped[k] = escapeQuotesRecursive(v, keys)
			}
		}
		return escaped
	case []any:
		escaped := make([]any, len(t))
		for i, v := range t {
			escaped[i] = escapeQuotesRecursive(v, keys)
		}
		return escaped
	default:
		return v
	}
}
