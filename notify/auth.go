package notify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Slack endpoint templates. The webhook and API bases are copied into each
// Client so tests can point them elsewhere; the constants themselves never change.
const (
	legacyWebhookURL = "https://%s/services/hooks/incoming-webhook?token=%s"
	webhookBaseURL   = "https://hooks.slack.com/services"
	apiBaseURL       = "https://slack.com/api"

	obscuredToken = "[obscured]"

	channelListPageSize = 1000
)

var webAPITokenRegex = regexp.MustCompile(`^xox[abp]-\S+$`)

// authType identifies which of the three Slack wire protocols a token selects
type authType int

// All possible authType constants
const (
	authWebhookNew authType = iota
	authWebAPI
	authWebhookLegacy
)

// auth is the result of classifying a token; exactly one authType applies
type auth struct {
	typ    authType
	token  string
	domain string
}

// classifyToken decides which protocol to speak based on the shape of the
// token. The rules are ordered; the first match wins: two or more slashes mean
// a new-style webhook token, an xoxa-/xoxb-/xoxp- prefix means a WebAPI bearer
// token, and anything else is a legacy webhook token, which requires a domain.
func classifyToken(token, domain string) (*auth, error) {
	if strings.Count(token, "/") >= 2 {
		return &auth{typ: authWebhookNew, token: token}, nil
	} else if webAPITokenRegex.MatchString(token) {
		return &auth{typ: authWebAPI, token: token}, nil
	} else if domain == "" {
		return nil, errors.New("legacy webhook tokens require --domain; use a token of the form XXXX/YYYY/ZZZZ or a WebAPI token (xoxa-, xoxb- or xoxp-) instead")
	}
	return &auth{typ: authWebhookLegacy, token: token, domain: domain}, nil
}

// bearer reports whether requests must carry an Authorization header
func (a *auth) bearer() bool {
	return a.typ == authWebAPI
}

// postURL returns the URL messages are posted to. For WebAPI tokens, edit
// selects the update endpoint over the post endpoint; webhooks have a single
// endpoint and cannot edit.
func (c *Client) postURL(a *auth, edit bool) string {
	switch a.typ {
	case authWebhookNew:
		return c.webhookBase + "/" + a.token
	case authWebAPI:
		if edit {
			return c.apiBase + "/chat.update"
		}
		return c.apiBase + "/chat.postMessage"
	default:
		return fmt.Sprintf(legacyWebhookURL, a.domain, a.token)
	}
}
