package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"github.com/slack-go/slack"
	"github.com/tidwall/gjson"
	"heckel.io/slacknotify/config"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client performs a single Slack interaction per Run call. It speaks up to
// three wire protocols, selected by the shape of the configured token.
type Client struct {
	conf        *config.Config
	httpClient  *http.Client
	api         *slack.Client
	webhookBase string
	apiBase     string
}

// New creates a Client from the given config
func New(conf *config.Config) *Client {
	httpClient := &http.Client{}
	if !conf.ValidateCerts {
		httpClient.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	return &Client{
		conf:        conf,
		httpClient:  httpClient,
		api:         slack.New(conf.Token, slack.OptionHTTPClient(httpClient), slack.OptionDebug(conf.Debug)),
		webhookBase: webhookBaseURL,
		apiBase:     apiBaseURL,
	}
}

// postPayload sends the payload to the URL selected by the token
// classification. WebAPI responses are parsed and returned as-is, so callers
// can inspect ok/ts/channel/error. Webhook deliveries have no structured body;
// a 200 becomes the synthetic {"webhook": "ok"} response.
func (c *Client) postPayload(ctx context.Context, a *auth, p payload) (map[string]any, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	_, edit := p["ts"]
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.postURL(a, edit), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "application/json")
	if a.bearer() {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		target := c.postURL(a, edit)
		if !a.bearer() {
			// Webhook URLs contain the token; never include it in error output
			target = c.webhookBase + "/" + obscuredToken
		}
		return nil, fmt.Errorf("failed to send %s to %s: %s (HTTP %d)", string(body), target, strings.TrimSpace(string(responseBody)), resp.StatusCode)
	}
	if !a.bearer() {
		return map[string]any{"webhook": "ok"}, nil
	}
	var response map[string]any
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("slack API response is not valid JSON: %s", strings.TrimSpace(string(responseBody)))
	}
	return response, nil
}

// getMessage fetches the single message identified by channel and ts. The ts
// is expected to uniquely identify one message; zero or multiple matches are
// errors.
func (c *Client) getMessage(ctx context.Context, channel, ts string) (map[string]any, error) {
	query := url.Values{}
	query.Set("channel", channel)
	query.Set("ts", ts)
	query.Set("limit", "1")
	query.Set("inclusive", "true")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/conversations.history?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.conf.Token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get message %s: HTTP %d", ts, resp.StatusCode)
	}
	if ok := gjson.GetBytes(body, "ok"); ok.Exists() && !ok.Bool() {
		return nil, fmt.Errorf("failed to get message %s: %s", ts, gjson.GetBytes(body, "error").String())
	}
	messages := gjson.GetBytes(body, "messages").Array()
	if len(messages) < 1 {
		return nil, fmt.Errorf("no messages matching ts %s", ts)
	} else if len(messages) > 1 {
		return nil, fmt.Errorf("more than one message matching ts %s", ts)
	}
	var message map[string]any
	if err := json.Unmarshal([]byte(messages[0].Raw), &message); err != nil {
		return nil, err
	}
	return message, nil
}
