package notify

import (
	"github.com/stretchr/testify/assert"
	"heckel.io/slacknotify/config"
	"testing"
)

func TestBuildPayloadEscapesQuotes(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.Message = `it's "ok"`
	p := buildPayload(conf)
	assert.Equal(t, `it\'s \"ok\"`, p["text"])
}

func TestBuildPayloadLeavesMarkupAlone(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.Message = "a <https://example.com|link> & more"
	p := buildPayload(conf)
	assert.Equal(t, "a <https://example.com|link> & more", p["text"])
}

func TestBuildPayloadColorWrapsTextInAttachment(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.Message = "x"
	conf.Color = "#ff00aa"
	p := buildPayload(conf)
	_, hasText := p["text"]
	assert.False(t, hasText)
	attachments := p["attachments"].([]any)
	assert.Len(t, attachments, 1)
	attachment := attachments[0].(map[string]any)
	assert.Equal(t, "x", attachment["text"])
	assert.Equal(t, "#ff00aa", attachment["color"])
	assert.Equal(t, []any{"text"}, attachment["mrkdwn_in"])
}

func TestBuildPayloadPrependHash(t *testing.T) {
	assert.Equal(t, "#general", prefixChannel("general", config.Auto))
	assert.Equal(t, "#general", prefixChannel("general", config.Always))
	assert.Equal(t, "general", prefixChannel("general", config.Never))
	for _, channel := range []string{"#general", "@someone", "C0123456", "GF123", "G0123", "CP123"} {
		assert.Equal(t, channel, prefixChannel(channel, config.Auto), channel)
	}
	assert.Equal(t, "#C0123456", prefixChannel("C0123456", config.Always))
	assert.Equal(t, "C0123456", prefixChannel("C0123456", config.Never))
}

func TestBuildPayloadIconEmojiWins(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.IconEmoji = ":rocket:"
	conf.IconURL = "https://example.com/icon.png"
	p := buildPayload(conf)
	assert.Equal(t, ":rocket:", p["icon_emoji"])
	_, hasIconURL := p["icon_url"]
	assert.False(t, hasIconURL)
}

func TestBuildPayloadAttachmentFallback(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.Attachments = []map[string]any{
		{"text": `don't panic`, "title": "T", "footer": "kept as-is"},
		{"text": "b", "fallback": "custom"},
	}
	p := buildPayload(conf)
	attachments := p["attachments"].([]any)
	assert.Len(t, attachments, 2)
	first := attachments[0].(map[string]any)
	assert.Equal(t, `don\'t panic`, first["text"])
	assert.Equal(t, `don\'t panic`, first["fallback"])
	assert.Equal(t, "kept as-is", first["footer"])
	second := attachments[1].(map[string]any)
	assert.Equal(t, "custom", second["fallback"])

	// The caller's attachment maps must not be modified
	assert.Equal(t, `don't panic`, conf.Attachments[0]["text"])
	_, hasFallback := conf.Attachments[0]["fallback"]
	assert.False(t, hasFallback)
}

func TestBuildPayloadAttachmentWithoutText(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.Attachments = []map[string]any{
		{"title": "image only", "image_url": "https://example.com/a.png"},
	}
	p := buildPayload(conf)
	attachments := p["attachments"].([]any)
	assert.Len(t, attachments, 1)
	attachment := attachments[0].(map[string]any)
	assert.Equal(t, "image only", attachment["title"])
	_, hasFallback := attachment["fallback"]
	assert.False(t, hasFallback)
}

func TestBuildPayloadColoredTextAndAttachments(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.Message = "deploy failed"
	conf.Color = "danger"
	conf.Attachments = []map[string]any{{"text": "details"}}
	p := buildPayload(conf)
	attachments := p["attachments"].([]any)
	assert.Len(t, attachments, 2)
	assert.Equal(t, "deploy failed", attachments[0].(map[string]any)["text"])
	assert.Equal(t, "details", attachments[1].(map[string]any)["text"])
}

func TestBuildPayloadBlocksEscapedRecursively(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.Blocks = []any{
		map[string]any{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": `a "quoted" word`},
		},
		map[string]any{
			"type":     "image",
			"alt_text": `it's an image`,
			"elements": []any{
				map[string]any{"type": "plain_text", "text": `nested 'deep'`},
				map[string]any{"count": 3},
			},
		},
	}
	p := buildPayload(conf)
	blocks := p["blocks"].([]any)
	section := blocks[0].(map[string]any)
	assert.Equal(t, `a \"quoted\" word`, section["text"].(map[string]any)["text"])
	image := blocks[1].(map[string]any)
	assert.Equal(t, `it\'s an image`, image["alt_text"])
	elements := image["elements"].([]any)
	assert.Equal(t, `nested \'deep\'`, elements[0].(map[string]any)["text"])
	assert.Equal(t, 3, elements[1].(map[string]any)["count"])

	// The caller's block structure must not be modified
	original := conf.Blocks[0].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, `a "quoted" word`, original["text"])
}

func TestBuildPayloadOmitsUnsetFields(t *testing.T) {
	conf := config.New("xoxb-token")
	p := buildPayload(conf)
	assert.Equal(t, payload{"link_names": 1}, p)
}

func TestBuildPayloadOptionalFields(t *testing.T) {
	conf := config.New("xoxb-token")
	conf.Message = "hi"
	conf.Channel = "C0123"
	conf.ThreadID = "1539917263.000100"
	conf.MessageID = "1539917263.000200"
	conf.Username = "deploybot"
	conf.Parse = config.ParseFull
	conf.LinkNames = 0
	p := buildPayload(conf)
	assert.Equal(t, "C0123", p["channel"])
	assert.Equal(t, "1539917263.000100", p["thread_ts"])
	assert.Equal(t, "1539917263.000200", p["ts"])
	assert.Equal(t, "deploybot", p["username"])
	assert.Equal(t, "full", p["parse"])
	assert.Equal(t, 0, p["link_names"])
}
