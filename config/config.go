// Package config defines the flat configuration record for a single
// slacknotify invocation.
package config

// Config is the main config struct for the application. Use New to instantiate a default config struct.
type Config struct {
	Token         string
	Domain        string
	Message       string
	Channel       string
	ThreadID      string
	MessageID     string
	Username      string
	IconURL       string
	IconEmoji     string
	LinkNames     int
	Parse         ParseMode
	Color         string
	Attachments   []map[string]any
	Blocks        []any
	PrependHash   PrependHash
	Upload        *Upload
	ValidateCerts bool
	DryRun        bool
	Debug         bool
}

// Upload describes a file to be uploaded instead of sending a message
type Upload struct {
	Path           string
	Title          string
	AltText        string
	SnippetType    string
	InitialComment string
	ThreadTS       string
}

// New instantiates a default new config
func New(token string) *Config {
	return &Config{
		Token:         token,
		LinkNames:     DefaultLinkNames,
		Color:         DefaultColor,
		PrependHash:   DefaultPrependHash,
		ValidateCerts: true,
	}
}
