// Package cmd provides the slacknotify CLI application
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
	"heckel.io/slacknotify/config"
	"heckel.io/slacknotify/notify"
	"heckel.io/slacknotify/util"
	"log"
	"os"
)

// New creates a new CLI application
func New() *cli.App {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"SLACKNOTIFY_CONFIG_FILE"}, Value: "/etc/slacknotify/config.yml", DefaultText: "/etc/slacknotify/config.yml", Usage: "config file"},
		&cli.BoolFlag{Name: "debug", EnvVars: []string{"SLACKNOTIFY_DEBUG"}, Value: false, Usage: "enable debugging output"},
		altsrc.NewStringFlag(&cli.StringFlag{Name: "token", Aliases: []string{"t"}, EnvVars: []string{"SLACKNOTIFY_TOKEN"}, DefaultText: "none", Usage: "webhook token (legacy or XXXX/YYYY/ZZZZ form) or WebAPI token (xoxa-/xoxb-/xoxp-)"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, EnvVars: []string{"SLACKNOTIFY_DOMAIN"}, Usage: "Slack (sub)domain without protocol, required for legacy webhook tokens"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "message", Aliases: []string{"m"}, EnvVars: []string{"SLACKNOTIFY_MESSAGE"}, Usage: "message to send; plain-text < > & must be HTML-entity-encoded by the caller"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "channel", Aliases: []string{"C"}, EnvVars: []string{"SLACKNOTIFY_CHANNEL"}, Usage: "channel to send the message to; defaults to the channel configured for the token"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "thread-id", EnvVars: []string{"SLACKNOTIFY_THREAD_ID"}, Usage: "timestamp of a parent message to thread this message"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "message-id", EnvVars: []string{"SLACKNOTIFY_MESSAGE_ID"}, Usage: "timestamp of an existing message to edit instead of posting; requires --channel in ID form (C0xxxxxxx)"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "username", Aliases: []string{"u"}, EnvVars: []string{"SLACKNOTIFY_USERNAME"}, Usage: "sender name of the message"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "icon-url", EnvVars: []string{"SLACKNOTIFY_ICON_URL"}, Usage: "URL for the sender's icon"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "icon-emoji", EnvVars: []string{"SLACKNOTIFY_ICON_EMOJI"}, Usage: "emoji for the sender's icon; overrides --icon-url"}),
		altsrc.NewIntFlag(&cli.IntFlag{Name: "link-names", EnvVars: []string{"SLACKNOTIFY_LINK_NAMES"}, Value: config.DefaultLinkNames, Usage: "automatically link channel and user names in the message [0 or 1]"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "parse", EnvVars: []string{"SLACKNOTIFY_PARSE"}, Usage: "message parser setting at Slack [none or full]"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "color", EnvVars: []string{"SLACKNOTIFY_COLOR"}, Value: config.DefaultColor, DefaultText: config.DefaultColor, Usage: "color bar in front of the message [normal, good, warning, danger or a hex value]"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "attachments", Aliases: []string{"a"}, EnvVars: []string{"SLACKNOTIFY_ATTACHMENTS"}, Usage: "attachments as a JSON array, mirroring the Slack attachments API"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "blocks", Aliases: []string{"b"}, EnvVars: []string{"SLACKNOTIFY_BLOCKS"}, Usage: "blocks as a JSON array, mirroring the Slack Block Kit API"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "prepend-hash", EnvVars: []string{"SLACKNOTIFY_PREPEND_HASH"}, DefaultText: string(config.Auto), Usage: "prepend a # to the channel [always, never or auto]"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "upload-file", Aliases: []string{"f"}, EnvVars: []string{"SLACKNOTIFY_UPLOAD_FILE"}, Usage: "path of a file to upload instead of sending a message"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "upload-title", EnvVars: []string{"SLACKNOTIFY_UPLOAD_TITLE"}, Usage: "title for the uploaded file"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "upload-alt-text", EnvVars: []string{"SLACKNOTIFY_UPLOAD_ALT_TEXT"}, Usage: "alternative text describing the uploaded file"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "upload-snippet-type", EnvVars: []string{"SLACKNOTIFY_UPLOAD_SNIPPET_TYPE"}, Usage: "snippet type for the uploaded file"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "upload-initial-comment", EnvVars: []string{"SLACKNOTIFY_UPLOAD_INITIAL_COMMENT"}, Usage: "comment to include when uploading the file"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "upload-thread-ts", EnvVars: []string{"SLACKNOTIFY_UPLOAD_THREAD_TS"}, Usage: "timestamp of a parent message to thread the uploaded file"}),
		altsrc.NewBoolFlag(&cli.BoolFlag{Name: "insecure", Aliases: []string{"k"}, EnvVars: []string{"SLACKNOTIFY_INSECURE"}, Usage: "do not validate TLS certificates; only for personally controlled sites"}),
		&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, EnvVars: []string{"SLACKNOTIFY_DRY_RUN"}, Usage: "report what would change without sending anything"},
	}
	return &cli.App{
		Name:                   "slacknotify",
		Usage:                  "Send, edit and upload files to Slack from scripts and pipelines",
		UsageText:              "slacknotify [OPTION..]",
		HideVersion:            true,
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Reader:                 os.Stdin,
		Writer:                 os.Stdout,
		ErrWriter:              os.Stderr,
		Action:                 execRun,
		Before:                 initConfigFileInputSource("config", flags),
		Flags:                  flags,
	}
}

func execRun(c *cli.Context) error {
	// Read all the options
	token := c.String("token")
	domain := c.String("domain")
	message := c.String("message")
	channel := c.String("channel")
	threadID := c.String("thread-id")
	messageID := c.String("message-id")
	username := c.String("username")
	iconURL := c.String("icon-url")
	iconEmoji := c.String("icon-emoji")
	linkNames := c.Int("link-names")
	parse := config.ParseMode(c.String("parse"))
	color := c.String("color")
	attachmentsJSON := c.String("attachments")
	blocksJSON := c.String("blocks")
	prependHash := config.PrependHash(c.String("prepend-hash"))
	uploadFile := c.String("upload-file")
	insecure := c.Bool("insecure")
	dryRun := c.Bool("dry-run")
	debug := c.Bool("debug")

	// Validate options
	if token == "" {
		return errors.New("missing token, pass --token, set SLACKNOTIFY_TOKEN env variable or token config option")
	} else if linkNames != 0 && linkNames != 1 {
		return errors.New("link-names must be 0 or 1")
	} else if parse != "" && parse != config.ParseNone && parse != config.ParseFull {
		return errors.New("parse must be 'none' or 'full'")
	} else if prependHash != "" && prependHash != config.Always && prependHash != config.Never && prependHash != config.Auto {
		return errors.New("prepend-hash must be 'always', 'never' or 'auto'")
	} else if messageID != "" && channel == "" {
		return errors.New("message-id requires --channel in ID form (C0xxxxxxx)")
	} else if uploadFile != "" && !util.FileExists(uploadFile) {
		return fmt.Errorf("upload file %s does not exist", uploadFile)
	} else if uploadFile != "" && channel == "" {
		return errors.New("upload-file requires --channel")
	}
	if prependHash == "" {
		log.Printf("warning: prepend-hash defaults to 'auto', which is deprecated; set --prepend-hash to 'always' or 'never'")
		prependHash = config.Auto
	}
	var attachments []map[string]any
	if attachmentsJSON != "" {
		if err := json.Unmarshal([]byte(attachmentsJSON), &attachments); err != nil {
			return fmt.Errorf("invalid attachments, must be a JSON array: %s", err.Error())
		}
	}
	var blocks []any
	if blocksJSON != "" {
		if err := json.Unmarshal([]byte(blocksJSON), &blocks); err != nil {
			return fmt.Errorf("invalid blocks, must be a JSON array: %s", err.Error())
		}
	}

	// Create client and run the one-shot interaction
	conf := config.New(token)
	conf.Domain = domain
	conf.Message = message
	conf.Channel = channel
	conf.ThreadID = threadID
	conf.MessageID = messageID
	conf.Username = username
	conf.IconURL = iconURL
	conf.IconEmoji = iconEmoji
	conf.LinkNames = linkNames
	conf.Parse = parse
	conf.Color = color
	conf.Attachments = attachments
	conf.Blocks = blocks
	conf.PrependHash = prependHash
	conf.ValidateCerts = !insecure
	conf.DryRun = dryRun
	conf.Debug = debug
	if uploadFile != "" {
		conf.Upload = &config.Upload{
			Path:           uploadFile,
			Title:          c.String("upload-title"),
			AltText:        c.String("upload-alt-text"),
			SnippetType:    c.String("upload-snippet-type"),
			InitialComment: c.String("upload-initial-comment"),
			ThreadTS:       c.String("upload-thread-ts"),
		}
	}
	result, err := notify.New(conf).Run(context.Background())
	if err != nil {
		return err
	}
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(output))
	return nil
}

// initConfigFileInputSource is like altsrc.InitInputSourceWithContext and altsrc.NewYamlSourceFromFlagFunc, but checks
// if the config flag is exists and only loads it if it does. If the flag is set and the file exists, it fails.
func initConfigFileInputSource(configFlag string, flags []cli.Flag) cli.BeforeFunc {
	return func(context *cli.Context) error {
		configFile := context.String(configFlag)
		if context.IsSet(configFlag) && !util.FileExists(configFile) {
			return fmt.Errorf("config file %s does not exist", configFile)
		} else if !context.IsSet(configFlag) && !util.FileExists(configFile) {
			return nil
		}
		inputSource, err := altsrc.NewYamlSourceFromFile(configFile)
		if err != nil {
			return err
		}
		return altsrc.ApplyInputSourceValues(context, inputSource, flags)
	}
}
