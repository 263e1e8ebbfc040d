package config

// PrependHash defines whether a "#" is prepended to the target channel name
type PrependHash string

// All possible PrependHash constants
const (
	DefaultPrependHash = Auto
	Always             = PrependHash("always")
	Never              = PrependHash("never")
	Auto               = PrependHash("auto")
)

// ParseMode defines the message parser setting passed on to Slack
type ParseMode string

// All possible ParseMode constants
const (
	ParseNone = ParseMode("none")
	ParseFull = ParseMode("full")
)

// Message colors with a predefined meaning; any 3 or 6 digit hex value is
// also accepted, see ValidColor
const (
	DefaultColor = "normal"
	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

// DefaultLinkNames makes Slack auto-link channel and user names in messages
const DefaultLinkNames = 1
